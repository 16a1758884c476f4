package middleware

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/teozeng1205/brands-compare/internal/errors"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

func TestValidator_ValidateStruct(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantMsg   string
	}{
		{
			name:  "valid query",
			input: domain.ComparisonQuery{ShowAll: true, SortBy: domain.CmpDetectedPrice},
		},
		{
			name:      "unknown sort column",
			input:     domain.ComparisonQuery{SortBy: "Price"},
			wantField: "sort_by",
			wantMsg:   "sort_by must be one of: Airline, George_Airline_ODs, George_Source_ODs, Teo_Min_Price",
		},
		{
			name:      "empty airline",
			input:     domain.ComparisonQuery{Airlines: []string{"AA", ""}},
			wantField: "airlines[1]",
			wantMsg:   "airlines[1] is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var apiErr *apperrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, apperrors.CodeValidationFailed, apiErr.ErrorCode)

			details, ok := apiErr.Details.([]apperrors.ValidationError)
			require.True(t, ok)
			require.Len(t, details, 1)
			assert.Equal(t, tt.wantField, details[0].Field)
			assert.Equal(t, tt.wantMsg, details[0].Message)
		})
	}
}
