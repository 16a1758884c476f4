package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMissing(t *testing.T) {
	for _, tok := range []string{"", "null", "NULL", "NaN", "NA", "N/A", "<NA>", "None", "#N/A"} {
		assert.True(t, IsMissing(tok), tok)
	}
	for _, tok := range []string{"Unknown", "0", " ", "none", "Null"} {
		assert.False(t, IsMissing(tok), tok)
	}
}

func TestParseStrict(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		rows    int
	}{
		{name: "tab separated", input: "a\tb\n1\t2\n3\t4\n", rows: 2},
		{name: "bom is stripped", input: "\xef\xbb\xbfa\tb\n1\t2\n", rows: 1},
		{name: "crlf line endings", input: "a\tb\r\n1\t2\r\n", rows: 1},
		{name: "field count mismatch", input: "a\tb\n1\t2\t3\n", wantErr: true},
		{name: "bare quote", input: "a\tb\n1\tx\"y\n", wantErr: true},
		{name: "invalid utf-8", input: "a\tb\n\xe9\t2\n", wantErr: true},
		{name: "empty file", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := parseStrict([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, raw.Header)
			assert.Len(t, raw.Records, tt.rows)
			assert.False(t, raw.Fallback)
		})
	}
}

func TestParseFallback(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		delimiter rune
		rows      [][]string
		skipped   int
	}{
		{
			name:      "comma separated",
			input:     "a,b\n1,2\n3,4\n",
			delimiter: ',',
			rows:      [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:      "semicolon separated",
			input:     "a;b\n1;2\n",
			delimiter: ';',
			rows:      [][]string{{"1", "2"}},
		},
		{
			name:      "pipe separated",
			input:     "a|b\n1|2\n",
			delimiter: '|',
			rows:      [][]string{{"1", "2"}},
		},
		{
			name:      "malformed rows are skipped",
			input:     "a\tb\n1\t2\n1\t2\t3\n4\n5\t6\n",
			delimiter: '\t',
			rows:      [][]string{{"1", "2"}, {"5", "6"}},
			skipped:   2,
		},
		{
			name:      "lazy quotes",
			input:     "a\tb\n1\tx\"y\n",
			delimiter: '\t',
			rows:      [][]string{{"1", "x\"y"}},
		},
		{
			name:      "windows-1252 is decoded",
			input:     "a\tb\nCaf\xe9\t2\n",
			delimiter: '\t',
			rows:      [][]string{{"Café", "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := parseFallback([]byte(tt.input))
			require.NoError(t, err)
			assert.True(t, raw.Fallback)
			assert.Equal(t, tt.delimiter, raw.Delimiter)
			assert.Equal(t, []string{"a", "b"}, raw.Header)
			assert.Equal(t, tt.rows, raw.Records)
			assert.Equal(t, tt.skipped, raw.Skipped)
		})
	}
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, '\t', sniffDelimiter([]byte("single column\nvalue\n")))
	assert.Equal(t, ',', sniffDelimiter([]byte("name,notes\nx,has;semicolon\ny,plain\n")))
	assert.Equal(t, '\t', sniffDelimiter(nil))
}
