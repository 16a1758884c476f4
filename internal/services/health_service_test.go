package services

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teozeng1205/brands-compare/internal/shared/testutil"
)

func TestHealthService(t *testing.T) {
	t.Run("Health_Check", testHealthCheck)
	t.Run("Readiness_Ready", testReadinessReady)
	t.Run("Readiness_Not_Ready", testReadinessNotReady)
	t.Run("Readiness_Without_Loader", testReadinessWithoutLoader)
	t.Run("Liveness", testLiveness)
	t.Run("Version", testVersion)
}

func testHealthCheck(t *testing.T) {
	hs := NewHealthService("1.2.0", "", nil, nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, StatusOK, status.Status)
	assert.Equal(t, "1.2.0", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func testReadinessReady(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.0", "", fixtureLoader(t), logger)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, StatusReady, status.Status)

	data, ok := status.Services["data"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, StatusReady, data.Status)
	assert.Len(t, data.Files, 3)
}

func testReadinessNotReady(t *testing.T) {
	loader := new(MockDatasetLoader)
	loader.On("Load", mock.Anything).Return(nil, errors.New("teo_airline_source.csv: permission denied"))

	logger, handler := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.0", "", loader, logger)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, StatusNotReady, status.Status)

	data := status.Services["data"].(ServiceHealth)
	assert.Equal(t, StatusNotReady, data.Status)
	assert.Contains(t, data.Message, "permission denied")
	assert.True(t, handler.ContainsMessage("readiness check failed"))
	loader.AssertExpectations(t)
}

func testReadinessWithoutLoader(t *testing.T) {
	hs := NewHealthService("1.2.0", "", nil, nil)
	assert.Equal(t, StatusNotReady, hs.ReadinessCheck(context.Background()).Status)
}

func testLiveness(t *testing.T) {
	hs := NewHealthService("1.2.0", "", nil, nil)

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, StatusAlive, status.Status)
	assert.Equal(t, runtime.Version(), status.Runtime["go_version"])
	assert.Contains(t, status.Runtime, "uptime")
	assert.Contains(t, status.Runtime, "goroutines")
}

func testVersion(t *testing.T) {
	hs := NewHealthService("1.2.0", "2026-10-01T10:00:00Z", nil, nil)

	v := hs.Version()
	assert.Equal(t, "1.2.0", v["version"])
	assert.Equal(t, "2026-10-01T10:00:00Z", v["build_time"])
	assert.Equal(t, runtime.GOOS, v["os"])
	assert.Equal(t, runtime.GOARCH, v["arch"])
}
