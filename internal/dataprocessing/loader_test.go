package dataprocessing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/teozeng1205/brands-compare/internal/errors"
	"github.com/teozeng1205/brands-compare/internal/shared/testutil"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

func filesIn(dir string) Files {
	return Files{
		AirlineLevel: filepath.Join(dir, domain.AirlineLevelSchema.FileName),
		SourceLevel:  filepath.Join(dir, domain.SourceLevelSchema.FileName),
		Detections:   filepath.Join(dir, domain.BrandDetectionSchema.FileName),
	}
}

func loadFixtures(t *testing.T) *domain.Datasets {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	ds, err := NewLoader(filesIn(testutil.DatasetDir(t)), logger, nil).Load(context.Background())
	require.NoError(t, err)
	return ds
}

func TestLoaderLoad(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	loader := NewLoader(filesIn(testutil.DatasetDir(t)), logger, nil)

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, ds.AirlineLevel.Len())
	assert.Equal(t, 5, ds.SourceLevel.Len())
	assert.Equal(t, 5, ds.Detections.Len())
	assert.NotEmpty(t, ds.Fingerprint)
	assert.False(t, ds.LoadedAt.IsZero())

	assert.Equal(t, domain.AirlineFareFamily{Carrier: "BA", OutboundFareFamily: domain.UnknownValue, ODs: 70},
		ds.AirlineLevel.Rows[3].Record)
	assert.Equal(t, domain.UnknownValue, ds.SourceLevel.Rows[4].Record.Source)

	ua := ds.Detections.Rows[3].Record
	assert.Equal(t, "UA", ua.Airline)
	assert.Nil(t, ua.MinPriceInc)

	require.Len(t, ds.Sources, 3)
	for i, src := range ds.Sources {
		assert.Equal(t, domain.AllDatasets[i], src.Dataset)
		assert.False(t, src.Fallback)
		assert.Equal(t, "\t", src.Delimiter)
		assert.Zero(t, src.SkippedRows)
	}

	testutil.AssertNoErrors(t, handler)
	assert.True(t, handler.ContainsMessage("datasets loaded"))
}

func TestLoaderCaching(t *testing.T) {
	dir := testutil.DatasetDir(t)
	loader := NewLoader(filesIn(dir), nil, nil)
	ctx := context.Background()

	first, err := loader.Load(ctx)
	require.NoError(t, err)

	second, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged files come from the cache")

	// touched but identical content keeps the cached handle
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(loader.Files().AirlineLevel, later, later))
	touched, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, first, touched)

	require.NoError(t, os.WriteFile(loader.Files().AirlineLevel,
		[]byte(testutil.AirlineLevelTSV+"UA\tBasic Economy\t5\n"), 0o644))
	changed, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, changed)
	assert.NotEqual(t, first.Fingerprint, changed.Fingerprint)
	assert.Equal(t, 7, changed.AirlineLevel.Len())

	reloaded, err := loader.Reload(ctx)
	require.NoError(t, err)
	assert.NotSame(t, changed, reloaded)
	assert.Equal(t, changed.Fingerprint, reloaded.Fingerprint)
}

func TestLoaderConcurrentLoads(t *testing.T) {
	loader := NewLoader(filesIn(testutil.DatasetDir(t)), nil, nil)

	const workers = 16
	results := make([]*domain.Datasets, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := loader.Load(context.Background())
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}
	wg.Wait()

	for _, ds := range results[1:] {
		assert.Same(t, results[0], ds)
	}
}

func TestLoaderFailures(t *testing.T) {
	tests := []struct {
		name      string
		airline   string
		remove    bool
		wantType  apperrors.ErrorType
		wantInErr string
	}{
		{
			name:     "missing file",
			airline:  testutil.AirlineLevelTSV,
			remove:   true,
			wantType: apperrors.ErrTypeStorage,
		},
		{
			name:      "missing column",
			airline:   "carrier\tods\nAA\t10\n",
			wantType:  apperrors.ErrTypeSchema,
			wantInErr: "outbound_fare_family",
		},
		{
			name:     "empty file",
			airline:  "",
			wantType: apperrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)
			dir := testutil.WriteDatasetDir(t, tt.airline, testutil.SourceLevelTSV, testutil.DetectionTSV)
			loader := NewLoader(filesIn(dir), logger, nil)
			if tt.remove {
				require.NoError(t, os.Remove(loader.Files().AirlineLevel))
			}

			ds, err := loader.Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, ds)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, loader.Files().AirlineLevel, appErr.Context["file"])
			if tt.wantInErr != "" {
				assert.Contains(t, err.Error(), tt.wantInErr)
			}

			if !tt.remove {
				assert.True(t, handler.ContainsMessage("dataset load failed"))
			}
		})
	}
}

func TestLoaderFailureIsNotCached(t *testing.T) {
	dir := testutil.WriteDatasetDir(t, "carrier\tods\nAA\t10\n", testutil.SourceLevelTSV, testutil.DetectionTSV)
	loader := NewLoader(filesIn(dir), nil, nil)

	_, err := loader.Load(context.Background())
	require.Error(t, err)

	require.NoError(t, os.WriteFile(loader.Files().AirlineLevel, []byte(testutil.AirlineLevelTSV), 0o644))
	ds, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, ds.AirlineLevel.Len())
}

func TestLoaderFallback(t *testing.T) {
	commaSource := strings.ReplaceAll(testutil.SourceLevelTSV, "\t", ",")
	badDetection := testutil.DetectionTSV + "DL\tGDS\tBasic\tBasic\tfree\n" + "DL\tGDS\n"

	logger, handler := testutil.NewTestLogger(t)
	dir := testutil.WriteDatasetDir(t, testutil.AirlineLevelTSV, commaSource, badDetection)
	ds, err := NewLoader(filesIn(dir), logger, nil).Load(context.Background())
	require.NoError(t, err)

	source := ds.Sources[1]
	assert.True(t, source.Fallback)
	assert.Equal(t, ",", source.Delimiter)
	assert.Equal(t, 5, ds.SourceLevel.Len())

	detection := ds.Sources[2]
	assert.True(t, detection.Fallback)
	assert.Equal(t, 2, detection.SkippedRows)
	assert.Equal(t, 5, ds.Detections.Len())

	assert.False(t, ds.Sources[0].Fallback)
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "strict parse failed, retrying with delimiter inference")
}

func TestFingerprint(t *testing.T) {
	a := fingerprint([3][]byte{[]byte("ab"), []byte("c"), nil})
	b := fingerprint([3][]byte{[]byte("a"), []byte("bc"), nil})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, fingerprint([3][]byte{[]byte("ab"), []byte("c"), nil}))
	assert.Len(t, a, 64)
}
