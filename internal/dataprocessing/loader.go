package dataprocessing

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/teozeng1205/brands-compare/internal/errors"
	"github.com/teozeng1205/brands-compare/internal/infrastructure"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// Files locates the three input files of a load
type Files struct {
	AirlineLevel string
	SourceLevel  string
	Detections   string
}

// fileStamp is the cheap change detector checked before any file is read
type fileStamp struct {
	size    int64
	modTime time.Time
}

type cacheEntry struct {
	stamps [3]fileStamp
	data   *domain.Datasets
}

// Loader reads and types the three datasets. Successful loads are memoized by
// content fingerprint and concurrent first loads collapse into one.
type Loader struct {
	files   Files
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
	now     func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cache *cacheEntry
}

// NewLoader creates a loader for files. A nil telemetry records nothing.
func NewLoader(files Files, logger *slog.Logger, tel *infrastructure.Telemetry) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = infrastructure.NoopTelemetry(logger)
	}
	return &Loader{
		files:   files,
		logger:  infrastructure.WithComponent(logger, "dataset_loader"),
		tracer:  tel.Tracer,
		metrics: tel.Metrics,
		now:     time.Now,
	}
}

// Files returns the configured input paths
func (l *Loader) Files() Files {
	return l.files
}

// Load returns the loaded datasets, reading the files only when they changed
// since the last successful load. Failures are never cached.
func (l *Loader) Load(ctx context.Context) (*domain.Datasets, error) {
	stamps, err := l.stat()
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	cached := l.cache
	l.mu.RUnlock()
	if cached != nil && cached.stamps == stamps {
		infrastructure.RecordCacheHit(ctx, l.metrics)
		return cached.data, nil
	}

	v, err, _ := l.group.Do("load", func() (interface{}, error) {
		return l.load(context.WithoutCancel(ctx), stamps)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Datasets), nil
}

// Reload drops the cached datasets and loads again
func (l *Loader) Reload(ctx context.Context) (*domain.Datasets, error) {
	l.mu.Lock()
	l.cache = nil
	l.mu.Unlock()
	l.group.Forget("load")
	return l.Load(ctx)
}

func (l *Loader) paths() [3]string {
	return [3]string{l.files.AirlineLevel, l.files.SourceLevel, l.files.Detections}
}

func (l *Loader) stat() ([3]fileStamp, error) {
	var stamps [3]fileStamp
	for i, p := range l.paths() {
		info, err := os.Stat(p)
		if err != nil {
			return stamps, apperrors.NewStorageError(fmt.Sprintf("cannot access %s", p), err).
				WithContext("file", p)
		}
		stamps[i] = fileStamp{size: info.Size(), modTime: info.ModTime()}
	}
	return stamps, nil
}

func (l *Loader) load(ctx context.Context, stamps [3]fileStamp) (ds *domain.Datasets, err error) {
	ctx, span := l.tracer.Start(ctx, "dataprocessing.Load")
	defer span.End()

	start := l.now()
	defer func() {
		infrastructure.RecordDatasetLoad(ctx, l.metrics, l.now().Sub(start), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			l.logger.ErrorContext(ctx, "dataset load failed", slog.String("error", err.Error()))
		}
	}()

	paths := l.paths()
	var contents [3][]byte

	g, _ := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			b, err := os.ReadFile(p)
			if err != nil {
				return apperrors.NewStorageError(fmt.Sprintf("cannot read %s", p), err).WithContext("file", p)
			}
			contents[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fp := fingerprint(contents)
	span.SetAttributes(attribute.String("datasets.fingerprint", fp))

	l.mu.RLock()
	cached := l.cache
	l.mu.RUnlock()
	if cached != nil && cached.data.Fingerprint == fp {
		l.store(&cacheEntry{stamps: stamps, data: cached.data})
		infrastructure.RecordCacheHit(ctx, l.metrics)
		l.logger.DebugContext(ctx, "files touched but content unchanged", slog.String("fingerprint", fp))
		return cached.data, nil
	}

	ds = &domain.Datasets{Fingerprint: fp, Sources: make([]domain.SourceFile, 3)}

	g, _ = errgroup.WithContext(ctx)
	g.Go(func() error {
		t, src, err := loadTable(ctx, l, domain.AirlineLevelSchema, paths[0], contents[0], decodeAirlineFareFamily)
		ds.AirlineLevel, ds.Sources[0] = t, src
		return err
	})
	g.Go(func() error {
		t, src, err := loadTable(ctx, l, domain.SourceLevelSchema, paths[1], contents[1], decodeSourceFareFamily)
		ds.SourceLevel, ds.Sources[1] = t, src
		return err
	})
	g.Go(func() error {
		t, src, err := loadTable(ctx, l, domain.BrandDetectionSchema, paths[2], contents[2], decodeBrandDetection)
		ds.Detections, ds.Sources[2] = t, src
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds.LoadedAt = l.now()
	l.store(&cacheEntry{stamps: stamps, data: ds})

	l.logger.InfoContext(ctx, "datasets loaded",
		slog.String("fingerprint", fp),
		slog.Int("airline_level_rows", ds.AirlineLevel.Len()),
		slog.Int("source_level_rows", ds.SourceLevel.Len()),
		slog.Int("detection_rows", ds.Detections.Len()),
		slog.Duration("duration", l.now().Sub(start)))

	return ds, nil
}

func (l *Loader) store(e *cacheEntry) {
	l.mu.Lock()
	l.cache = e
	l.mu.Unlock()
}

// loadTable parses one file strictly, retrying leniently when the strict pass fails
func loadTable[T any](ctx context.Context, l *Loader, schema domain.Schema, path string, data []byte, decode rowDecoder[T]) (*domain.Table[T], domain.SourceFile, error) {
	src := domain.SourceFile{Dataset: schema.Dataset, Path: path, SizeBytes: int64(len(data))}
	logger := l.logger.With(slog.String("dataset", string(schema.Dataset)), slog.String("file", path))

	raw, strictErr := parseStrict(data)
	if strictErr == nil {
		t, err := buildTable(schema, raw, decode, true)
		if err == nil {
			src.Rows, src.Delimiter = t.Len(), string(raw.Delimiter)
			infrastructure.RecordDatasetRows(ctx, l.metrics, string(schema.Dataset), t.Len(), 0)
			return t, src, nil
		}
		strictErr = err
	}

	logger.WarnContext(ctx, "strict parse failed, retrying with delimiter inference",
		slog.String("error", strictErr.Error()))

	raw, err := parseFallback(data)
	if err != nil {
		return nil, src, apperrors.NewParsingError(
			fmt.Sprintf("cannot parse %s (strict: %v)", path, strictErr), err).
			WithContext("file", path)
	}

	t, err := buildTable(schema, raw, decode, false)
	if err != nil {
		return nil, src, apperrors.NewSchemaError(
			fmt.Sprintf("%s does not match the %s schema", path, schema.Dataset), err).
			WithContext("file", path)
	}

	src.Rows, src.SkippedRows, src.Delimiter, src.Fallback = t.Len(), raw.Skipped, string(raw.Delimiter), true
	infrastructure.RecordDatasetRows(ctx, l.metrics, string(schema.Dataset), t.Len(), raw.Skipped)

	logger.WarnContext(ctx, "loaded with fallback parser",
		slog.Int("rows", t.Len()),
		slog.Int("skipped_rows", raw.Skipped),
		slog.String("delimiter", fmt.Sprintf("%q", raw.Delimiter)))

	return t, src, nil
}

// fingerprint hashes the three file contents with length framing
func fingerprint(contents [3][]byte) string {
	h := sha256.New()
	var n [8]byte
	for _, c := range contents {
		binary.BigEndian.PutUint64(n[:], uint64(len(c)))
		h.Write(n[:])
		h.Write(c)
	}
	return hex.EncodeToString(h.Sum(nil))
}
