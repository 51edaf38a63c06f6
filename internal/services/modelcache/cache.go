// Package modelcache holds speech recognition models for the lifetime of the
// process and coalesces concurrent acquisitions of the same model.
package modelcache

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/killallgit/transcribe-api/internal/metrics"
	"github.com/killallgit/transcribe-api/internal/services/progress"
	apperrors "github.com/killallgit/transcribe-api/pkg/errors"
)

// Handle is a loaded model ready for the engine
type Handle struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// Loader acquires a model, downloading it first when it is missing
type Loader interface {
	Load(ctx context.Context, name string, rep progress.Reporter) (*Handle, error)
}

// Stats are cumulative cache counters
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Loads      int64 `json:"loads"`
	LoadErrors int64 `json:"load_errors"`
	Resident   int   `json:"resident"`
}

// Options configures a Cache
type Options struct {
	// Known rejects subscriptions to names the loader can never acquire.
	// Nil accepts every name.
	Known   func(name string) bool
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Cache maps model names to loaded handles. Entries are never evicted.
type Cache struct {
	loader  Loader
	tracker *progress.Tracker
	known   func(string) bool
	logger  *zap.Logger
	metrics *metrics.Metrics

	entries  sync.Map
	resident atomic.Int64
	group    singleflight.Group

	hits       atomic.Int64
	misses     atomic.Int64
	loads      atomic.Int64
	loadErrors atomic.Int64
}

// New creates a cache acquiring models through loader and publishing progress
// to tracker
func New(loader Loader, tracker *progress.Tracker, opts Options) *Cache {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracker == nil {
		tracker = progress.NewTracker(progress.DefaultRetention, logger, opts.Metrics)
	}
	return &Cache{
		loader:  loader,
		tracker: tracker,
		known:   opts.Known,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// GetOrLoad returns the handle for name, acquiring it on first use.
// Concurrent callers for the same name share one acquisition. A caller whose
// ctx ends stops waiting, but the acquisition still completes and populates
// the cache.
func (c *Cache) GetOrLoad(ctx context.Context, name string) (*Handle, error) {
	if name == "" {
		return nil, apperrors.ValidationError("model", "model name is required")
	}

	if h, ok := c.lookup(name); ok {
		c.hits.Add(1)
		c.metrics.RecordCacheLookup(true)
		return h, nil
	}
	c.misses.Add(1)
	c.metrics.RecordCacheLookup(false)

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(name, func() (any, error) {
		if h, ok := c.lookup(name); ok {
			return h, nil
		}
		return c.acquire(detached, name)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Handle), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) acquire(ctx context.Context, name string) (*Handle, error) {
	c.loads.Add(1)
	start := time.Now()
	rep := c.tracker.Begin(name)

	c.logger.Info("acquiring model", zap.String("model", name))

	h, err := c.loader.Load(ctx, name, rep)
	if err == nil && h == nil {
		err = apperrors.New(apperrors.ErrCodeInternal, "loader returned no handle")
	}
	took := time.Since(start)
	c.metrics.RecordModelLoad(name, err, took)

	if err != nil {
		c.loadErrors.Add(1)
		c.tracker.Fail(name, err)
		c.logger.Warn("model acquisition failed",
			zap.String("model", name),
			zap.Duration("took", took),
			zap.Error(err))
		if apperrors.Is(err, apperrors.ErrCodeModelAcquisition) {
			return nil, err
		}
		return nil, apperrors.ModelAcquisitionError(name, err)
	}

	if h.Name == "" {
		h.Name = name
	}
	if h.LoadedAt.IsZero() {
		h.LoadedAt = time.Now().UTC()
	}

	// the entry must be visible before subscribers see the terminal event
	if _, loaded := c.entries.LoadOrStore(name, h); !loaded {
		c.metrics.SetModelsResident(int(c.resident.Add(1)))
	}
	c.tracker.Complete(name)

	c.logger.Info("model ready",
		zap.String("model", name),
		zap.String("path", h.Path),
		zap.Duration("took", took))
	return h, nil
}

func (c *Cache) lookup(name string) (*Handle, bool) {
	v, ok := c.entries.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*Handle), true
}

// IsCached reports whether name is resident
func (c *Cache) IsCached(name string) bool {
	_, ok := c.entries.Load(name)
	return ok
}

// Cached lists the resident handles ordered by name
func (c *Cache) Cached() []*Handle {
	var out []*Handle
	c.entries.Range(func(_, v any) bool {
		out = append(out, v.(*Handle))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Loads:      c.loads.Load(),
		LoadErrors: c.loadErrors.Load(),
		Resident:   int(c.resident.Load()),
	}
}

// Progress returns the tracker that publishes acquisition progress
func (c *Cache) Progress() *progress.Tracker {
	return c.tracker
}
