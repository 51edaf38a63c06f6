package modelcache

import (
	"context"

	"github.com/killallgit/transcribe-api/internal/services/progress"
	apperrors "github.com/killallgit/transcribe-api/pkg/errors"
)

// Subscribe streams acquisition progress for name. It never starts an
// acquisition. A resident model yields a single complete event.
func (c *Cache) Subscribe(ctx context.Context, name string) (<-chan progress.Event, error) {
	if name == "" {
		return nil, apperrors.ValidationError("model", "model name is required")
	}
	if c.known != nil && !c.known(name) {
		return nil, apperrors.NotFound("model", name)
	}
	return c.tracker.Subscribe(ctx, name, c.IsCached), nil
}

// Status describes the current state of one model
type Status struct {
	Name     string          `json:"name"`
	Cached   bool            `json:"cached"`
	Handle   *Handle         `json:"handle,omitempty"`
	InFlight *progress.Event `json:"in_flight,omitempty"`
	Last     *progress.Event `json:"last,omitempty"`
}

// Status reports whether name is resident, its in-flight snapshot and the
// last terminal event still retained
func (c *Cache) Status(name string) Status {
	st := Status{Name: name}
	if h, ok := c.lookup(name); ok {
		st.Cached = true
		st.Handle = h
	}
	if e, ok := c.tracker.Snapshot(name); ok {
		st.InFlight = &e
	}
	if e, ok := c.tracker.Recent(name); ok {
		st.Last = &e
	}
	return st
}
