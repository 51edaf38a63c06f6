package progress

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/internal/metrics"
)

// DefaultRetention is how long the last terminal event of a model is kept
const DefaultRetention = 10 * time.Minute

type acquisition struct {
	last        Event
	lastPercent int
	subs        map[*subscriber]struct{}
}

// Tracker broadcasts model acquisition progress keyed by model name.
// Subscribing never starts an acquisition.
type Tracker struct {
	mu      sync.Mutex
	active  map[string]*acquisition
	waiting map[string]map[*subscriber]struct{}
	recent  *cache.Cache
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewTracker creates a tracker keeping terminal events for retention
func NewTracker(retention time.Duration, logger *zap.Logger, m *metrics.Metrics) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Tracker{
		active:  make(map[string]*acquisition),
		waiting: make(map[string]map[*subscriber]struct{}),
		recent:  cache.New(retention, 2*retention),
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Begin starts tracking an acquisition of name and returns its reporter.
// Subscribers waiting on name join the acquisition.
func (t *Tracker) Begin(name string) Reporter {
	t.mu.Lock()
	defer t.mu.Unlock()

	acq, ok := t.active[name]
	if !ok {
		acq = &acquisition{
			last:        Event{Model: name, Status: StatusStarting, Timestamp: t.now()},
			lastPercent: -1,
			subs:        make(map[*subscriber]struct{}),
		}
		t.active[name] = acq

		for s := range t.waiting[name] {
			acq.subs[s] = struct{}{}
			s.push(acq.last)
		}
		delete(t.waiting, name)
		t.logger.Debug("model acquisition started", zap.String("model", name))
	}

	return &reporter{tracker: t, name: name}
}

// Complete publishes the terminal complete event and ends the acquisition
func (t *Tracker) Complete(name string) {
	t.finish(name, Event{Model: name, Status: StatusComplete, ProgressPercent: 100})
}

// Fail publishes the terminal failed event and ends the acquisition
func (t *Tracker) Fail(name string, err error) {
	e := Event{Model: name, Status: StatusFailed}
	if err != nil {
		e.Error = err.Error()
	}
	t.finish(name, e)
}

func (t *Tracker) finish(name string, e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e.Timestamp = t.now()
	if acq, ok := t.active[name]; ok {
		e.BytesDownloaded = acq.last.BytesDownloaded
		e.TotalBytes = acq.last.TotalBytes
		for s := range acq.subs {
			s.push(e)
		}
		delete(t.active, name)
	}
	t.recent.SetDefault(name, e)
}

// Snapshot returns the current event of an in-flight acquisition
func (t *Tracker) Snapshot(name string) (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if acq, ok := t.active[name]; ok {
		return acq.last, true
	}
	return Event{}, false
}

// Recent returns the last terminal event of name if it is still retained
func (t *Tracker) Recent(name string) (Event, bool) {
	v, ok := t.recent.Get(name)
	if !ok {
		return Event{}, false
	}
	return v.(Event), true
}

// Subscribe streams progress of name. cached is consulted under the tracker
// lock; when it reports true a single complete event is sent.
// Otherwise the subscriber receives the current snapshot of an in-flight
// acquisition, or an idle event followed by the next acquisition.
// The channel is closed after a terminal event or when ctx is done.
func (t *Tracker) Subscribe(ctx context.Context, name string, cached func(string) bool) <-chan Event {
	out := make(chan Event)

	t.mu.Lock()
	var s *subscriber
	switch acq, active := t.active[name]; {
	case cached != nil && cached(name):
		s = newSubscriber(Event{Model: name, Status: StatusComplete, ProgressPercent: 100, Timestamp: t.now()})
	case active:
		s = newSubscriber(acq.last)
		acq.subs[s] = struct{}{}
	default:
		s = newSubscriber(Event{Model: name, Status: StatusIdle, Timestamp: t.now()})
		if t.waiting[name] == nil {
			t.waiting[name] = make(map[*subscriber]struct{})
		}
		t.waiting[name][s] = struct{}{}
	}
	t.mu.Unlock()

	t.metrics.SubscriptionOpened()
	go s.run(ctx, out, func() {
		t.remove(name, s)
		t.metrics.SubscriptionClosed()
	})
	return out
}

func (t *Tracker) remove(name string, s *subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if acq, ok := t.active[name]; ok {
		delete(acq.subs, s)
	}
	if w, ok := t.waiting[name]; ok {
		delete(w, s)
		if len(w) == 0 {
			delete(t.waiting, name)
		}
	}
}

func (t *Tracker) publish(name string, update func(acq *acquisition) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	acq, ok := t.active[name]
	if !ok {
		return
	}
	if !update(acq) {
		return
	}
	acq.last.Timestamp = t.now()
	for s := range acq.subs {
		s.push(acq.last)
	}
}

type reporter struct {
	tracker *Tracker
	name    string
}

// Downloading publishes only when the whole percentage changes
func (r *reporter) Downloading(downloaded, total int64) {
	r.tracker.publish(r.name, func(acq *acquisition) bool {
		percent := 0
		if total > 0 {
			percent = int(downloaded * 100 / total)
		}
		if acq.last.Status == StatusDownloading && percent == acq.lastPercent {
			return false
		}
		acq.lastPercent = percent
		acq.last = Event{
			Model:           r.name,
			Status:          StatusDownloading,
			ProgressPercent: float64(percent),
			BytesDownloaded: downloaded,
			TotalBytes:      total,
		}
		return true
	})
}

func (r *reporter) Loading() {
	r.tracker.publish(r.name, func(acq *acquisition) bool {
		if acq.last.Status == StatusLoading {
			return false
		}
		acq.last = Event{
			Model:           r.name,
			Status:          StatusLoading,
			ProgressPercent: 100,
			BytesDownloaded: acq.last.BytesDownloaded,
			TotalBytes:      acq.last.TotalBytes,
		}
		return true
	})
}
