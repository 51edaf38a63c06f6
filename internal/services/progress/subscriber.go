package progress

import (
	"context"
	"sync"
)

// subscriber buffers events in an unbounded queue so that a slow reader
// never blocks the publisher and never misses an event.
type subscriber struct {
	mu     sync.Mutex
	queue  []Event
	closed bool
	signal chan struct{}
}

func newSubscriber(initial ...Event) *subscriber {
	s := &subscriber{signal: make(chan struct{}, 1)}
	for _, e := range initial {
		s.queue = append(s.queue, e)
		if e.IsTerminal() {
			s.closed = true
		}
	}
	return s
}

func (s *subscriber) push(e Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, e)
	if e.IsTerminal() {
		s.closed = true
	}
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscriber) next(ctx context.Context) (Event, bool) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			e := s.queue[0]
			s.queue[0] = Event{}
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return e, true
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return Event{}, false
		}

		select {
		case <-s.signal:
		case <-ctx.Done():
			return Event{}, false
		}
	}
}

func (s *subscriber) run(ctx context.Context, out chan<- Event, done func()) {
	defer close(out)
	defer done()

	for {
		e, ok := s.next(ctx)
		if !ok {
			return
		}
		select {
		case out <- e:
		case <-ctx.Done():
			return
		}
	}
}
