package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

func collect(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, e)
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %d so far", len(events))
			return nil
		}
	}
}

func statuses(events []Event) []Status {
	out := make([]Status, len(events))
	for i, e := range events {
		out[i] = e.Status
	}
	return out
}

func waitForWaiters(t *testing.T, tr *Tracker, name string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return len(tr.waiting[name]) == n
	}, time.Second, 5*time.Millisecond)
}

func TestSubscribeCachedModel(t *testing.T) {
	tr := NewTracker(time.Minute, nil, nil)
	ch := tr.Subscribe(context.Background(), "base", func(string) bool { return true })

	events := collect(t, ch)
	require.Len(t, events, 1)
	assert.Equal(t, StatusComplete, events[0].Status)
	assert.InDelta(t, 100, events[0].ProgressPercent, 0)
}

func TestSubscribeBeforeAcquisition(t *testing.T) {
	tr := NewTracker(time.Minute, nil, nil)
	ch := tr.Subscribe(context.Background(), "small", func(string) bool { return false })
	waitForWaiters(t, tr, "small", 1)

	rep := tr.Begin("small")
	rep.Downloading(0, 1000)
	rep.Downloading(5, 1000)
	rep.Downloading(500, 1000)
	rep.Downloading(504, 1000)
	rep.Downloading(1000, 1000)
	rep.Loading()
	rep.Loading()
	tr.Complete("small")

	events := collect(t, ch)
	assert.Equal(t, []Status{
		StatusIdle,
		StatusStarting,
		StatusDownloading,
		StatusDownloading,
		StatusDownloading,
		StatusLoading,
		StatusComplete,
	}, statuses(events))

	assert.InDelta(t, 50, events[3].ProgressPercent, 0)
	assert.Equal(t, int64(500), events[3].BytesDownloaded)
	assert.Equal(t, int64(1000), events[6].TotalBytes)

	_, active := tr.Snapshot("small")
	assert.False(t, active)
	recent, ok := tr.Recent("small")
	require.True(t, ok)
	assert.Equal(t, StatusComplete, recent.Status)
}

func TestSubscribeMidAcquisitionGetsSnapshotFirst(t *testing.T) {
	tr := NewTracker(time.Minute, nil, nil)
	rep := tr.Begin("medium")
	rep.Downloading(300, 1000)

	ch := tr.Subscribe(context.Background(), "medium", nil)
	rep.Downloading(600, 1000)
	tr.Fail("medium", errors.New("connection reset"))

	events := collect(t, ch)
	require.Len(t, events, 3)
	assert.Equal(t, StatusDownloading, events[0].Status)
	assert.InDelta(t, 30, events[0].ProgressPercent, 0)
	assert.InDelta(t, 60, events[1].ProgressPercent, 0)
	assert.Equal(t, StatusFailed, events[2].Status)
	assert.Equal(t, "connection reset", events[2].Error)

	recent, ok := tr.Recent("medium")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, recent.Status)
}

func TestSubscribersSeeIdenticalSequence(t *testing.T) {
	tr := NewTracker(time.Minute, nil, nil)
	rep := tr.Begin("medium")

	first := tr.Subscribe(context.Background(), "medium", nil)
	second := tr.Subscribe(context.Background(), "medium", nil)

	for i := int64(0); i <= 100; i++ {
		rep.Downloading(i*10, 1000)
	}
	rep.Loading()
	tr.Complete("medium")

	a := collect(t, first)
	b := collect(t, second)
	assert.Equal(t, a, b)
	assert.Len(t, a, 1+101+2)
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	tr := NewTracker(time.Minute, nil, nil)
	rep := tr.Begin("tiny")
	ch := tr.Subscribe(context.Background(), "tiny", nil)

	done := make(chan struct{})
	go func() {
		for i := int64(0); i <= 100; i++ {
			rep.Downloading(i, 100)
		}
		tr.Complete("tiny")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on an unread subscriber")
	}

	events := collect(t, ch)
	assert.Equal(t, StatusComplete, events[len(events)-1].Status)
}

func TestCancelledSubscriberIsRemoved(t *testing.T) {
	tr := NewTracker(time.Minute, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	ch := tr.Subscribe(ctx, "base", nil)
	first := <-ch
	assert.Equal(t, StatusIdle, first.Status)
	waitForWaiters(t, tr, "base", 1)

	cancel()
	for range ch {
	}
	waitForWaiters(t, tr, "base", 0)
}
