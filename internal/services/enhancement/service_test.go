package enhancement

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/killallgit/transcribe-api/internal/llm"
	"github.com/killallgit/transcribe-api/internal/models"
	"github.com/killallgit/transcribe-api/internal/services/transcription"
	apperrors "github.com/killallgit/transcribe-api/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// fakeCompleter answers with reply, fails with err, or blocks until the
// context ends when block is set
type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	block    bool
	delay    time.Duration
	calls    int
	inFlight atomic.Int32
	peak     atomic.Int32
	requests []llm.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	if n > f.peak.Load() {
		f.peak.Store(n)
	}

	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	reply, err, block, delay := f.reply, f.err, f.block, f.delay
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	return reply, err
}

func (f *fakeCompleter) set(reply string, err error, block bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply, f.err, f.block = reply, err, block
}

func (f *fakeCompleter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func completedTranscription(t *testing.T, repo transcription.Repository, opts models.TranscriptionOptions) *models.Transcription {
	t.Helper()
	tr := models.NewTranscription("tr-"+t.Name(), "audio-1", "base", opts)
	require.NoError(t, tr.MarkProcessing())
	require.NoError(t, tr.Complete("hello world this is a test", "en"))
	require.NoError(t, repo.Create(context.Background(), tr))
	return tr
}

func newService(t *testing.T, completer Completer, timeout time.Duration) (*Service, transcription.Repository) {
	t.Helper()
	repo := transcription.NewRepository(setupTestDB(t))
	return NewService(repo, completer, timeout, nil, nil), repo
}

func TestEnhanceSuccess(t *testing.T) {
	completer := &fakeCompleter{reply: "Hello world, this is a test."}
	svc, repo := newService(t, completer, time.Second)
	tr := completedTranscription(t, repo, models.TranscriptionOptions{EnableLLMEnhancement: true, EnableTashkeel: true})

	got, err := svc.Enhance(context.Background(), tr.ID)
	require.NoError(t, err)

	assert.Equal(t, models.EnhancementStatusCompleted, got.LLMEnhancementStatus)
	require.NotNil(t, got.EnhancedText)
	assert.Equal(t, "Hello world, this is a test.", *got.EnhancedText)
	require.NotNil(t, got.LLMProcessingTimeSeconds)
	assert.Equal(t, "hello world this is a test", *got.Text)

	require.Len(t, completer.requests, 1)
	assert.Equal(t, "en", completer.requests[0].Language)
	assert.True(t, completer.requests[0].EnableTashkeel)

	stored, err := repo.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnhancementStatusCompleted, stored.LLMEnhancementStatus)

	_, err = svc.Enhance(context.Background(), tr.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))
	assert.Equal(t, 1, completer.Calls())
}

// A slow LLM fails the enhancement and leaves the transcript alone
func TestEnhanceTimeoutThenRetry(t *testing.T) {
	completer := &fakeCompleter{block: true}
	svc, repo := newService(t, completer, 30*time.Millisecond)
	tr := completedTranscription(t, repo, models.TranscriptionOptions{EnableLLMEnhancement: true})

	got, err := svc.Enhance(context.Background(), tr.ID)
	require.NoError(t, err)

	assert.Equal(t, models.EnhancementStatusFailed, got.LLMEnhancementStatus)
	require.NotNil(t, got.LLMErrorMessage)
	assert.Contains(t, *got.LLMErrorMessage, "timed out")
	assert.Equal(t, models.TranscriptionStatusCompleted, got.Status)
	assert.Equal(t, "hello world this is a test", *got.Text)
	assert.Nil(t, got.EnhancedText)
	assert.True(t, got.CanBeEnhanced())

	completer.set("Hello world, this is a test.", nil, false)

	retried, err := svc.Enhance(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnhancementStatusCompleted, retried.LLMEnhancementStatus)
	assert.Nil(t, retried.LLMErrorMessage)
	assert.Equal(t, 2, completer.Calls())
}

// deletingCompleter removes the transcription while the completion is in flight
type deletingCompleter struct {
	repo transcription.Repository
	id   string
}

func (d *deletingCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	if _, err := d.repo.Delete(ctx, d.id); err != nil {
		return "", err
	}
	return "Hello world.", nil
}

func TestEnhanceDoesNotRecreateDeletedTranscription(t *testing.T) {
	repo := transcription.NewRepository(setupTestDB(t))
	tr := completedTranscription(t, repo, models.TranscriptionOptions{EnableLLMEnhancement: true})
	svc := NewService(repo, &deletingCompleter{repo: repo, id: tr.ID}, time.Second, nil, nil)

	_, err := svc.Enhance(context.Background(), tr.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))

	gone, err := repo.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestEnhanceErrorIsRecorded(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("failed to connect to llm server")}
	svc, repo := newService(t, completer, time.Second)
	tr := completedTranscription(t, repo, models.TranscriptionOptions{EnableLLMEnhancement: true})

	got, err := svc.Enhance(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnhancementStatusFailed, got.LLMEnhancementStatus)
	assert.Contains(t, *got.LLMErrorMessage, "failed to connect")

	completer.set("   ", nil, false)
	got, err = svc.Enhance(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnhancementStatusFailed, got.LLMEnhancementStatus)
}

func TestEnhanceRejectsIneligible(t *testing.T) {
	svc, repo := newService(t, &fakeCompleter{reply: "x"}, time.Second)
	ctx := context.Background()

	disabled := completedTranscription(t, repo, models.TranscriptionOptions{})
	_, err := svc.Enhance(ctx, disabled.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))
	assert.Contains(t, apperrors.Message(err), "LLM enhancement not enabled")

	pending := models.NewTranscription("pending-1", "audio-1", "base", models.TranscriptionOptions{EnableLLMEnhancement: true})
	require.NoError(t, repo.Create(ctx, pending))
	_, err = svc.Enhance(ctx, pending.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))

	_, err = svc.Enhance(ctx, "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
}

func TestConcurrentEnhanceRunsOnce(t *testing.T) {
	completer := &fakeCompleter{reply: "Done.", delay: 10 * time.Millisecond}
	svc, repo := newService(t, completer, time.Second)
	tr := completedTranscription(t, repo, models.TranscriptionOptions{EnableLLMEnhancement: true})

	var wg sync.WaitGroup
	var ok, rejected atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Enhance(context.Background(), tr.ID)
			if err == nil {
				ok.Add(1)
			} else if apperrors.Is(err, apperrors.ErrCodeValidation) {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(4), rejected.Load())
	assert.Equal(t, 1, completer.Calls())
	assert.Equal(t, int32(1), completer.peak.Load())
}

func TestEnhanceTranscriptionInPlace(t *testing.T) {
	completer := &fakeCompleter{reply: "Hello."}
	svc, repo := newService(t, completer, time.Second)
	tr := completedTranscription(t, repo, models.TranscriptionOptions{EnableLLMEnhancement: true})

	require.NoError(t, svc.EnhanceTranscription(context.Background(), tr))
	assert.Equal(t, models.EnhancementStatusCompleted, tr.LLMEnhancementStatus)

	// already completed, nothing more happens
	require.NoError(t, svc.EnhanceTranscription(context.Background(), tr))
	assert.Equal(t, 1, completer.Calls())

	assert.Error(t, svc.EnhanceTranscription(context.Background(), nil))
}
