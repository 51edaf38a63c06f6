package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionsURL = "http://llm.test/v1/chat/completions"

func newMockedClient(t *testing.T, cfg Config) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	cfg.BaseURL = "http://llm.test/v1/"
	cfg.HTTPClient = &http.Client{Transport: transport}
	return NewClient(cfg), transport
}

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestCompleteSendsChatRequest(t *testing.T) {
	client, transport := newMockedClient(t, Config{Model: "qwen2.5", APIKey: "secret"})

	var captured chatRequest
	transport.RegisterResponder(http.MethodPost, completionsURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&captured))
		return httpmock.NewJsonResponse(http.StatusOK, completion("  Hello, world.  "))
	})

	text, err := client.Complete(context.Background(), Request{Text: "um hello world", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, world.", text)

	assert.Equal(t, "qwen2.5", captured.Model)
	assert.Equal(t, 2048, captured.MaxTokens)
	assert.InDelta(t, 0.3, captured.Temperature, 0.0001)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Contains(t, captured.Messages[1].Content, "um hello world")
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		contains  string
	}{
		{
			name:      "server error",
			responder: httpmock.NewStringResponder(http.StatusInternalServerError, "model not loaded"),
			contains:  "status 500",
		},
		{
			name:      "malformed body",
			responder: httpmock.NewStringResponder(http.StatusOK, "<html>"),
			contains:  "malformed",
		},
		{
			name:      "no choices",
			responder: httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"choices": []any{}}),
			contains:  "no choices",
		},
		{
			name:      "empty content",
			responder: httpmock.NewJsonResponderOrPanic(http.StatusOK, completion("   ")),
			contains:  "empty completion",
		},
		{
			name:      "connection refused",
			responder: httpmock.NewErrorResponder(errors.New("connection refused")),
			contains:  "failed to connect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, transport := newMockedClient(t, Config{})
			transport.RegisterResponder(http.MethodPost, completionsURL, tt.responder)

			_, err := client.Complete(context.Background(), Request{Text: "hello"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestCompleteHonoursDeadline(t *testing.T) {
	client, transport := newMockedClient(t, Config{})
	transport.RegisterResponder(http.MethodPost, completionsURL, func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, Request{Text: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{})
	assert.Equal(t, defaultBaseURL, client.cfg.BaseURL)
	assert.Equal(t, defaultModel, client.Model())
	assert.Equal(t, defaultMaxTokens, client.cfg.MaxTokens)
	assert.Equal(t, defaultTimeout, client.cfg.Timeout)
}
