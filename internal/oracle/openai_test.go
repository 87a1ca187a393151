package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, reply string, gotUser *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if gotUser != nil && len(req.Messages) > 1 {
			*gotUser = req.Messages[1].Content
		}
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
				FinishReason: openai.FinishReasonStop,
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestOpenAIClient_Combine(t *testing.T) {
	var user string
	srv := chatServer(t, "Steam S", &user)
	defer srv.Close()

	c, err := NewOpenAIClient("test-key", srv.URL+"/v1", "test-model", time.Second)
	require.NoError(t, err)

	e, err := c.Combine(context.Background(), "Fire", "Water")
	require.NoError(t, err)
	assert.Equal(t, "Steam", e.Symbol)
	assert.Equal(t, "S", e.Glyph)
	assert.Equal(t, "Fire+Water", user)
}

func TestOpenAIClient_Split(t *testing.T) {
	srv := chatServer(t, "Fire F+Water W", nil)
	defer srv.Close()

	c, err := NewOpenAIClient("test-key", srv.URL+"/v1", "test-model", time.Second)
	require.NoError(t, err)

	p, err := ResolveSplit(context.Background(), c, "Steam")
	require.NoError(t, err)
	assert.Equal(t, "Fire", p[0].Symbol)
	assert.Equal(t, "Water", p[1].Symbol)
}

func TestOpenAIClient_MalformedReply(t *testing.T) {
	srv := chatServer(t, "nope", nil)
	defer srv.Close()

	c, err := NewOpenAIClient("test-key", srv.URL+"/v1", "test-model", time.Second)
	require.NoError(t, err)

	_, err = c.Combine(context.Background(), "A", "B")
	assert.ErrorIs(t, err, ErrMalformed)

	e, err := ResolveCombine(context.Background(), c, "A", "B")
	assert.Error(t, err)
	assert.True(t, e.IsTombstone())
}

func TestNewOpenAIClient_RequiresModel(t *testing.T) {
	_, err := NewOpenAIClient("k", "", "", 0)
	assert.Error(t, err)
}

func TestOpenAIClient_TimeoutTombstones(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewOpenAIClient("test-key", srv.URL+"/v1", "test-model", 50*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	e, err := ResolveCombine(context.Background(), c, "Fire", "Water")
	require.Error(t, err)
	assert.True(t, e.IsTombstone())
	assert.Less(t, time.Since(start), 5*time.Second)

	p, err := ResolveSplit(context.Background(), c, "Steam")
	require.Error(t, err)
	assert.True(t, p.IsTombstone())
}
