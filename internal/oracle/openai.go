package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/roach88/elemental/internal/ir"
)

const (
	combinePrompt = "You are the rules of an element-combination game. " +
		"The user sends two elements joined by '+'. Reply with exactly one new element " +
		"as a short name followed by a single space and a single emoji, for example: Steam \u2601\uFE0F. " +
		"Reply with nothing else."
	splitPrompt = "You are the rules of an element-combination game. " +
		"The user sends one element. Reply with the two elements that combine into it, " +
		"each as a short name followed by a single space and a single emoji, joined by '+', " +
		"for example: Fire \U0001F525+Water \U0001F4A7. Reply with nothing else."
)

// OpenAIClient resolves requests with a chat completion model. It works with
// any OpenAI-compatible endpoint, including local inference servers.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client. An empty baseURL uses the OpenAI API.
// A zero timeout means no per-request timeout beyond the caller's context.
func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) (*OpenAIClient, error) {
	if model == "" {
		return nil, fmt.Errorf("openai oracle: model is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	slog.Info("initializing openai oracle", "model", model, "base_url", cfg.BaseURL, "timeout", timeout)
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Combine implements Oracle.
func (o *OpenAIClient) Combine(ctx context.Context, a, b string) (ir.Element, error) {
	reply, err := o.complete(ctx, combinePrompt, a+"+"+b)
	if err != nil {
		return ir.Element{}, err
	}
	return ParseElement(reply)
}

// Split implements Oracle.
func (o *OpenAIClient) Split(ctx context.Context, symbol string) ([]ir.Element, error) {
	reply, err := o.complete(ctx, splitPrompt, symbol)
	if err != nil {
		return nil, err
	}
	return ParseSplit(reply)
}

func (o *OpenAIClient) complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
		MaxTokens:   30,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: %w: no choices", ErrMalformed)
	}
	slog.Debug("openai reply", "finish_reason", resp.Choices[0].FinishReason, "content", resp.Choices[0].Message.Content)
	return resp.Choices[0].Message.Content, nil
}

// ParseElement parses "Name glyph": the glyph is the last space-separated
// field and the name is everything before it.
func ParseElement(s string) (ir.Element, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	i := strings.LastIndexByte(s, ' ')
	if i <= 0 || i == len(s)-1 {
		return ir.Element{}, fmt.Errorf("parse %q: %w: want \"Name glyph\"", s, ErrMalformed)
	}
	name := strings.TrimSpace(s[:i])
	glyph := s[i+1:]
	if name == "" {
		return ir.Element{}, fmt.Errorf("parse %q: %w: empty name", s, ErrMalformed)
	}
	return ir.Element{Symbol: name, Glyph: glyph}, nil
}

// ParseSplit parses "Name glyph+Name glyph". Only the first '+' separates the
// halves, so the second name may itself contain '+'.
func ParseSplit(s string) ([]ir.Element, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "+", 2)
	out := make([]ir.Element, 0, len(parts))
	for _, p := range parts {
		e, err := ParseElement(p)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
