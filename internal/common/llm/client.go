// Package llm is the chat-completion collaborator. Whatever shape the provider
// uses for message content, callers always get a plain string back.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"solar-advisor/internal/common/config"
	"solar-advisor/internal/common/httpclient"
)

var (
	// ErrTimeout marks a call that ran out of time.
	ErrTimeout = errors.New("LLM_TIMEOUT")
	// ErrUnavailable marks transport, auth and server failures.
	ErrUnavailable = errors.New("LLM_UNAVAILABLE")
	// ErrEmptyResponse is returned when the provider answered without choices.
	ErrEmptyResponse = errors.New("LLM_EMPTY_RESPONSE")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer turns a conversation into the model's reply text.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Client talks to an OpenAI compatible /chat/completions endpoint.
type Client struct {
	http        *httpclient.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

var _ Completer = (*Client)(nil)

func NewClient(cfg config.LLMConfig, opts ...httpclient.Option) *Client {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		http:        httpclient.New("llm", timeout, cfg.MaxRetries, opts...),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     timeout,
	}
}

// WithModel returns a copy of the client that targets another model.
func (c *Client) WithModel(model string) *Client {
	if model == "" || model == c.model {
		return c
	}
	cp := *c
	cp.model = model
	return &cp
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

// Complete sends messages and returns the first choice's text. The whole call,
// retries included, is bounded by the configured timeout.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp chatResponse
	err := c.http.DoJSON(ctx, httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/chat/completions",
		Headers: map[string]string{"Authorization": "Bearer " + c.apiKey},
		Body: chatRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		},
	}, &resp)
	if err != nil {
		if httpclient.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	choice := resp.Choices[0]
	text, err := NormalizeContent(choice.Message.Content)
	if err != nil {
		return "", err
	}
	if text == "" && choice.Text != "" {
		text = choice.Text
	}
	return text, nil
}

// NormalizeContent flattens provider message content into plain text. It
// accepts a JSON string, an array of content parts, or an object carrying a
// "text" or "content" field.
func NormalizeContent(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode content string: %w", err)
		}
		return s, nil

	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(raw, &parts); err != nil {
			return "", fmt.Errorf("decode content parts: %w", err)
		}
		var b strings.Builder
		for _, part := range parts {
			text, err := NormalizeContent(part)
			if err != nil {
				return "", err
			}
			b.WriteString(text)
		}
		return b.String(), nil

	case '{':
		var obj struct {
			Type    string          `json:"type"`
			Text    json.RawMessage `json:"text"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", fmt.Errorf("decode content object: %w", err)
		}
		if obj.Type != "" && obj.Type != "text" && obj.Type != "output_text" {
			return "", nil
		}
		if len(obj.Text) > 0 {
			return NormalizeContent(obj.Text)
		}
		return NormalizeContent(obj.Content)

	default:
		return trimmed, nil
	}
}

// IsTimeout reports whether err is a timed out completion.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsUnavailable reports whether err is a hard invocation failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
