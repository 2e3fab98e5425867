// Package translate forwards extracted article text to an OpenAI-compatible
// chat completion endpoint (OpenRouter by default) for translation.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/JakeFAU/referent/internal/metrics"
)

// Errors returned by Translate.
var (
	ErrEmptyContent    = errors.New("content is required")
	ErrEmptyCompletion = errors.New("model returned no translation")
)

// DefaultTimeout bounds a chat completion call when Config.Timeout is unset.
const DefaultTimeout = 60 * time.Second

// ChatClient is the subset of the go-openai client used here.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config describes the upstream model.
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	TargetLanguage string
	Temperature    float32
	MaxTokens      int
	AppURL         string
	AppTitle       string
	Timeout        time.Duration
}

// Client translates article bodies.
type Client struct {
	chat   ChatClient
	cfg    Config
	logger *zap.Logger
}

// New builds a Client backed by go-openai. OpenRouter attribution headers are
// attached to every request when configured.
func New(cfg Config, logger *zap.Logger) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	headers := http.Header{}
	if cfg.AppURL != "" {
		headers.Set("HTTP-Referer", cfg.AppURL)
	}
	if cfg.AppTitle != "" {
		headers.Set("X-Title", cfg.AppTitle)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	oc.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &headerTransport{base: http.DefaultTransport, headers: headers},
	}
	return NewWithChat(openai.NewClientWithConfig(oc), cfg, logger)
}

// NewWithChat builds a Client around an existing chat client.
func NewWithChat(chat ChatClient, cfg Config, logger *zap.Logger) *Client {
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = "Russian"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{chat: chat, cfg: cfg, logger: logger}
}

// Timeout is the HTTP deadline applied to each completion call. It is zero
// for clients built around an existing ChatClient.
func (c *Client) Timeout() time.Duration {
	return c.cfg.Timeout
}

// Translate returns content translated into the configured language. Content
// is sent as is; any length limit is the upstream's concern.
func (c *Client) Translate(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("You are a professional translator. Translate the following article into %s. "+
					"Preserve the structure and formatting of the text and translate technical terms accurately.",
					c.cfg.TargetLanguage),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Translate the following article into %s:\n\n%s", c.cfg.TargetLanguage, content),
			},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	start := time.Now()
	resp, err := c.chat.CreateChatCompletion(ctx, req)
	if err != nil {
		metrics.ObserveTranslate("error")
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.ObserveTranslate("empty")
		return "", ErrEmptyCompletion
	}
	metrics.ObserveTranslate("ok")
	c.logger.Info("translation completed",
		zap.String("model", c.cfg.Model),
		zap.Int("input_chars", len(content)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	for key, values := range t.headers {
		for _, v := range values {
			clone.Header.Add(key, v)
		}
	}
	return t.base.RoundTrip(clone)
}
