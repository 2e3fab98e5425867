package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

type capturingClient struct {
	lastReq openai.ChatCompletionRequest
	resp    openai.ChatCompletionResponse
	err     error
}

func (c *capturingClient) CreateChatCompletion(
	_ context.Context,
	req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	c.lastReq = req
	return c.resp, c.err
}

func reply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
		}},
	}
}

func TestTranslateBuildsRequest(t *testing.T) {
	t.Parallel()

	cc := &capturingClient{resp: reply("  Привет, мир  ")}
	c := NewWithChat(cc, Config{Model: "test-model", Temperature: 0.3}, nil)

	out, err := c.Translate(context.Background(), "Hello, world")
	require.NoError(t, err)
	require.Equal(t, "Привет, мир", out)

	require.Equal(t, "test-model", cc.lastReq.Model)
	require.Equal(t, 4000, cc.lastReq.MaxTokens)
	require.InDelta(t, 0.3, cc.lastReq.Temperature, 0.0001)
	require.Len(t, cc.lastReq.Messages, 2)
	require.Equal(t, openai.ChatMessageRoleSystem, cc.lastReq.Messages[0].Role)
	require.Contains(t, cc.lastReq.Messages[0].Content, "Russian")
	require.Contains(t, cc.lastReq.Messages[1].Content, "Hello, world")
}

func TestTranslateRejectsEmptyContent(t *testing.T) {
	t.Parallel()

	cc := &capturingClient{}
	_, err := NewWithChat(cc, Config{}, nil).Translate(context.Background(), "  \n")
	require.ErrorIs(t, err, ErrEmptyContent)
	require.Empty(t, cc.lastReq.Messages)
}

func TestTranslateUpstreamFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("upstream down")
	_, err := NewWithChat(&capturingClient{err: boom}, Config{}, nil).Translate(context.Background(), "text")
	require.ErrorIs(t, err, boom)

	_, err = NewWithChat(&capturingClient{resp: openai.ChatCompletionResponse{}}, Config{}, nil).
		Translate(context.Background(), "text")
	require.ErrorIs(t, err, ErrEmptyCompletion)

	_, err = NewWithChat(&capturingClient{resp: reply("   ")}, Config{}, nil).Translate(context.Background(), "text")
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestNewSendsAttributionHeaders(t *testing.T) {
	t.Parallel()

	var (
		gotPath  string
		gotAuth  string
		gotRef   string
		gotTitle string
		gotModel string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotRef = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		var body openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply("Bonjour"))
	}))
	defer srv.Close()

	c := New(Config{
		BaseURL:        srv.URL + "/api/v1/",
		APIKey:         "secret",
		Model:          "deepseek/deepseek-r1-0528:free",
		TargetLanguage: "French",
		AppURL:         "http://localhost:3000",
		AppTitle:       "Referent",
	}, nil)

	out, err := c.Translate(context.Background(), "Hello")
	require.NoError(t, err)
	require.Equal(t, "Bonjour", out)
	require.Equal(t, "/api/v1/chat/completions", gotPath)
	require.Equal(t, "Bearer secret", gotAuth)
	require.Equal(t, "http://localhost:3000", gotRef)
	require.Equal(t, "Referent", gotTitle)
	require.Equal(t, "deepseek/deepseek-r1-0528:free", gotModel)
}

func TestNewAppliesConfiguredTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond}, nil)
	require.Equal(t, 50*time.Millisecond, c.Timeout())

	start := time.Now()
	_, err := c.Translate(context.Background(), "Hello")
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)

	require.Equal(t, DefaultTimeout, New(Config{APIKey: "k"}, nil).Timeout())
}
