package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parentpath/internal/llm"
)

// fakeChatClient records the last request and replies with scripted content.
type fakeChatClient struct {
	lastRequest llm.ChatCompletionRequest
	content     string
	err         error
	delay       time.Duration
}

func (f *fakeChatClient) ChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	f.lastRequest = req
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	resp := &llm.ChatCompletionResponse{Choices: make([]llm.Choice, 1)}
	resp.Choices[0].Message.Content = f.content
	return resp, nil
}

func TestGeminiTranslatorBuildsPrompt(t *testing.T) {
	client := &fakeChatClient{content: "RESUMEN"}
	translator := GeminiTranslator{Client: client, Model: "gemini-2.5-flash"}

	out, err := translator.Translate(context.Background(), "📬 *Weekly Digest*", "es")
	require.NoError(t, err)
	assert.Equal(t, "RESUMEN", out)

	require.Len(t, client.lastRequest.Messages, 2)
	assert.Equal(t, "gemini-2.5-flash", client.lastRequest.Model)
	assert.Contains(t, client.lastRequest.Messages[1].Content, "Spanish")
	assert.Contains(t, client.lastRequest.Messages[1].Content, "📬 *Weekly Digest*")
}

func TestGeminiTranslatorUnknownLanguagePassesCodeThrough(t *testing.T) {
	client := &fakeChatClient{content: "ok"}
	translator := GeminiTranslator{Client: client, Model: "gemini-2.5-flash"}

	_, err := translator.Translate(context.Background(), "hello", "fr")
	require.NoError(t, err)
	assert.Contains(t, client.lastRequest.Messages[1].Content, "Translate this school digest to fr.")
}

func TestGeminiTranslatorEnglishShortCircuits(t *testing.T) {
	client := &fakeChatClient{content: "never used"}
	translator := GeminiTranslator{Client: client, Model: "gemini-2.5-flash"}

	out, err := translator.Translate(context.Background(), "hello parents", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello parents", out)
	assert.Empty(t, client.lastRequest.Model, "no request should be sent for English")
}

func TestGeminiTranslatorErrors(t *testing.T) {
	t.Run("misconfigured", func(t *testing.T) {
		_, err := GeminiTranslator{}.Translate(context.Background(), "text", "es")
		assert.Error(t, err)
	})

	t.Run("collaborator failure", func(t *testing.T) {
		translator := GeminiTranslator{
			Client: &fakeChatClient{err: errors.New("boom")},
			Model:  "gemini-2.5-flash",
		}
		_, err := translator.Translate(context.Background(), "text", "es")
		assert.Error(t, err)
	})

	t.Run("blank translation", func(t *testing.T) {
		translator := GeminiTranslator{
			Client: &fakeChatClient{content: "   "},
			Model:  "gemini-2.5-flash",
		}
		_, err := translator.Translate(context.Background(), "text", "es")
		assert.Error(t, err)
	})
}

func TestGeminiTranslatorTimeoutIsBounded(t *testing.T) {
	translator := GeminiTranslator{
		Client:  &fakeChatClient{content: "late", delay: 200 * time.Millisecond},
		Model:   "gemini-2.5-flash",
		Timeout: 10 * time.Millisecond,
	}

	_, err := translator.Translate(context.Background(), "text", "es")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
