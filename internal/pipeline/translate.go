package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parentpath/internal/llm"
)

// Translator renders digest text into a recipient's language. Implementations
// must treat failure as recoverable; callers fall back to the original text.
type Translator interface {
	Translate(ctx context.Context, text, languageCode string) (string, error)
}

// languageNames maps supported ISO 639-1 codes to prompt-friendly names.
// Unlisted codes are passed through verbatim and left to the model.
var languageNames = map[string]string{
	"en": "English",
	"pa": "Punjabi (Gurmukhi script)",
	"tl": "Tagalog",
	"zh": "Simplified Chinese",
	"es": "Spanish",
}

// GeminiTranslator translates digests through a chat-completion model.
type GeminiTranslator struct {
	Client      llm.ChatClient
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Translate requests a translation of the rendered digest. The call is
// bounded by the configured timeout; timeouts surface as errors so the
// caller can degrade to the untranslated text.
func (t GeminiTranslator) Translate(ctx context.Context, text, languageCode string) (string, error) {
	if languageCode == "en" {
		return text, nil
	}
	if t.Client == nil || t.Model == "" {
		return "", fmt.Errorf("pipeline: translator misconfigured")
	}

	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	req := llm.ChatCompletionRequest{
		Model:       t.Model,
		Messages:    buildTranslationPrompt(text, languageCode),
		Temperature: t.Temperature,
		MaxTokens:   t.MaxTokens,
	}

	resp, err := t.Client.ChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("pipeline: translate to %s: %w", languageCode, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("pipeline: translate to %s: empty response", languageCode)
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("pipeline: translate to %s: blank translation", languageCode)
	}

	return translated, nil
}

func buildTranslationPrompt(text, languageCode string) []llm.Message {
	language, ok := languageNames[languageCode]
	if !ok {
		language = languageCode
	}

	system := "You are a translator for a school-to-parent messaging service. Respond with the translated text only."

	user := fmt.Sprintf(`Translate this school digest to %s.

Preserve:
- Emoji and formatting (keep line breaks)
- URLs (don't translate)
- Dates and times (adapt format to locale if appropriate)
- Grade numbers (e.g., "Grade 5" -> appropriate in target language)
- Activity names (keep in English or translate if natural)

Tone: Friendly, clear, concise - appropriate for parents.

Content to translate:
%s

Return ONLY the translated text, nothing else.`, language, text)

	return []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}
