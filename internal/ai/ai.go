// Package ai generates section summaries, image descriptions and speech.
//
// Providers implement Generator. Results carry the provider name and the
// prompt used so the editor can stamp summary provenance.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/liaGregorio/GeoDUA-sub000/internal/media"
)

// ErrDisabled is returned when no provider or API key is configured.
var ErrDisabled = errors.New("ai provider not configured")

// Result is generated text plus where it came from.
type Result struct {
	Text     string
	Provider string
	Model    string
	Prompt   string
}

// Generator is the AI collaborator used by the editor.
type Generator interface {
	Summarize(ctx context.Context, text string) (Result, error)
	DescribeImage(ctx context.Context, data []byte, contentType string) (Result, error)
	Speak(ctx context.Context, text string) (media.Audio, error)
}

// Options select and configure a provider.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	TTSModel string
	Voice    string
	BaseURL  string
}

// Prompts sent to providers. The summary prompt is recorded as provenance.
const (
	SummaryPrompt = "Summarize the following textbook section for students in three to five sentences. " +
		"Keep the terminology of the source and do not add facts that are not in it."
	DescribePrompt = "Describe this textbook illustration in one or two sentences for a screen-reader user. " +
		"Mention labels, axes or legends when present."
)

// New returns the Generator for opts.Provider ("gemini" when empty).
func New(ctx context.Context, opts Options) (Generator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return disabled{}, ErrDisabled
	}
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "gemini":
		return NewGemini(ctx, opts)
	case "openai":
		return NewOpenAI(opts), nil
	case "none", "off":
		return disabled{}, ErrDisabled
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", opts.Provider)
	}
}

func summaryInput(text string) string {
	return SummaryPrompt + "\n\n" + strings.TrimSpace(text)
}

// disabled satisfies Generator when AI is not configured.
type disabled struct{}

func (disabled) Summarize(context.Context, string) (Result, error) { return Result{}, ErrDisabled }

func (disabled) DescribeImage(context.Context, []byte, string) (Result, error) {
	return Result{}, ErrDisabled
}

func (disabled) Speak(context.Context, string) (media.Audio, error) { return media.Audio{}, ErrDisabled }

// Disabled returns a Generator that always fails with ErrDisabled.
func Disabled() Generator { return disabled{} }
