package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/liaGregorio/GeoDUA-sub000/internal/media"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	defaultGeminiTTS   = "gemini-2.5-flash-preview-tts"
	defaultGeminiVoice = "Kore"
	geminiName         = "gemini"
)

// Gemini implements Generator with the Gemini API.
type Gemini struct {
	client   *genai.Client
	model    string
	ttsModel string
	voice    string
}

// NewGemini creates a Gemini-backed generator.
func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{
		client:   client,
		model:    orDefault(opts.Model, defaultGeminiModel),
		ttsModel: orDefault(opts.TTSModel, defaultGeminiTTS),
		voice:    orDefault(opts.Voice, defaultGeminiVoice),
	}, nil
}

// Summarize generates a short summary of text.
func (g *Gemini) Summarize(ctx context.Context, text string) (Result, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(summaryInput(text)), nil)
	if err != nil {
		return Result{}, fmt.Errorf("gemini summarize: %w", err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return Result{}, fmt.Errorf("gemini summarize: empty response")
	}
	return Result{Text: out, Provider: geminiName, Model: g.model, Prompt: SummaryPrompt}, nil
}

// DescribeImage generates alt text for an image.
func (g *Gemini) DescribeImage(ctx context.Context, data []byte, contentType string) (Result, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(DescribePrompt),
			genai.NewPartFromBytes(data, contentType),
		}, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return Result{}, fmt.Errorf("gemini describe image: %w", err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return Result{}, fmt.Errorf("gemini describe image: empty response")
	}
	return Result{Text: out, Provider: geminiName, Model: g.model, Prompt: DescribePrompt}, nil
}

// Speak synthesizes text to raw PCM audio.
func (g *Gemini) Speak(ctx context.Context, text string) (media.Audio, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.ttsModel, genai.Text(strings.TrimSpace(text)), cfg)
	if err != nil {
		return media.Audio{}, fmt.Errorf("gemini speak: %w", err)
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				ct := part.InlineData.MIMEType
				if ct == "" {
					ct = "audio/L16;codec=pcm;rate=24000"
				}
				return media.Audio{Data: part.InlineData.Data, ContentType: ct}, nil
			}
		}
	}
	return media.Audio{}, fmt.Errorf("gemini speak: no audio in response")
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
