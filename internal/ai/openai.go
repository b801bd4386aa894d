package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/liaGregorio/GeoDUA-sub000/internal/media"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultOpenAITTS     = "gpt-4o-mini-tts"
	defaultOpenAIVoice   = "alloy"
	openAIName           = "openai"
)

// OpenAI implements Generator against any OpenAI-compatible endpoint.
type OpenAI struct {
	baseURL  string
	apiKey   string
	model    string
	ttsModel string
	voice    string
	http     *http.Client
}

// NewOpenAI creates an OpenAI-compatible generator.
func NewOpenAI(opts Options) *OpenAI {
	return &OpenAI{
		baseURL:  strings.TrimRight(orDefault(opts.BaseURL, defaultOpenAIBaseURL), "/"),
		apiKey:   opts.APIKey,
		model:    orDefault(opts.Model, defaultOpenAIModel),
		ttsModel: orDefault(opts.TTSModel, defaultOpenAITTS),
		voice:    orDefault(opts.Voice, defaultOpenAIVoice),
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Summarize generates a short summary of text.
func (o *OpenAI) Summarize(ctx context.Context, text string) (Result, error) {
	out, err := o.chat(ctx, []chatMessage{
		{Role: "system", Content: SummaryPrompt},
		{Role: "user", Content: strings.TrimSpace(text)},
	})
	if err != nil {
		return Result{}, fmt.Errorf("openai summarize: %w", err)
	}
	return Result{Text: out, Provider: openAIName, Model: o.model, Prompt: SummaryPrompt}, nil
}

// DescribeImage generates alt text for an image.
func (o *OpenAI) DescribeImage(ctx context.Context, data []byte, contentType string) (Result, error) {
	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	out, err := o.chat(ctx, []chatMessage{{
		Role: "user",
		Content: []chatPart{
			{Type: "text", Text: DescribePrompt},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
		},
	}})
	if err != nil {
		return Result{}, fmt.Errorf("openai describe image: %w", err)
	}
	return Result{Text: out, Provider: openAIName, Model: o.model, Prompt: DescribePrompt}, nil
}

// Speak synthesizes text to WAV audio.
func (o *OpenAI) Speak(ctx context.Context, text string) (media.Audio, error) {
	body, err := o.post(ctx, "/audio/speech", speechRequest{
		Model:          o.ttsModel,
		Input:          strings.TrimSpace(text),
		Voice:          o.voice,
		ResponseFormat: "wav",
	})
	if err != nil {
		return media.Audio{}, fmt.Errorf("openai speak: %w", err)
	}
	if len(body) == 0 {
		return media.Audio{}, fmt.Errorf("openai speak: empty audio")
	}
	return media.Audio{Data: body, ContentType: "audio/wav"}, nil
}

func (o *OpenAI) chat(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := o.post(ctx, "/chat/completions", chatRequest{Model: o.model, Messages: messages})
	if err != nil {
		return "", err
	}
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("empty response")
	}
	return out, nil
}

func (o *OpenAI) post(ctx context.Context, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	return body, nil
}
