package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WithoutKeyIsDisabled(t *testing.T) {
	gen, err := New(context.Background(), Options{Provider: "openai"})
	require.ErrorIs(t, err, ErrDisabled)

	_, err = gen.Summarize(context.Background(), "text")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: "claudius", APIKey: "k"})
	assert.ErrorContains(t, err, "unsupported ai provider")
}

func TestNew_OpenAI(t *testing.T) {
	gen, err := New(context.Background(), Options{Provider: "OpenAI", APIKey: "k"})
	require.NoError(t, err)
	_, ok := gen.(*OpenAI)
	assert.True(t, ok)
}

func TestOpenAI_Summarize(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  A short summary.  "}}]}`))
	}))
	defer srv.Close()

	gen := NewOpenAI(Options{APIKey: "secret", BaseURL: srv.URL + "/v1/", Model: "m1"})
	res, err := gen.Summarize(context.Background(), "Rivers carve valleys.")
	require.NoError(t, err)

	assert.Equal(t, "A short summary.", res.Text)
	assert.Equal(t, "openai", res.Provider)
	assert.Equal(t, "m1", res.Model)
	assert.Equal(t, SummaryPrompt, res.Prompt)
	assert.Equal(t, "m1", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Rivers carve valleys.", got.Messages[1].Content)
}

func TestOpenAI_DescribeImageSendsDataURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		body, _ := json.Marshal(raw)
		assert.Contains(t, string(body), "data:image/png;base64,")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"A map of the basin."}}]}`))
	}))
	defer srv.Close()

	gen := NewOpenAI(Options{APIKey: "k", BaseURL: srv.URL})
	res, err := gen.DescribeImage(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "A map of the basin.", res.Text)
	assert.Equal(t, DescribePrompt, res.Prompt)
}

func TestOpenAI_Speak(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		var req speechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "wav", req.ResponseFormat)
		assert.Equal(t, "alloy", req.Voice)
		_, _ = w.Write([]byte("RIFFdata"))
	}))
	defer srv.Close()

	gen := NewOpenAI(Options{APIKey: "k", BaseURL: srv.URL})
	audio, err := gen.Speak(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", audio.ContentType)
	assert.Equal(t, []byte("RIFFdata"), audio.Data)
}

func TestOpenAI_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 500), http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gen := NewOpenAI(Options{APIKey: "k", BaseURL: srv.URL})
	_, err := gen.Summarize(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.False(t, errors.Is(err, ErrDisabled))
}
