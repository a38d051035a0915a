package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/architect/pkg/adapters/openai"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model               string  `json:"model"`
	Temperature         float32 `json:"temperature"`
	TopP                float32 `json:"top_p"`
	MaxCompletionTokens int     `json:"max_completion_tokens"`
	Messages            []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestNew_MissingCredential(t *testing.T) {
	_, err := openai.New("  ")
	assert.ErrorIs(t, err, domain.ErrCredentialMissing)
}

func TestComplete_Success(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"import { Component } from '@angular/core';"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c, err := openai.New("sk-test", openai.WithBaseURL(srv.URL+"/v1/"))
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), ports.CompletionRequest{
		Model:  "gpt-4o-mini",
		System: "you are an architect",
		User:   "a card",
		Params: ports.GenerationParams{Temperature: 0.2, TopP: 0.9, MaxTokens: 1024},
	})
	require.NoError(t, err)
	assert.Equal(t, "import { Component } from '@angular/core';", out)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.2, got.Temperature, 0.0001)
	assert.InDelta(t, 0.9, got.TopP, 0.0001)
	assert.Equal(t, 1024, got.MaxCompletionTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "a card", got.Messages[1].Content)
}

func TestComplete_ZeroSamplingParamsAreSent(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"m",
			"choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c, err := openai.New("sk-test", openai.WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), ports.CompletionRequest{
		Model:  "m",
		User:   "a card",
		Params: ports.GenerationParams{Temperature: 0, TopP: 0.9, MaxTokens: 10},
	})
	require.NoError(t, err)

	require.Contains(t, body, "temperature")
	assert.InDelta(t, 0, body["temperature"], 1e-9)
	assert.InDelta(t, 0.9, body["top_p"], 0.0001)
}

func TestComplete_ModelNotFoundIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"The model 'nope' does not exist","type":"invalid_request_error","code":"model_not_found"}}`))
	}))
	defer srv.Close()

	c, err := openai.New("sk-test", openai.WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), ports.CompletionRequest{Model: "nope"})
	var pe *domain.ProviderError
	require.True(t, errors.As(err, &pe), "got %T: %v", err, err)
	assert.Equal(t, http.StatusNotFound, pe.StatusCode)
	assert.Equal(t, "nope", pe.Model)
	assert.Contains(t, pe.Message, "does not exist")
}

func TestComplete_UnreachableIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := openai.New("sk-test", openai.WithBaseURL(url))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), ports.CompletionRequest{Model: "m"})
	require.Error(t, err)

	var netErr net.Error
	assert.True(t, errors.As(err, &netErr), "got %T: %v", err, err)
	var pe *domain.ProviderError
	assert.False(t, errors.As(err, &pe))
}
