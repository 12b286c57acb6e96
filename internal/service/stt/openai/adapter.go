// Package openai provides a speech-to-text adapter backed by the OpenAI
// audio transcription API.
package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"telemeet-transcription-service/internal/service/stt"
)

// Adapter implements stt.Recognizer using whisper-family models.
type Adapter struct {
	client *openai.Client
	model  string
}

// New creates an adapter. baseURL overrides the API endpoint when non-empty
// (used by tests and proxies).
func New(apiKey, baseURL, model string) (*Adapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", stt.ErrServiceUnavailable)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &Adapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Provider returns the adapter name.
func (a *Adapter) Provider() string {
	return "openai"
}

// Transcribe submits the audio file for transcription. Leaving the language
// unset enables automatic source-language detection.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    a.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", stt.ErrServiceUnavailable, err)
	}
	return strings.TrimSpace(resp.Text), nil
}
