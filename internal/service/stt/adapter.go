// Package stt defines the interface for speech-to-text adapters.
package stt

import (
	"context"
	"errors"
)

// ErrServiceUnavailable indicates the recognition provider is unreachable or
// mis-configured. The pipeline aborts the current segment with an empty
// result; the error never surfaces to the session.
var ErrServiceUnavailable = errors.New("speech recognition service unavailable")

// Recognizer transcribes one bounded audio segment. Implementations are
// expected to auto-detect the source language.
type Recognizer interface {
	// Transcribe submits the audio file at audioPath and returns the raw
	// recognized text. An empty string with a nil error means silence.
	Transcribe(ctx context.Context, audioPath string) (string, error)

	// Provider returns the adapter name for logging and metrics.
	Provider() string
}
