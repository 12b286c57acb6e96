// Package mock provides a mock recognizer for running without provider
// credentials. It cycles through canned utterances deterministically.
package mock

import (
	"context"
	"sync"
)

// DefaultUtterances provides sample utterances for simulation.
var DefaultUtterances = []string{
	"I have a headache since yesterday",
	"Could you repeat the dosage please",
	"The pain is mostly on the left side",
	"Yes I took the medication this morning",
	"Thank you doctor that is all",
}

// Adapter implements stt.Recognizer with canned responses. Each call to
// Transcribe returns the next utterance in the cycle.
type Adapter struct {
	mu         sync.Mutex
	utterances []string
	next       int
}

// New creates a mock recognizer cycling through DefaultUtterances.
func New() *Adapter {
	return &Adapter{utterances: DefaultUtterances}
}

// NewWithUtterances creates a mock recognizer with a fixed script. An empty
// script yields empty transcripts (simulated silence).
func NewWithUtterances(utterances []string) *Adapter {
	return &Adapter{utterances: utterances}
}

// Provider returns the adapter name.
func (a *Adapter) Provider() string {
	return "mock"
}

// Transcribe returns the next canned utterance.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.utterances) == 0 {
		return "", nil
	}
	text := a.utterances[a.next%len(a.utterances)]
	a.next++
	return text, nil
}
