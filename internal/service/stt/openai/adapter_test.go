package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"telemeet-transcription-service/internal/service/stt"
)

func writeAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "segment.wav")
	if err := os.WriteFile(path, []byte("fake audio"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New("", "", "whisper-1"); !errors.Is(err, stt.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestAdapter_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart request: %v", err)
		}
		if model := r.FormValue("model"); model != "whisper-1" {
			t.Errorf("expected model 'whisper-1', got %s", model)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "  I have a headache  "})
	}))
	defer srv.Close()

	a, err := New("test-key", srv.URL, "whisper-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := a.Transcribe(context.Background(), writeAudioFile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "I have a headache" {
		t.Errorf("expected trimmed transcript, got %q", got)
	}
}

func TestAdapter_TranscribeServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a, err := New("test-key", srv.URL, "whisper-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := a.Transcribe(context.Background(), writeAudioFile(t)); !errors.Is(err, stt.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestAdapter_Provider(t *testing.T) {
	a, err := New("test-key", "", "whisper-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Provider() != "openai" {
		t.Errorf("expected provider 'openai', got %s", a.Provider())
	}
}
