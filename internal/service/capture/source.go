// Package capture drives the periodic audio segment capture loop for each
// local participant.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoAudio indicates a capture interval elapsed without any audio
// arriving. The scheduler skips such segments.
var ErrNoAudio = errors.New("capture: no audio buffered for interval")

// Source produces one bounded audio segment per call. Record blocks for the
// requested duration while audio accumulates, then returns the path of a
// file holding exactly that interval's audio. Implementations must honor
// cancellation by discarding the in-progress segment.
type Source interface {
	Record(ctx context.Context, d time.Duration) (string, error)
}

// StreamSource buffers audio frames pushed from a participant's connection
// (websocket binary frames) and cuts them into fixed-duration segments.
// Recording is gapless: bytes arriving while a segment is being cut land in
// the next one.
type StreamSource struct {
	tmpDir        string
	participantID string

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewStreamSource creates a stream-backed source writing segment files to
// tmpDir.
func NewStreamSource(tmpDir, participantID string) *StreamSource {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &StreamSource{tmpDir: tmpDir, participantID: participantID}
}

// Write appends one audio frame to the current segment.
func (s *StreamSource) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

// Record waits out the capture interval, then cuts everything buffered so
// far into a segment file. On cancellation the buffered audio is discarded,
// not transcribed.
func (s *StreamSource) Record(ctx context.Context, d time.Duration) (string, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.discard()
		return "", ctx.Err()
	case <-timer.C:
	}

	s.mu.Lock()
	data := s.buf.Bytes()
	if len(data) == 0 {
		s.mu.Unlock()
		return "", ErrNoAudio
	}
	out := make([]byte, len(data))
	copy(out, data)
	s.buf.Reset()
	s.mu.Unlock()

	name := fmt.Sprintf("seg_%s_%d.webm", s.participantID, time.Now().UnixNano())
	path := filepath.Join(s.tmpDir, name)
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return "", fmt.Errorf("write segment: %w", err)
	}
	return path, nil
}

func (s *StreamSource) discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
}
