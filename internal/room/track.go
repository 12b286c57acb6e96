// Package room tracks active sessions, their participants, and published
// media tracks. It is the single source of truth for membership.
package room

import (
	"errors"
	"fmt"
	"sync"
)

// TrackKind identifies the media carried by a track.
type TrackKind string

const (
	// TrackVideo carries camera video.
	TrackVideo TrackKind = "video"
	// TrackAudio carries microphone audio.
	TrackAudio TrackKind = "audio"
	// TrackData carries structured messages. The data track is reserved
	// exclusively for transcript relay.
	TrackData TrackKind = "data"
)

// TrackState represents the lifecycle state of a published track.
type TrackState int

const (
	// StateUnpublished - track created but not yet announced to peers.
	StateUnpublished TrackState = iota
	// StatePublished - track announced, subscribable by peers.
	StatePublished
	// StateUnpublishedFinal - track withdrawn. Terminal: re-publication
	// starts a fresh Track instance, the old state is never resurrected.
	StateUnpublishedFinal
)

// String returns the string representation of the state.
func (s TrackState) String() string {
	switch s {
	case StateUnpublished:
		return "UNPUBLISHED"
	case StatePublished:
		return "PUBLISHED"
	case StateUnpublishedFinal:
		return "UNPUBLISHED_FINAL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// Errors for invalid track state transitions.
var (
	ErrTrackClosed       = errors.New("track is unpublished")
	ErrAlreadyPublished  = errors.New("track already published")
	ErrNotPublished      = errors.New("track is not published")
	ErrNotSubscribed     = errors.New("peer is not subscribed to this track")
	ErrAlreadySubscribed = errors.New("peer already subscribed to this track")
)

// Track manages the state machine for a single published track.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	UNPUBLISHED → PUBLISHED → UNPUBLISHED_FINAL
//	                 │
//	                 └── Subscribe()/Unsubscribe() ──→ any number of peers
//
// Rules:
//   - UNPUBLISHED: can publish once.
//   - PUBLISHED: peers may subscribe and unsubscribe freely.
//   - UNPUBLISHED_FINAL: terminal, all operations fail.
type Track struct {
	mu          sync.RWMutex
	kind        TrackKind
	state       TrackState
	subscribers map[string]struct{}
}

// NewTrack creates a track of the given kind in UNPUBLISHED state.
func NewTrack(kind TrackKind) *Track {
	return &Track{
		kind:        kind,
		state:       StateUnpublished,
		subscribers: make(map[string]struct{}),
	}
}

// Kind returns the track kind.
func (t *Track) Kind() TrackKind {
	return t.kind
}

// State returns the current state.
func (t *Track) State() TrackState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Publish transitions the track to PUBLISHED.
func (t *Track) Publish() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateUnpublished:
		t.state = StatePublished
		return nil
	case StatePublished:
		return ErrAlreadyPublished
	default:
		return ErrTrackClosed
	}
}

// Subscribe records a peer subscription. Only valid while PUBLISHED.
func (t *Track) Subscribe(peerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StatePublished {
		if t.state == StateUnpublishedFinal {
			return ErrTrackClosed
		}
		return ErrNotPublished
	}
	if _, ok := t.subscribers[peerID]; ok {
		return ErrAlreadySubscribed
	}
	t.subscribers[peerID] = struct{}{}
	return nil
}

// Unsubscribe removes a peer subscription.
func (t *Track) Unsubscribe(peerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.subscribers[peerID]; !ok {
		return ErrNotSubscribed
	}
	delete(t.subscribers, peerID)
	return nil
}

// Subscribers returns the number of currently subscribed peers.
func (t *Track) Subscribers() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subscribers)
}

// Unpublish transitions the track to its terminal state and drops all
// subscriptions. Idempotent.
func (t *Track) Unpublish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateUnpublishedFinal
	t.subscribers = make(map[string]struct{})
}
