package room

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"telemeet-transcription-service/internal/models"
)

// Status represents a session's lifecycle state.
type Status string

const (
	// StatusActive - session accepts joins.
	StatusActive Status = "active"
	// StatusEnded - session is over, joins are rejected.
	StatusEnded Status = "ended"
)

// Errors surfaced by session operations.
var (
	ErrSessionInactive     = errors.New("session has ended")
	ErrSessionNotFound     = errors.New("session not found")
	ErrParticipantNotFound = errors.New("participant not found")
)

// Sink receives deliveries addressed to one participant. Implemented by
// websocket peers and by test fakes.
type Sink interface {
	// DeliverTranscript delivers a data-track transcript message. The
	// payload is the exact wire bytes sent by the owning participant.
	DeliverTranscript(fromParticipantID string, payload []byte) error

	// DeliverEvent delivers a session lifecycle notification.
	DeliverEvent(ev models.PeerEvent) error
}

// Participant is one connection to a session. Identifiers are generated per
// join, one per connection attempt, not per person.
type Participant struct {
	ID          string
	DisplayName string
	JoinedAt    time.Time

	mu     sync.RWMutex
	tracks map[TrackKind]*Track
	sink   Sink
}

// Track returns the participant's current track of the given kind, or nil.
func (p *Participant) Track(kind TrackKind) *Track {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracks[kind]
}

// Tracks returns a snapshot of the participant's current tracks.
func (p *Participant) Tracks() []*Track {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Track, 0, len(p.tracks))
	for _, t := range p.tracks {
		out = append(out, t)
	}
	return out
}

func (p *Participant) setTrack(kind TrackKind, t *Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracks[kind] = t
}

func (p *Participant) attachSink(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = s
}

func (p *Participant) currentSink() Sink {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sink
}

// teardown unpublishes all tracks and detaches the sink so no further
// deliveries reference this participant.
func (p *Participant) teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.tracks {
		t.Unpublish()
	}
	p.tracks = make(map[TrackKind]*Track)
	p.sink = nil
}

// Session is a named real-time meeting scope containing participants and
// their published tracks. The identifier is immutable once created.
type Session struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time

	mu           sync.RWMutex
	status       Status
	participants map[string]*Participant
	order        []string
}

func newSession(name, createdBy string) *Session {
	return &Session{
		ID:           uuid.NewString(),
		Name:         name,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
		status:       StatusActive,
		participants: make(map[string]*Participant),
	}
}

// Status returns the session's current status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Join adds a new participant to the session and returns it.
func (s *Session) Join(displayName string) (*Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return nil, ErrSessionInactive
	}

	p := &Participant{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		JoinedAt:    time.Now().UTC(),
		tracks:      make(map[TrackKind]*Track),
	}
	s.participants[p.ID] = p
	s.order = append(s.order, p.ID)
	return p, nil
}

// Participant returns a current participant by id.
func (s *Session) Participant(id string) (*Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

// Participants returns the current participants in join order.
func (s *Session) Participants() []*Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Participant, 0, len(s.participants))
	for _, id := range s.order {
		if p, ok := s.participants[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// leave removes a participant and reports whether the session is now empty.
func (s *Session) leave(id string) (last bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[id]
	if !ok {
		return false, ErrParticipantNotFound
	}
	p.teardown()
	delete(s.participants, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return len(s.participants) == 0, nil
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusEnded {
		return
	}
	s.status = StatusEnded
	for _, p := range s.participants {
		p.teardown()
	}
	s.participants = make(map[string]*Participant)
	s.order = nil
}
