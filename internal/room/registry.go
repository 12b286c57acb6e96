package room

import (
	"sync"

	"telemeet-transcription-service/internal/observability/logging"
	"telemeet-transcription-service/internal/observability/metrics"
)

// LifecycleSink receives session lifecycle notifications. Implemented by the
// event publisher; optional.
type LifecycleSink interface {
	SessionStarted(sessionID, sessionName string)
	SessionEnded(sessionID, sessionName string)
}

// Registry tracks active sessions by name and id. Creation is serialized per
// name: concurrent CreateOrGet calls for the same name observe exactly one
// session.
type Registry struct {
	mu        sync.Mutex
	byName    map[string]*Session
	byID      map[string]*Session
	memberOf  map[string]string // participantID -> sessionID
	lifecycle LifecycleSink
	metrics   *metrics.Metrics
}

// NewRegistry creates an empty registry. lifecycle may be nil.
func NewRegistry(lifecycle LifecycleSink) *Registry {
	return &Registry{
		byName:    make(map[string]*Session),
		byID:      make(map[string]*Session),
		memberOf:  make(map[string]string),
		lifecycle: lifecycle,
		metrics:   metrics.DefaultMetrics,
	}
}

// CreateOrGet returns the active session with the given name, creating it if
// absent. Idempotent: two concurrent calls for the same name return the same
// session identity. The lifecycle sink is invoked after the registry lock is
// released; a slow sink never stalls unrelated sessions.
func (r *Registry) CreateOrGet(name, initiator string) *Session {
	r.mu.Lock()
	if s, ok := r.byName[name]; ok && s.Status() == StatusActive {
		r.mu.Unlock()
		return s
	}

	s := newSession(name, initiator)
	r.byName[name] = s
	r.byID[s.ID] = s
	r.metrics.RecordSessionStarted()
	r.mu.Unlock()

	slog := logging.WithSession(s.ID, name)
	slog.Info().Msg("session created")
	if r.lifecycle != nil {
		r.lifecycle.SessionStarted(s.ID, s.Name)
	}
	return s
}

// Get returns a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// SessionFor returns the session a participant currently belongs to.
func (r *Registry) SessionFor(participantID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.memberOf[participantID]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	s, ok := r.byID[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// End transitions a session to ended. Subsequent joins fail with
// ErrSessionInactive. Idempotent on already-ended sessions.
func (r *Registry) End(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	ended := r.endLocked(s)
	r.mu.Unlock()
	if ended {
		r.notifyEnded(s)
	}
	return s, nil
}

// endLocked tears down registry state for s under r.mu and reports whether the
// session transitioned to ended. Lifecycle notification is the caller's job,
// after releasing the lock.
func (r *Registry) endLocked(s *Session) bool {
	if s.Status() == StatusEnded {
		return false
	}
	for _, p := range s.Participants() {
		delete(r.memberOf, p.ID)
		r.metrics.RecordParticipantLeft()
	}
	s.end()
	if cur, ok := r.byName[s.Name]; ok && cur == s {
		delete(r.byName, s.Name)
	}
	r.metrics.RecordSessionEnded()
	return true
}

func (r *Registry) notifyEnded(s *Session) {
	slog := logging.WithSession(s.ID, s.Name)
	slog.Info().Msg("session ended")
	if r.lifecycle != nil {
		r.lifecycle.SessionEnded(s.ID, s.Name)
	}
}

// Join adds a participant to the session and records the membership index.
func (r *Registry) Join(s *Session, displayName string) (*Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := s.Join(displayName)
	if err != nil {
		return nil, err
	}
	r.memberOf[p.ID] = s.ID
	r.metrics.RecordParticipantJoined()
	return p, nil
}

// Leave removes a participant. When the last participant leaves, the session
// ends.
func (r *Registry) Leave(s *Session, participantID string) error {
	r.mu.Lock()
	last, err := s.leave(participantID)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	delete(r.memberOf, participantID)
	r.metrics.RecordParticipantLeft()
	ended := false
	if last {
		ended = r.endLocked(s)
	}
	r.mu.Unlock()
	if ended {
		r.notifyEnded(s)
	}
	return nil
}
