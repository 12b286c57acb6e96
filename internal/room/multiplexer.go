package room

import (
	"time"

	"github.com/rs/zerolog"

	"telemeet-transcription-service/internal/models"
	"telemeet-transcription-service/internal/observability/logging"
)

// Multiplexer manages per-participant track lifecycle and fan-out. On
// connect it replays existing publications to the new joiner; on publication
// it announces the track to every other current participant; on disconnect
// it tears down the participant's listeners and removes it from the session.
type Multiplexer struct {
	reg *Registry
	log zerolog.Logger
}

// NewMultiplexer creates a multiplexer bound to the registry.
func NewMultiplexer(reg *Registry) *Multiplexer {
	return &Multiplexer{
		reg: reg,
		log: logging.WithComponent("room.multiplexer"),
	}
}

// Connect attaches a delivery sink for a joined participant, announces the
// join to current peers, and replays existing publications so the new joiner
// sees tracks published before it arrived.
func (m *Multiplexer) Connect(s *Session, participantID string, sink Sink) error {
	p, err := s.Participant(participantID)
	if err != nil {
		return err
	}
	p.attachSink(sink)
	plog := logging.WithParticipant(s.ID, participantID)
	plog.Debug().Msg("participant connected")

	for _, other := range s.Participants() {
		if other.ID == participantID {
			continue
		}
		m.notify(other, models.PeerEvent{
			Type:          models.EventParticipantJoined,
			SessionID:     s.ID,
			ParticipantID: participantID,
		})
		// Replay the peers' existing publications to the new joiner and
		// subscribe it to each.
		for _, t := range other.Tracks() {
			if t.State() != StatePublished {
				continue
			}
			if err := t.Subscribe(participantID); err != nil {
				continue
			}
			m.notify(p, models.PeerEvent{
				Type:          models.EventTrackPublished,
				SessionID:     s.ID,
				ParticipantID: other.ID,
				TrackKind:     string(t.Kind()),
			})
		}
	}
	return nil
}

// Publish creates and publishes a fresh track of the given kind for the
// participant, announces it to all other participants, and subscribes them.
// A participant holds at most one track per kind: a prior instance is
// unpublished first and never resurrected.
func (m *Multiplexer) Publish(s *Session, participantID string, kind TrackKind) (*Track, error) {
	p, err := s.Participant(participantID)
	if err != nil {
		return nil, err
	}

	if old := p.Track(kind); old != nil {
		old.Unpublish()
	}

	t := NewTrack(kind)
	if err := t.Publish(); err != nil {
		return nil, err
	}
	p.setTrack(kind, t)

	for _, other := range s.Participants() {
		if other.ID == participantID {
			continue
		}
		if err := t.Subscribe(other.ID); err != nil {
			continue
		}
		m.notify(other, models.PeerEvent{
			Type:          models.EventTrackPublished,
			SessionID:     s.ID,
			ParticipantID: participantID,
			TrackKind:     string(kind),
		})
	}

	m.log.Debug().
		Str("sessionId", s.ID).
		Str("participantId", participantID).
		Str("kind", string(kind)).
		Msg("track published")
	return t, nil
}

// Unpublish withdraws the participant's track of the given kind.
func (m *Multiplexer) Unpublish(s *Session, participantID string, kind TrackKind) error {
	p, err := s.Participant(participantID)
	if err != nil {
		return err
	}
	t := p.Track(kind)
	if t == nil {
		return ErrNotPublished
	}
	t.Unpublish()
	for _, other := range s.Participants() {
		if other.ID == participantID {
			continue
		}
		m.notify(other, models.PeerEvent{
			Type:          models.EventTrackUnpublished,
			SessionID:     s.ID,
			ParticipantID: participantID,
			TrackKind:     string(kind),
		})
	}
	return nil
}

// SendData relays a data-track payload from the owning participant to every
// other current participant. The sender's own sink never receives the
// message. Returns the number of peers the payload was delivered to.
// Delivery is best-effort: a failing peer is logged and skipped.
func (m *Multiplexer) SendData(s *Session, participantID string, payload []byte) (int, error) {
	p, err := s.Participant(participantID)
	if err != nil {
		return 0, err
	}
	t := p.Track(TrackData)
	if t == nil || t.State() != StatePublished {
		return 0, ErrNotPublished
	}

	delivered := 0
	for _, other := range s.Participants() {
		if other.ID == participantID {
			continue
		}
		sink := other.currentSink()
		if sink == nil {
			continue
		}
		if err := sink.DeliverTranscript(participantID, payload); err != nil {
			m.log.Warn().
				Err(err).
				Str("sessionId", s.ID).
				Str("peerId", other.ID).
				Msg("data delivery failed")
			continue
		}
		delivered++
	}
	return delivered, nil
}

// Disconnect removes a participant: all its tracks are unpublished, its sink
// detached, peers notified, and the membership entry dropped. The last
// disconnect ends the session.
func (m *Multiplexer) Disconnect(s *Session, participantID string) error {
	if err := m.reg.Leave(s, participantID); err != nil {
		return err
	}
	for _, other := range s.Participants() {
		m.notify(other, models.PeerEvent{
			Type:          models.EventParticipantLeft,
			SessionID:     s.ID,
			ParticipantID: participantID,
		})
	}
	plog := logging.WithParticipant(s.ID, participantID)
	plog.Info().Msg("participant disconnected")
	return nil
}

func (m *Multiplexer) notify(p *Participant, ev models.PeerEvent) {
	sink := p.currentSink()
	if sink == nil {
		return
	}
	ev.Timestamp = time.Now().UnixMilli()
	if err := sink.DeliverEvent(ev); err != nil {
		m.log.Warn().Err(err).Str("peerId", p.ID).Str("event", ev.Type).Msg("event delivery failed")
	}
}
