// Package models defines the wire and event payloads exchanged by the service.
package models

// DataMessage is the data-track wire format carrying one transcript segment.
// Exactly one message is sent per non-empty normalized segment; the sender is
// identified by the data track's owning participant, not by the payload.
type DataMessage struct {
	Transcript string `json:"transcript"`
}

// Peer event types pushed to connected participants.
const (
	EventParticipantJoined = "participant-joined"
	EventParticipantLeft   = "participant-left"
	EventTrackPublished    = "track-published"
	EventTrackUnpublished  = "track-unpublished"
)

// PeerEvent notifies a connected participant about session lifecycle changes:
// peers joining or leaving, and their track publications.
type PeerEvent struct {
	Type          string `json:"type"`
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	TrackKind     string `json:"trackKind,omitempty"`
	Timestamp     int64  `json:"timestamp"`
}
