package models

// TranscriptFinal is the event envelope published for every broadcast
// transcript segment.
type TranscriptFinal struct {
	EventType     string `json:"eventType"`
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	Seq           uint64 `json:"seq"`
	Text          string `json:"text"`
	Timestamp     int64  `json:"timestamp"`
}

// SessionLifecycle is the event envelope published when a session starts
// or ends.
type SessionLifecycle struct {
	EventType   string `json:"eventType"`
	SessionID   string `json:"sessionId"`
	SessionName string `json:"sessionName"`
	Timestamp   int64  `json:"timestamp"`
}

// Event type constants for the envelopes above.
const (
	EventTranscriptFinal = "meet.transcript.final"
	EventSessionStarted  = "meet.session.started"
	EventSessionEnded    = "meet.session.ended"
)
