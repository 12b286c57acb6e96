// Package logging provides structured logging with zerolog.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// WithSession returns a logger with session context.
func WithSession(sessionID, sessionName string) zerolog.Logger {
	return log.With().
		Str("sessionId", sessionID).
		Str("sessionName", sessionName).
		Logger()
}

// WithParticipant returns a logger with participant context.
func WithParticipant(sessionID, participantID string) zerolog.Logger {
	return log.With().
		Str("sessionId", sessionID).
		Str("participantId", participantID).
		Logger()
}

// WithSegment returns a logger with segment context.
func WithSegment(participantID string, seq uint64) zerolog.Logger {
	return log.With().
		Str("participantId", participantID).
		Uint64("seq", seq).
		Logger()
}

// WithComponent returns a logger with a component tag.
func WithComponent(component string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Logger()
}
