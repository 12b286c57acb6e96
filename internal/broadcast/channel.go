// Package broadcast implements the transcript side channel: a low-latency,
// ordered, best-effort fan-out of each participant's transcript segments to
// all other participants in the session.
package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"telemeet-transcription-service/internal/events"
	"telemeet-transcription-service/internal/models"
	"telemeet-transcription-service/internal/observability/logging"
	"telemeet-transcription-service/internal/observability/metrics"
	"telemeet-transcription-service/internal/room"
	"telemeet-transcription-service/internal/transcript"
)

// Channel relays non-empty normalized transcript segments over the owning
// participant's data track.
type Channel struct {
	mux       *room.Multiplexer
	publisher *events.Publisher
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewChannel creates a broadcast channel. publisher may be nil.
func NewChannel(mux *room.Multiplexer, publisher *events.Publisher) *Channel {
	return &Channel{
		mux:       mux,
		publisher: publisher,
		metrics:   metrics.DefaultMetrics,
		log:       logging.WithComponent("broadcast"),
	}
}

// Publish sends one data-track message carrying the segment's normalized
// text to every other participant in the session. Segments whose normalized
// text is empty are suppressed, never delivered. Returns the number of peers
// the message reached.
func (c *Channel) Publish(ctx context.Context, s *room.Session, participantID string, seg transcript.Segment) (int, error) {
	if seg.Meaningful == "" {
		return 0, nil
	}

	payload, err := json.Marshal(models.DataMessage{Transcript: seg.Meaningful})
	if err != nil {
		return 0, err
	}

	delivered, err := c.mux.SendData(s, participantID, payload)
	if err != nil {
		return 0, err
	}
	c.metrics.RecordBroadcast(delivered)

	if c.publisher != nil {
		c.publisher.PublishTranscript(ctx, participantID, models.TranscriptFinal{
			EventType:     models.EventTranscriptFinal,
			SessionID:     s.ID,
			ParticipantID: participantID,
			Seq:           seg.Seq,
			Text:          seg.Meaningful,
			Timestamp:     time.Now().UnixMilli(),
		})
	}

	c.log.Debug().
		Str("sessionId", s.ID).
		Str("participantId", participantID).
		Uint64("seq", seg.Seq).
		Int("delivered", delivered).
		Msg("transcript broadcast")
	return delivered, nil
}
