package http

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"telemeet-transcription-service/internal/broadcast"
	"telemeet-transcription-service/internal/observability/metrics"
	"telemeet-transcription-service/internal/room"
	"telemeet-transcription-service/internal/service/capture"
	"telemeet-transcription-service/internal/transcript"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	// Browser clients connect from the meeting frontend origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS attaches a joined participant's delivery connection. The socket
// carries peer events and transcript messages downstream; binary frames
// upstream feed the participant's capture loop with microphone audio.
// Closing the socket leaves the session: the capture loop is cancelled, the
// in-progress segment discarded, and the participant's tracks torn down.
func (a *API) handleWS(w http.ResponseWriter, r *http.Request) {
	participantID := r.URL.Query().Get("participantId")
	if participantID == "" {
		writeError(w, http.StatusBadRequest, errInvalidInput, "participantId is required")
		return
	}
	sess, err := a.registry.SessionFor(participantID)
	if err != nil {
		writeError(w, http.StatusNotFound, errNotFound, "unknown participant")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	peer := broadcast.NewPeer(participantID, conn)

	if err := a.mux.Connect(sess, participantID, peer); err != nil {
		peer.Close()
		return
	}

	// The connecting participant publishes its three tracks up front; the
	// data track is the transcript conduit.
	for _, kind := range []room.TrackKind{room.TrackVideo, room.TrackAudio, room.TrackData} {
		if _, err := a.mux.Publish(sess, participantID, kind); err != nil {
			a.log.Warn().Err(err).Str("participantId", participantID).Str("kind", string(kind)).Msg("track publish failed")
		}
	}

	src := capture.NewStreamSource(a.app.Cfg.Capture.TempDir, participantID)
	err = a.scheduler.Start(participantID, src, func(seg transcript.Segment) {
		// Delivery outlives the request: segments may finish after the
		// socket starts closing.
		if _, err := a.channel.Publish(context.Background(), sess, participantID, seg); err != nil {
			a.log.Warn().Err(err).Str("participantId", participantID).Msg("transcript broadcast failed")
		}
	})
	if err != nil {
		a.log.Warn().Err(err).Str("participantId", participantID).Msg("capture start failed")
	}

	a.log.Info().
		Str("sessionId", sess.ID).
		Str("participantId", participantID).
		Msg("participant attached")

	// Read loop: binary frames are microphone audio for the capture source,
	// everything else is ignored. Exits on close or error.
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType == websocket.BinaryMessage {
			metrics.DefaultMetrics.AudioBytesReceived.Add(float64(len(data)))
			_, _ = src.Write(data)
		}
	}

	a.scheduler.Stop(participantID)
	if err := a.mux.Disconnect(sess, participantID); err != nil {
		a.log.Warn().Err(err).Str("participantId", participantID).Msg("disconnect failed")
	}
	peer.Close()
}
