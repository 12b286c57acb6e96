package broadcast

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"telemeet-transcription-service/internal/models"
	"telemeet-transcription-service/internal/transcript"
)

// Peer adapts a websocket connection into a room.Sink. Writes are
// serialized; the peer keeps the short rolling caption window that a client
// renders.
type Peer struct {
	id     string
	conn   *websocket.Conn
	mu     sync.Mutex
	window *transcript.Window
	closed bool
}

// NewPeer wraps an upgraded websocket connection for a participant.
func NewPeer(participantID string, conn *websocket.Conn) *Peer {
	return &Peer{
		id:     participantID,
		conn:   conn,
		window: transcript.NewWindow(transcript.DefaultWindowSize),
	}
}

// ID returns the owning participant id.
func (p *Peer) ID() string {
	return p.id
}

// DeliverTranscript implements room.Sink. The payload is forwarded verbatim
// as one text frame so the wire format stays exactly the data-track message.
func (p *Peer) DeliverTranscript(fromParticipantID string, payload []byte) error {
	var msg models.DataMessage
	if err := json.Unmarshal(payload, &msg); err == nil && msg.Transcript != "" {
		p.window.Push(transcript.Caption{ParticipantID: fromParticipantID, Text: msg.Transcript})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return websocket.ErrCloseSent
	}
	return p.conn.WriteMessage(websocket.TextMessage, payload)
}

// DeliverEvent implements room.Sink.
func (p *Peer) DeliverEvent(ev models.PeerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return websocket.ErrCloseSent
	}
	return p.conn.WriteJSON(ev)
}

// Captions returns the currently visible rolling caption window.
func (p *Peer) Captions() []transcript.Caption {
	return p.window.Entries()
}

// Close marks the peer closed and closes the underlying connection.
func (p *Peer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.conn.Close()
}
