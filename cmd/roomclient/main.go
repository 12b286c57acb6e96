package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"telemeet-transcription-service/internal/models"
	"telemeet-transcription-service/internal/transcript"
)

// Audio is streamed at roughly real time for mono/16kHz 16-bit PCM.
const chunkSize = 3200
const chunkIntervalMs = 100

// Simulates a meeting participant: join a room, attach the websocket, feed
// microphone audio upstream, and render the rolling caption window from the
// transcript messages arriving downstream.

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Service base URL")
	roomName := flag.String("room", "demo-room", "Room name to join")
	displayName := flag.String("name", "roomclient", "Participant display name")
	audioFile := flag.String("audio", "", "Optional audio file to stream as microphone input")
	duration := flag.Duration("duration", 30*time.Second, "How long to stay in the room")
	flag.Parse()

	participantID := joinRoom(*serverURL, *roomName, *displayName)
	log.Printf("Joined room %q as participant %s", *roomName, participantID)

	wsURL, err := url.Parse(*serverURL)
	if err != nil {
		log.Fatalf("Bad server URL: %v", err)
	}
	wsURL.Scheme = strings.Replace(wsURL.Scheme, "http", "ws", 1)
	wsURL.Path = "/ws"
	wsURL.RawQuery = "participantId=" + url.QueryEscape(participantID)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		log.Fatalf("Failed to attach websocket: %v", err)
	}
	defer conn.Close()

	if *audioFile != "" {
		go streamAudio(conn, *audioFile)
	}

	window := transcript.NewWindow(transcript.DefaultWindowSize)
	deadline := time.Now().Add(*duration)
	_ = conn.SetReadDeadline(deadline)

	for time.Now().Before(deadline) {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg models.DataMessage
		if err := json.Unmarshal(data, &msg); err == nil && msg.Transcript != "" {
			window.Push(transcript.Caption{Text: msg.Transcript})
			render(window)
			continue
		}

		var ev models.PeerEvent
		if err := json.Unmarshal(data, &ev); err == nil && ev.Type != "" {
			log.Printf("Peer event: %s participant=%s", ev.Type, ev.ParticipantID)
		}
	}

	log.Println("Leaving room")
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func joinRoom(serverURL, roomName, displayName string) string {
	body, _ := json.Marshal(map[string]string{
		"roomName":    roomName,
		"displayName": displayName,
	})
	resp, err := http.Post(serverURL+"/join-room", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("Failed to join room: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		log.Fatalf("Join rejected: %s %s", resp.Status, msg)
	}

	var joined struct {
		ParticipantID string `json:"participantId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&joined); err != nil {
		log.Fatalf("Failed to decode join response: %v", err)
	}
	return joined.ParticipantID
}

func streamAudio(conn *websocket.Conn, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	chunk := make([]byte, chunkSize)
	for {
		n, err := f.Read(chunk)
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Printf("Audio read failed: %v", err)
			return
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, chunk[:n]); err != nil {
			return
		}
		time.Sleep(chunkIntervalMs * time.Millisecond)
	}
}

func render(w *transcript.Window) {
	lines := w.Entries()
	out := make([]string, 0, len(lines))
	for _, c := range lines {
		out = append(out, c.Text)
	}
	log.Printf("Captions: %s", strings.Join(out, " | "))
}
