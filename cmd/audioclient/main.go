package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Simulates the browser capture loop: join a room, then post the same
// audio segment every interval and print the transcript that comes back.

func main() {
	audioFile := flag.String("audio", "testdata/sample-16khz.wav", "Path to an audio segment file")
	serverURL := flag.String("server", "http://localhost:8080", "Service base URL")
	roomName := flag.String("room", "demo-room", "Room name to join")
	displayName := flag.String("name", "audioclient", "Participant display name")
	interval := flag.Duration("interval", 5*time.Second, "Upload interval")
	count := flag.Int("count", 5, "Number of segments to upload (0 = forever)")
	flag.Parse()

	client := &http.Client{Timeout: 60 * time.Second}

	participantID, roomID := joinRoom(client, *serverURL, *roomName, *displayName)
	log.Printf("Joined room %s as participant %s", roomID, participantID)

	for i := 0; *count == 0 || i < *count; i++ {
		transcript, err := uploadSegment(client, *serverURL, participantID, *audioFile)
		if err != nil {
			log.Printf("Upload failed: %v", err)
		} else if transcript == "" {
			log.Printf("Segment %d: (suppressed)", i+1)
		} else {
			log.Printf("Segment %d: %q", i+1, transcript)
		}
		time.Sleep(*interval)
	}
}

func joinRoom(client *http.Client, serverURL, roomName, displayName string) (string, string) {
	body, _ := json.Marshal(map[string]string{
		"roomName":    roomName,
		"displayName": displayName,
	})
	resp, err := client.Post(serverURL+"/join-room", "application/json", bytes.NewReader(body))
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
		RoomID        string `json:"roomId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&joined); err != nil {
		log.Fatalf("Failed to decode join response: %v", err)
	}
	return joined.ParticipantID, joined.RoomID
}

func uploadSegment(client *http.Client, serverURL, participantID, audioFile string) (string, error) {
	f, err := os.Open(audioFile)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("participantId", participantID)
	part, err := mw.CreateFormFile("audio", filepath.Base(audioFile))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	mw.Close()

	resp, err := client.Post(serverURL+"/uploadAudio", mw.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		log.Fatalf("Upload rejected: %s %s", resp.Status, msg)
	}

	var result struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Transcript, nil
}
