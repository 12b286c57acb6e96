package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"telemeet-transcription-service/internal/observability/metrics"
	"telemeet-transcription-service/internal/room"
)

// errorResponse is the JSON body for rejected requests.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

const (
	errInvalidInput    = "invalid_input"
	errSessionInactive = "session_inactive"
	errNotFound        = "not_found"
	errInternal        = "internal_fault"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, reason string) {
	writeJSON(w, status, errorResponse{Error: code, Reason: reason})
}

type joinRoomRequest struct {
	RoomName    string `json:"roomName"`
	DisplayName string `json:"displayName"`
}

type joinRoomResponse struct {
	Token         string `json:"token"`
	ParticipantID string `json:"participantId"`
	RoomID        string `json:"roomId"`
}

// handleJoinRoom issues a time-boxed media-session credential scoped to the
// room, creating the session if absent.
func (a *API) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidInput, "malformed JSON body")
		return
	}
	req.RoomName = strings.TrimSpace(req.RoomName)
	if req.RoomName == "" {
		writeError(w, http.StatusBadRequest, errInvalidInput, "roomName is required")
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = "guest"
	}

	sess := a.registry.CreateOrGet(req.RoomName, req.DisplayName)
	participant, err := a.registry.Join(sess, req.DisplayName)
	if err != nil {
		if errors.Is(err, room.ErrSessionInactive) {
			writeError(w, http.StatusConflict, errSessionInactive, "session has ended")
			return
		}
		writeError(w, http.StatusInternalServerError, errInternal, err.Error())
		return
	}

	// Relay-side provisioning and token issuance degrade when credentials
	// are absent: the local session still works, the token comes back empty.
	if a.rooms != nil {
		if err := a.rooms.EnsureRoom(req.RoomName); err != nil {
			a.log.Warn().Err(err).Str("room", req.RoomName).Msg("relay room provisioning failed")
		}
	}
	token := ""
	if a.issuer != nil {
		token, err = a.issuer.Issue(participant.ID, req.RoomName)
		if err != nil {
			a.log.Error().Err(err).Msg("token issuance failed")
			token = ""
		}
	}

	writeJSON(w, http.StatusOK, joinRoomResponse{
		Token:         token,
		ParticipantID: participant.ID,
		RoomID:        sess.ID,
	})
}

type uploadAudioResponse struct {
	Transcript string `json:"transcript"`
}

// maxUploadBytes bounds one segment upload (5s of audio is far below this).
const maxUploadBytes = 32 << 20

// handleUploadAudio accepts one captured segment as multipart form data and
// synchronously returns the normalized transcript text, empty if suppressed.
func (a *API) handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidInput, "malformed multipart body")
		return
	}

	participantID := r.FormValue("participantId")
	if participantID == "" {
		writeError(w, http.StatusBadRequest, errInvalidInput, "participantId is required")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidInput, "audio file is required")
		return
	}
	defer file.Close()

	sess, err := a.registry.SessionFor(participantID)
	if err != nil {
		writeError(w, http.StatusNotFound, errNotFound, "unknown participant")
		return
	}

	path, size, err := a.saveUpload(file, header.Filename, participantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errInternal, "failed to store segment")
		return
	}
	metrics.DefaultMetrics.RecordUpload(int(size))

	// The pipeline owns the uploaded file from here: it is deleted on every
	// exit path.
	seg, err := a.pipe.Process(r.Context(), participantID, path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errInternal, "segment processing cancelled")
		return
	}

	if _, err := a.channel.Publish(r.Context(), sess, participantID, seg); err != nil {
		a.log.Warn().Err(err).Str("participantId", participantID).Msg("transcript broadcast failed")
	}

	writeJSON(w, http.StatusOK, uploadAudioResponse{Transcript: seg.Meaningful})
}

func (a *API) saveUpload(src io.Reader, filename, participantID string) (string, int64, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".webm"
	}
	name := fmt.Sprintf("upload_%s_%d%s", participantID, time.Now().UnixNano(), ext)
	path := filepath.Join(a.app.Cfg.Capture.TempDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return "", 0, err
	}
	return path, n, nil
}

// handleTranscripts dumps the full in-memory transcript store.
func (a *API) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Snapshot())
}
