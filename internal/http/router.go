// Package http exposes the service's external interface: room joins,
// segment uploads, transcript dumps, and the websocket attach endpoint.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"telemeet-transcription-service/internal/app"
	"telemeet-transcription-service/internal/broadcast"
	"telemeet-transcription-service/internal/media"
	"telemeet-transcription-service/internal/observability/logging"
	"telemeet-transcription-service/internal/room"
	"telemeet-transcription-service/internal/service/capture"
	"telemeet-transcription-service/internal/service/pipeline"
	"telemeet-transcription-service/internal/transcript"
)

// API bundles the handlers' dependencies.
type API struct {
	app       *app.Application
	registry  *room.Registry
	mux       *room.Multiplexer
	store     *transcript.Store
	pipe      *pipeline.Pipeline
	scheduler *capture.Scheduler
	channel   *broadcast.Channel
	issuer    *media.TokenIssuer
	rooms     *media.RoomProvisioner
	log       zerolog.Logger
}

// NewAPI wires the handler set. issuer and rooms may be nil; the service
// then runs without relay credentials.
func NewAPI(
	application *app.Application,
	registry *room.Registry,
	mux *room.Multiplexer,
	store *transcript.Store,
	pipe *pipeline.Pipeline,
	scheduler *capture.Scheduler,
	channel *broadcast.Channel,
	issuer *media.TokenIssuer,
	rooms *media.RoomProvisioner,
) *API {
	return &API{
		app:       application,
		registry:  registry,
		mux:       mux,
		store:     store,
		pipe:      pipe,
		scheduler: scheduler,
		channel:   channel,
		issuer:    issuer,
		rooms:     rooms,
		log:       logging.WithComponent("http"),
	}
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(api *API) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(api.log))

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Post("/join-room", api.handleJoinRoom)
	r.Post("/uploadAudio", api.handleUploadAudio)
	r.Get("/transcripts", api.handleTranscripts)
	r.Get("/ws", api.handleWS)

	return r
}

// requestLogger logs each request with its duration and status.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
