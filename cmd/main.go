package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"telemeet-transcription-service/internal/app"
	"telemeet-transcription-service/internal/broadcast"
	"telemeet-transcription-service/internal/config"
	"telemeet-transcription-service/internal/events"
	httpapi "telemeet-transcription-service/internal/http"
	"telemeet-transcription-service/internal/media"
	"telemeet-transcription-service/internal/observability"
	"telemeet-transcription-service/internal/room"
	"telemeet-transcription-service/internal/service/capture"
	"telemeet-transcription-service/internal/service/normalize"
	"telemeet-transcription-service/internal/service/pipeline"
	"telemeet-transcription-service/internal/service/stt"
	sttgoogle "telemeet-transcription-service/internal/service/stt/google"
	sttmock "telemeet-transcription-service/internal/service/stt/mock"
	sttopenai "telemeet-transcription-service/internal/service/stt/openai"
	"telemeet-transcription-service/internal/service/transcode"
	"telemeet-transcription-service/internal/transcript"
)

func main() {
	cfg := config.Load()
	application := app.New(cfg)
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("application start failed")
	}

	// Metrics and health on a separate listener from the API.
	obs := observability.NewServer(cfg.Observability.MetricsAddr)
	obs.Start()

	// Kafka publisher doubles as the session lifecycle sink; disabled it
	// runs in log-only mode.
	publisher := events.New(&events.Config{
		Enabled:         cfg.Kafka.Enabled,
		Brokers:         cfg.Kafka.Brokers,
		TopicTranscript: cfg.Kafka.TopicTranscript,
		TopicSession:    cfg.Kafka.TopicSession,
		Principal:       cfg.Kafka.Principal,
	})
	defer publisher.Close()

	registry := room.NewRegistry(publisher)
	mux := room.NewMultiplexer(registry)
	store := transcript.NewStore(cfg.Transcript.MaxHistory)

	recognizer := buildRecognizer(cfg)
	normalizer := buildNormalizer(cfg)

	pipe := pipeline.New(transcode.New(), recognizer, normalizer, store, pipeline.Config{
		TempDir:          cfg.Capture.TempDir,
		STTTimeout:       cfg.STT.Timeout,
		NormalizeTimeout: cfg.Normalize.Timeout,
		TranscodeTimeout: cfg.Pipeline.TranscodeTimeout,
	})
	scheduler := capture.NewScheduler(cfg.Capture.Interval, pipe)
	channel := broadcast.NewChannel(mux, publisher)

	issuer := media.NewTokenIssuer(cfg.Media.TwilioAccountSID, cfg.Media.TwilioAPIKeySID, cfg.Media.TwilioAPISecret, cfg.Media.TokenTTL)
	rooms := media.NewRoomProvisioner(cfg.Media.TwilioAccountSID, cfg.Media.TwilioAPIKeySID, cfg.Media.TwilioAPISecret)
	if issuer == nil {
		log.Warn().Msg("media relay credentials not configured, issuing empty tokens")
	}

	api := httpapi.NewAPI(application, registry, mux, store, pipe, scheduler, channel, issuer, rooms)
	server := &http.Server{
		Addr:        ":" + cfg.Service.HTTPPort,
		Handler:     httpapi.NewRouter(api),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Service.HTTPPort).Msg("Telemeet transcription service started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	scheduler.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := obs.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("observability shutdown failed")
	}
	application.Shutdown()
}

// buildRecognizer selects the speech provider. Anything that fails to
// construct falls back to the mock so the service always starts.
func buildRecognizer(cfg *config.Configuration) stt.Recognizer {
	switch cfg.STT.Provider {
	case "openai":
		rec, err := sttopenai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.TranscribeModel)
		if err != nil {
			log.Warn().Err(err).Msg("openai recognizer unavailable, using mock")
			return sttmock.New()
		}
		return rec
	case "google":
		rec, err := sttgoogle.New(context.Background(), os.Getenv("GOOGLE_STT_LANGUAGE"))
		if err != nil {
			log.Warn().Err(err).Msg("google recognizer unavailable, using mock")
			return sttmock.New()
		}
		return rec
	default:
		return sttmock.New()
	}
}

// buildNormalizer returns nil when the sense-check stage is disabled or
// unconfigured; the pipeline then passes cleaned text through.
func buildNormalizer(cfg *config.Configuration) normalize.Normalizer {
	if !cfg.Normalize.Enabled {
		return nil
	}
	norm, err := normalize.NewOpenAINormalizer(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.BaseURL,
		cfg.OpenAI.ChatModel,
		cfg.Normalize.TargetLanguage,
		cfg.Normalize.Timeout,
	)
	if err != nil {
		log.Warn().Err(err).Msg("normalizer unavailable, passing cleaned text through")
		return nil
	}
	return norm
}
