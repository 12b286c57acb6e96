// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServiceConfig holds process-level settings.
type ServiceConfig struct {
	Name     string
	HTTPPort string
	Env      string
}

// MediaConfig holds credentials for the external media relay. When the
// credentials are absent, /join-room still manages local sessions but issues
// empty tokens.
type MediaConfig struct {
	TwilioAccountSID string
	TwilioAPIKeySID  string
	TwilioAPISecret  string
	TokenTTL         time.Duration
}

// STTConfig selects and bounds the speech recognition provider.
type STTConfig struct {
	Provider string // mock, openai, google
	Timeout  time.Duration
}

// OpenAIConfig holds credentials shared by the OpenAI recognizer and the
// sense-check normalizer.
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	TranscribeModel string
	ChatModel       string
}

// NormalizeConfig controls the sense-check stage.
type NormalizeConfig struct {
	Enabled        bool
	TargetLanguage string
	Timeout        time.Duration
}

// CaptureConfig controls the per-participant capture loop.
type CaptureConfig struct {
	Interval time.Duration
	TempDir  string
}

// PipelineConfig bounds the transcode stage.
type PipelineConfig struct {
	TranscodeTimeout time.Duration
}

// TranscriptConfig bounds per-participant history retention.
type TranscriptConfig struct {
	MaxHistory int
}

// KafkaConfig configures the optional event publisher.
type KafkaConfig struct {
	Enabled         bool
	Brokers         []string
	TopicTranscript string
	TopicSession    string
	Principal       string
}

// ObservabilityConfig configures logging and the metrics server.
type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

// Configuration is the root configuration for the service.
type Configuration struct {
	Service       ServiceConfig
	Media         MediaConfig
	STT           STTConfig
	OpenAI        OpenAIConfig
	Normalize     NormalizeConfig
	Capture       CaptureConfig
	Pipeline      PipelineConfig
	Transcript    TranscriptConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// Load reads configuration from the environment, applying defaults for
// anything unset. A .env file is honored when present.
func Load() *Configuration {
	_ = godotenv.Load()

	return &Configuration{
		Service: ServiceConfig{
			Name:     envOrDefault("SERVICE_NAME", "telemeet-transcription-service"),
			HTTPPort: envOrDefault("HTTP_PORT", "8080"),
			Env:      envOrDefault("ENV", ""),
		},
		Media: MediaConfig{
			TwilioAccountSID: envOrDefault("TWILIO_ACCOUNT_SID", ""),
			TwilioAPIKeySID:  envOrDefault("TWILIO_API_KEY_SID", ""),
			TwilioAPISecret:  envOrDefault("TWILIO_API_SECRET", ""),
			TokenTTL:         envDuration("MEDIA_TOKEN_TTL", time.Hour),
		},
		STT: STTConfig{
			Provider: envOrDefault("STT_PROVIDER", "mock"),
			Timeout:  envDuration("STT_TIMEOUT", 30*time.Second),
		},
		OpenAI: OpenAIConfig{
			APIKey:          envOrDefault("OPENAI_API_KEY", ""),
			BaseURL:         envOrDefault("OPENAI_BASE_URL", ""),
			TranscribeModel: envOrDefault("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
			ChatModel:       envOrDefault("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		},
		Normalize: NormalizeConfig{
			Enabled:        envBool("NORMALIZE_ENABLED", true),
			TargetLanguage: envOrDefault("NORMALIZE_TARGET_LANGUAGE", "English"),
			Timeout:        envDuration("NORMALIZE_TIMEOUT", 15*time.Second),
		},
		Capture: CaptureConfig{
			Interval: envDuration("CAPTURE_INTERVAL", 5*time.Second),
			TempDir:  envOrDefault("CAPTURE_TEMP_DIR", os.TempDir()),
		},
		Pipeline: PipelineConfig{
			TranscodeTimeout: envDuration("TRANSCODE_TIMEOUT", 20*time.Second),
		},
		Transcript: TranscriptConfig{
			MaxHistory: envInt("TRANSCRIPT_MAX_HISTORY", 512),
		},
		Kafka: KafkaConfig{
			Enabled:         envBool("KAFKA_ENABLED", false),
			Brokers:         envList("KAFKA_BROKERS", nil),
			TopicTranscript: envOrDefault("KAFKA_TOPIC_TRANSCRIPT", "meet.transcript.final"),
			TopicSession:    envOrDefault("KAFKA_TOPIC_SESSION", "meet.session.lifecycle"),
			Principal:       envOrDefault("SERVICE_PRINCIPAL", "svc-telemeet-transcription"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
