package config

import (
	"os"
	"testing"
	"time"
)

var configEnvVars = []string{
	"SERVICE_NAME", "HTTP_PORT", "ENV",
	"TWILIO_ACCOUNT_SID", "TWILIO_API_KEY_SID", "TWILIO_API_SECRET", "MEDIA_TOKEN_TTL",
	"STT_PROVIDER", "STT_TIMEOUT",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_TRANSCRIBE_MODEL", "OPENAI_CHAT_MODEL",
	"NORMALIZE_ENABLED", "NORMALIZE_TARGET_LANGUAGE", "NORMALIZE_TIMEOUT",
	"CAPTURE_INTERVAL", "CAPTURE_TEMP_DIR",
	"TRANSCODE_TIMEOUT", "TRANSCRIPT_MAX_HISTORY",
	"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_TRANSCRIPT", "KAFKA_TOPIC_SESSION", "SERVICE_PRINCIPAL",
	"LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, v := range configEnvVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg := Load()

	if cfg.Service.Name != "telemeet-transcription-service" {
		t.Errorf("expected default service name, got %s", cfg.Service.Name)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}

	if cfg.STT.Provider != "mock" {
		t.Errorf("expected default STT provider 'mock', got %s", cfg.STT.Provider)
	}
	if cfg.STT.Timeout != 30*time.Second {
		t.Errorf("expected default STT timeout 30s, got %v", cfg.STT.Timeout)
	}

	if cfg.OpenAI.TranscribeModel != "whisper-1" {
		t.Errorf("expected default transcribe model 'whisper-1', got %s", cfg.OpenAI.TranscribeModel)
	}
	if cfg.OpenAI.ChatModel != "gpt-4o-mini" {
		t.Errorf("expected default chat model 'gpt-4o-mini', got %s", cfg.OpenAI.ChatModel)
	}

	if !cfg.Normalize.Enabled {
		t.Error("expected normalization enabled by default")
	}
	if cfg.Normalize.TargetLanguage != "English" {
		t.Errorf("expected default target language 'English', got %s", cfg.Normalize.TargetLanguage)
	}

	if cfg.Capture.Interval != 5*time.Second {
		t.Errorf("expected default capture interval 5s, got %v", cfg.Capture.Interval)
	}
	if cfg.Transcript.MaxHistory != 512 {
		t.Errorf("expected default transcript history 512, got %d", cfg.Transcript.MaxHistory)
	}

	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.Principal != "svc-telemeet-transcription" {
		t.Errorf("expected default principal 'svc-telemeet-transcription', got %s", cfg.Kafka.Principal)
	}

	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.MetricsAddr != ":9090" {
		t.Errorf("expected default metrics addr ':9090', got %s", cfg.Observability.MetricsAddr)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearConfigEnv(t)

	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("STT_PROVIDER", "google")
	os.Setenv("STT_TIMEOUT", "10s")
	os.Setenv("NORMALIZE_ENABLED", "false")
	os.Setenv("CAPTURE_INTERVAL", "2s")
	os.Setenv("TRANSCRIPT_MAX_HISTORY", "16")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	os.Setenv("LOG_LEVEL", "debug")
	defer clearConfigEnv(t)

	cfg := Load()

	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.STT.Provider != "google" {
		t.Errorf("expected STT provider 'google', got %s", cfg.STT.Provider)
	}
	if cfg.STT.Timeout != 10*time.Second {
		t.Errorf("expected STT timeout 10s, got %v", cfg.STT.Timeout)
	}
	if cfg.Normalize.Enabled {
		t.Error("expected normalization disabled")
	}
	if cfg.Capture.Interval != 2*time.Second {
		t.Errorf("expected capture interval 2s, got %v", cfg.Capture.Interval)
	}
	if cfg.Transcript.MaxHistory != 16 {
		t.Errorf("expected transcript history 16, got %d", cfg.Transcript.MaxHistory)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker1:9092" {
		t.Errorf("expected two brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearConfigEnv(t)

	os.Setenv("STT_TIMEOUT", "not-a-duration")
	os.Setenv("TRANSCRIPT_MAX_HISTORY", "not-a-number")
	os.Setenv("KAFKA_ENABLED", "not-a-bool")
	defer clearConfigEnv(t)

	cfg := Load()

	if cfg.STT.Timeout != 30*time.Second {
		t.Errorf("expected fallback STT timeout 30s, got %v", cfg.STT.Timeout)
	}
	if cfg.Transcript.MaxHistory != 512 {
		t.Errorf("expected fallback transcript history 512, got %d", cfg.Transcript.MaxHistory)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected fallback Kafka disabled")
	}
}
