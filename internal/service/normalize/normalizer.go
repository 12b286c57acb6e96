package normalize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"telemeet-transcription-service/internal/observability/logging"
	"telemeet-transcription-service/internal/observability/metrics"
)

// ErrServiceUnavailable indicates the normalization service is unreachable
// or unconfigured. Callers degrade by passing the cleaned text through.
var ErrServiceUnavailable = errors.New("normalization service unavailable")

// Normalizer filters non-speech from cleaned text and standardizes its
// language. The contract: return only genuine spoken content translated to
// the target language; return the empty string for gibberish or silence.
type Normalizer interface {
	Normalize(ctx context.Context, text string) (string, error)
}

// Noop passes text through unchanged. Used when no language service is
// configured.
type Noop struct{}

// Normalize returns the input unchanged.
func (Noop) Normalize(_ context.Context, text string) (string, error) {
	return text, nil
}

const promptTemplate = `You are a transcript cleaner and translator.
Only return real spoken words in %s. Remove gibberish or silence.
Always convert speech in any other language to clear %s.
Return meaningful text only, or an empty response if there is none.`

// OpenAINormalizer sense-checks transcripts through a chat completion.
type OpenAINormalizer struct {
	client  *openai.Client
	model   string
	prompt  string
	timeout time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewOpenAINormalizer builds a normalizer for the given model and target
// language. baseURL overrides the API endpoint when non-empty.
func NewOpenAINormalizer(apiKey, baseURL, model, targetLanguage string, timeout time.Duration) (*OpenAINormalizer, error) {
	if apiKey == "" {
		return nil, ErrServiceUnavailable
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if targetLanguage == "" {
		targetLanguage = "English"
	}
	return &OpenAINormalizer{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		prompt:  fmt.Sprintf(promptTemplate, targetLanguage, targetLanguage),
		timeout: timeout,
		metrics: metrics.DefaultMetrics,
		log:     logging.WithComponent("normalize"),
	}, nil
}

// Normalize submits cleaned text to the language service. Inputs too short
// to carry speech yield an empty result without a round trip.
func (n *OpenAINormalizer) Normalize(ctx context.Context, text string) (string, error) {
	if len(strings.TrimSpace(text)) < 2 {
		return "", nil
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: n.prompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	n.metrics.NormalizeLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		n.log.Warn().Err(err).Msg("sense check failed")
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
