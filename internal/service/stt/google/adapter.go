// Package google provides a Google Cloud Speech-to-Text adapter.
package google

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"telemeet-transcription-service/internal/service/stt"
)

// Alternative language codes offered for automatic source detection
// alongside the primary.
var defaultAlternatives = []string{"hi-IN", "ta-IN", "te-IN", "kn-IN"}

// Adapter implements stt.Recognizer using synchronous recognition against
// mono/16kHz LINEAR16 segments.
type Adapter struct {
	client       *speech.Client
	languageCode string
	alternatives []string
}

// New creates a new Google STT adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, languageCode string) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stt.ErrServiceUnavailable, err)
	}
	if languageCode == "" {
		languageCode = "en-US"
	}
	return &Adapter{
		client:       c,
		languageCode: languageCode,
		alternatives: defaultAlternatives,
	}, nil
}

// Provider returns the adapter name.
func (a *Adapter) Provider() string {
	return "google"
}

// Transcribe runs synchronous recognition over the whole segment and joins
// the result alternatives.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read segment: %w", err)
	}

	resp, err := a.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            16000,
			LanguageCode:               a.languageCode,
			AlternativeLanguageCodes:   a.alternatives,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		if st, ok := status.FromError(err); ok && (st.Code() == codes.Unavailable || st.Code() == codes.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", stt.ErrServiceUnavailable, err)
		}
		return "", fmt.Errorf("recognize: %w", err)
	}

	var parts []string
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		parts = append(parts, r.Alternatives[0].Transcript)
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	return a.client.Close()
}
