// Package pipeline orchestrates the per-segment transcription flow:
// transcode, recognize, clean, sense-check, record. It owns the temporary
// file lifecycle for every segment it processes.
package pipeline

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"

	"telemeet-transcription-service/internal/observability/logging"
	"telemeet-transcription-service/internal/observability/metrics"
	"telemeet-transcription-service/internal/service/normalize"
	"telemeet-transcription-service/internal/service/stt"
	"telemeet-transcription-service/internal/service/transcode"
	"telemeet-transcription-service/internal/transcript"
)

// minMeaningfulLen is the cleaned-text length below which the sense-check
// stage is skipped and the segment yields an empty transcript.
const minMeaningfulLen = 3

// Transcoder converts a segment to the canonical recognition format.
type Transcoder interface {
	ToMono16k(ctx context.Context, inputPath, tmpDir string) (string, error)
}

// Config bounds the pipeline's external calls.
type Config struct {
	TempDir          string
	STTTimeout       time.Duration
	NormalizeTimeout time.Duration
	TranscodeTimeout time.Duration
}

// Pipeline processes one audio segment at a time per call; calls are
// independent and safe to run concurrently.
type Pipeline struct {
	transcoder Transcoder
	recognizer stt.Recognizer
	normalizer normalize.Normalizer
	store      *transcript.Store
	cfg        Config
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// New assembles a pipeline. normalizer may be nil, in which case cleaned
// text passes through unmodified.
func New(tc Transcoder, rec stt.Recognizer, norm normalize.Normalizer, store *transcript.Store, cfg Config) *Pipeline {
	return &Pipeline{
		transcoder: tc,
		recognizer: rec,
		normalizer: norm,
		store:      store,
		cfg:        cfg,
		metrics:    metrics.DefaultMetrics,
		log:        logging.WithComponent("pipeline"),
	}
}

// Process runs one captured segment through the full pipeline and returns
// the stored segment. The returned segment's Meaningful field is the
// broadcastable text; it is empty when the segment was suppressed or the
// recognition stage aborted. The uploaded file and any transcoded file are
// deleted on every exit path. A non-nil error is returned only for
// cancellation; service failures are recovered per stage.
func (p *Pipeline) Process(ctx context.Context, participantID, audioPath string) (transcript.Segment, error) {
	start := time.Now()

	wavPath := ""
	defer func() {
		os.Remove(audioPath)
		if wavPath != "" && wavPath != audioPath {
			os.Remove(wavPath)
		}
		p.metrics.RecordSegment(time.Since(start).Seconds())
	}()

	plog := p.log.With().Str("participantId", participantID).Logger()

	// 1. Transcode. Failure never blocks the segment: continue with the
	// original file.
	tctx, tcancel := context.WithTimeout(ctx, p.cfg.TranscodeTimeout)
	converted, err := p.transcoder.ToMono16k(tctx, audioPath, p.cfg.TempDir)
	tcancel()
	if err != nil {
		if !errors.Is(err, transcode.ErrUnavailable) {
			plog.Warn().Err(err).Msg("transcode failed, passing original segment through")
		}
		p.metrics.TranscodeFallbacks.Inc()
		wavPath = audioPath
	} else {
		wavPath = converted
	}

	if err := ctx.Err(); err != nil {
		return transcript.Segment{}, err
	}

	// 2. Recognize. A service error aborts this segment only: empty result,
	// cleanup still runs, no retry.
	rctx, rcancel := context.WithTimeout(ctx, p.cfg.STTTimeout)
	sttStart := time.Now()
	raw, err := p.recognizer.Transcribe(rctx, wavPath)
	rcancel()
	p.metrics.RecordSTT(p.recognizer.Provider(), err, time.Since(sttStart).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return transcript.Segment{}, ctx.Err()
		}
		plog.Warn().Err(err).Msg("recognition failed, segment aborted")
		p.metrics.RecordSegmentFailed("recognize")
		return transcript.Segment{}, nil
	}

	// 3. Clean.
	clean := normalize.Clean(raw)

	// 4. Sense-check, only for text long enough to carry speech. An
	// unreachable service degrades to the cleaned text.
	meaningful := ""
	if len(clean) >= minMeaningfulLen {
		meaningful = clean
		if p.normalizer != nil {
			nctx, ncancel := context.WithTimeout(ctx, p.cfg.NormalizeTimeout)
			normalized, err := p.normalizer.Normalize(nctx, clean)
			ncancel()
			if err != nil {
				if ctx.Err() != nil {
					return transcript.Segment{}, ctx.Err()
				}
				plog.Warn().Err(err).Msg("sense check unavailable, using cleaned text")
				p.metrics.RecordSegmentFailed("normalize")
			} else {
				meaningful = normalized
			}
		}
	}

	// 5. Record.
	seg := p.store.Append(participantID, raw, clean, meaningful)
	if meaningful == "" {
		p.metrics.SegmentsSuppressed.Inc()
	}

	seglog := logging.WithSegment(participantID, seg.Seq)
	seglog.Debug().
		Str("raw", raw).
		Str("meaningful", meaningful).
		Msg("segment recorded")
	return seg, nil
}
