package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telemeet-transcription-service/internal/observability/logging"
	"telemeet-transcription-service/internal/transcript"
)

// ErrAlreadyCapturing is returned when a capture loop already runs for the
// participant.
var ErrAlreadyCapturing = errors.New("capture loop already running for participant")

// Processor runs one captured segment through the transcription pipeline.
type Processor interface {
	Process(ctx context.Context, participantID, audioPath string) (transcript.Segment, error)
}

type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler runs one capture loop per participant. Each completed segment is
// submitted to the pipeline asynchronously: the loop never waits for a
// pipeline result before starting the next capture, so segments may finish
// out of capture order. Stopping a participant cancels its loop, discards
// the segment being captured, and cancels its in-flight pipelines.
type Scheduler struct {
	interval  time.Duration
	processor Processor

	mu    sync.Mutex
	loops map[string]*loop
	wg    sync.WaitGroup
	log   zerolog.Logger
}

// NewScheduler creates a scheduler cutting one segment per interval.
func NewScheduler(interval time.Duration, processor Processor) *Scheduler {
	return &Scheduler{
		interval:  interval,
		processor: processor,
		loops:     make(map[string]*loop),
		log:       logging.WithComponent("capture.scheduler"),
	}
}

// Start begins the repeating capture cycle for a participant. onSegment is
// invoked for every segment the pipeline completes, including suppressed
// ones; it is not invoked for cancelled or skipped segments.
func (s *Scheduler) Start(participantID string, src Source, onSegment func(transcript.Segment)) error {
	s.mu.Lock()
	if _, ok := s.loops[participantID]; ok {
		s.mu.Unlock()
		return ErrAlreadyCapturing
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{cancel: cancel, done: make(chan struct{})}
	s.loops[participantID] = l
	s.mu.Unlock()

	s.log.Info().Str("participantId", participantID).Dur("interval", s.interval).Msg("capture loop started")

	go s.run(ctx, l, participantID, src, onSegment)
	return nil
}

func (s *Scheduler) run(ctx context.Context, l *loop, participantID string, src Source, onSegment func(transcript.Segment)) {
	defer close(l.done)
	for {
		path, err := src.Record(ctx, s.interval)
		if err != nil {
			if errors.Is(err, ErrNoAudio) {
				continue
			}
			if ctx.Err() == nil {
				s.log.Warn().Err(err).Str("participantId", participantID).Msg("capture failed, loop stopped")
			}
			return
		}

		// Hand the segment to the pipeline without waiting for it; the next
		// capture starts immediately. The loop context propagates so leaving
		// the session cancels in-flight work.
		s.wg.Add(1)
		go func(segPath string) {
			defer s.wg.Done()
			seg, err := s.processor.Process(ctx, participantID, segPath)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Warn().Err(err).Str("participantId", participantID).Msg("segment processing failed")
				}
				return
			}
			if onSegment != nil {
				onSegment(seg)
			}
		}(path)
	}
}

// Stop cancels the participant's capture loop and in-flight pipelines, and
// waits for the loop to exit. No-op for unknown participants.
func (s *Scheduler) Stop(participantID string) {
	s.mu.Lock()
	l, ok := s.loops[participantID]
	if ok {
		delete(s.loops, participantID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	l.cancel()
	<-l.done
	s.log.Info().Str("participantId", participantID).Msg("capture loop stopped")
}

// StopAll cancels every capture loop and waits for submitted work to drain
// or observe cancellation.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	loops := s.loops
	s.loops = make(map[string]*loop)
	s.mu.Unlock()

	for _, l := range loops {
		l.cancel()
	}
	for _, l := range loops {
		<-l.done
	}
	s.wg.Wait()
}
