// Package transcode converts captured audio segments to the canonical
// mono/16kHz WAV format expected by the recognizers.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"telemeet-transcription-service/internal/observability/logging"
)

// ErrUnavailable indicates ffmpeg is not installed. Callers pass the
// original segment through instead of failing.
var ErrUnavailable = errors.New("transcode: ffmpeg not available")

// Transcoder shells out to ffmpeg.
type Transcoder struct {
	binary string
	log    zerolog.Logger
}

// New probes for ffmpeg once. The returned transcoder is usable either way;
// conversion reports ErrUnavailable when the binary is missing.
func New() *Transcoder {
	t := &Transcoder{log: logging.WithComponent("transcode")}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		t.binary = path
	} else {
		t.log.Warn().Msg("ffmpeg not found on PATH, segments will pass through untranscoded")
	}
	return t
}

// Available reports whether ffmpeg was found.
func (t *Transcoder) Available() bool {
	return t.binary != ""
}

// ToMono16k converts the input file to a mono 16kHz WAV in tmpDir and
// returns the output path.
//
// ffmpeg -y -i input -ac 1 -ar 16000 -f wav output
func (t *Transcoder) ToMono16k(ctx context.Context, inputPath, tmpDir string) (string, error) {
	if t.binary == "" {
		return "", ErrUnavailable
	}
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	out := filepath.Join(tmpDir, base+"_16k.wav")

	cmd := exec.CommandContext(ctx, t.binary,
		"-y", "-i", inputPath,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	if err := cmd.Run(); err != nil {
		// Remove a partial output so cleanup never leaves it behind.
		os.Remove(out)
		return "", fmt.Errorf("ffmpeg: %w", err)
	}
	return out, nil
}
