package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single ffprobe invocation
const DefaultTimeout = 30 * time.Second

// FFmpeg wraps the ffprobe binary used to inspect uploaded audio
type FFmpeg struct {
	ffprobePath string
	timeout     time.Duration
}

// New creates a new FFmpeg instance
func New(ffprobePath string, timeout time.Duration) *FFmpeg {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FFmpeg{
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// ValidateBinaries checks that ffprobe is available
func (f *FFmpeg) ValidateBinaries() error {
	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}
	return nil
}

func (f *FFmpeg) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, f.timeout)
}
