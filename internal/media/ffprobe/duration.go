package ffprobe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"highlighter/internal/services"
)

// DefaultTimeout bounds a duration probe when the Prober has no timeout set.
const DefaultTimeout = 30 * time.Second

// Prober runs the single-value duration query against ffprobe.
type Prober struct {
	Binary  string
	Timeout time.Duration
}

// NewProber returns a Prober for the given binary and timeout.
func NewProber(binary string, timeout time.Duration) *Prober {
	return &Prober{Binary: binary, Timeout: timeout}
}

// DurationArgs returns the ffprobe arguments used to query a file's duration.
func DurationArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

// ProbeDuration returns the container duration of path in seconds. Only
// stdout is consumed. A non-zero exit, a timeout, or output that is not a
// single finite non-negative number fails with services.ErrProbeFailed.
func (p *Prober) ProbeDuration(ctx context.Context, path string) (float64, error) {
	binary := "ffprobe"
	timeout := DefaultTimeout
	if p != nil {
		if b := strings.TrimSpace(p.Binary); b != "" {
			binary = b
		}
		if p.Timeout > 0 {
			timeout = p.Timeout
		}
	}
	if strings.TrimSpace(path) == "" {
		return 0, services.Wrap(services.ErrProbeFailed, "ffprobe", "duration", "empty path", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, DurationArgs(path)...)
	cmd.WaitDelay = time.Second
	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, services.Wrap(services.ErrProbeFailed, "ffprobe", "duration",
				fmt.Sprintf("timed out after %s", timeout), fmt.Errorf("%w: %w", services.ErrTimeout, ctx.Err()))
		}
		if ctx.Err() != nil {
			return 0, services.Wrap(services.ErrProbeFailed, "ffprobe", "duration", "cancelled", ctx.Err())
		}
		return 0, services.Wrap(services.ErrProbeFailed, "ffprobe", "duration", "run"+stderrDetail(err), err)
	}
	return ParseDuration(string(output))
}

// ParseDuration parses ffprobe's single-value duration output.
func ParseDuration(output string) (float64, error) {
	value := strings.TrimSpace(output)
	if value == "" {
		return 0, services.Wrap(services.ErrProbeFailed, "ffprobe", "duration", "empty output", nil)
	}
	if strings.ContainsAny(value, "xX_pP") {
		return 0, services.Wrap(services.ErrProbeFailed, "ffprobe", "duration", fmt.Sprintf("unparseable output %q", value), nil)
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrProbeFailed, "ffprobe", "duration", fmt.Sprintf("unparseable output %q", value), err)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, services.Wrap(services.ErrProbeFailed, "ffprobe", "duration", fmt.Sprintf("invalid duration %q", value), nil)
	}
	return seconds, nil
}
