package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const waitDelay = time.Second

// Seconds formats a timestamp the way ffmpeg's -ss/-t flags expect it.
func Seconds(v float64) string {
	if v < 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Output runs ffmpeg to completion and returns stdout.
func Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binaryOrDefault(binary), args...)
	cmd.WaitDelay = waitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ffmpeg: %w", ctxErr)
		}
		return nil, fmt.Errorf("ffmpeg: %w%s", err, detail(stderr.String()))
	}
	return out, nil
}

// Stream is a running ffmpeg process whose stdout is read incrementally.
type Stream struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	out    *bufio.Reader
	stderr bytes.Buffer

	ended   bool
	once    sync.Once
	waitErr error
}

// Start launches ffmpeg with args. The process lives until ctx ends, stdout
// is drained, or Close is called.
func Start(ctx context.Context, binary string, args []string) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{cancel: cancel}
	s.cmd = exec.CommandContext(ctx, binaryOrDefault(binary), args...)
	s.cmd.WaitDelay = waitDelay
	s.cmd.Stderr = &s.stderr
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := s.cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	s.out = bufio.NewReaderSize(stdout, 1<<16)
	return s, nil
}

// ReadFull fills buf from stdout. A clean end of stream before any byte is
// read returns io.EOF after the process has been reaped; a non-zero exit is
// reported instead of io.EOF. Once the stream has ended every later call
// returns the same outcome without touching the closed pipe.
func (s *Stream) ReadFull(buf []byte) error {
	if s.ended {
		if s.waitErr != nil {
			return s.waitErr
		}
		return io.EOF
	}
	_, err := io.ReadFull(s.out, buf)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.ended = true
		if waitErr := s.wait(); waitErr != nil {
			return waitErr
		}
		return err
	default:
		return err
	}
}

// Close kills the process if it is still running and reaps it.
func (s *Stream) Close() error {
	s.cancel()
	err := s.wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Stream) wait() error {
	s.once.Do(func() {
		if err := s.cmd.Wait(); err != nil {
			s.waitErr = fmt.Errorf("ffmpeg: %w%s", err, detail(s.stderr.String()))
		}
	})
	return s.waitErr
}

func binaryOrDefault(binary string) string {
	if b := strings.TrimSpace(binary); b != "" {
		return b
	}
	return "ffmpeg"
}

func detail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	if idx := strings.LastIndexByte(stderr, '\n'); idx >= 0 {
		stderr = stderr[idx+1:]
	}
	return ": " + stderr
}
