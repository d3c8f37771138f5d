package ffmpeg_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"highlighter/internal/media/ffmpeg"
	"highlighter/internal/testsupport"
)

func TestStreamEndIsSticky(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		firstErr  error
		fullReads int
	}{
		{"exact end", "head -c 8 /dev/zero\n", io.EOF, 2},
		{"short tail", "head -c 6 /dev/zero\n", io.ErrUnexpectedEOF, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bin := testsupport.WriteStub(t, t.TempDir(), "ffmpeg", tc.body)
			s, err := ffmpeg.Start(context.Background(), bin, nil)
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			defer s.Close()

			buf := make([]byte, 4)
			for i := 0; i < tc.fullReads; i++ {
				if err := s.ReadFull(buf); err != nil {
					t.Fatalf("read %d: %v", i, err)
				}
			}
			if err := s.ReadFull(buf); !errors.Is(err, tc.firstErr) {
				t.Fatalf("expected %v at end, got %v", tc.firstErr, err)
			}
			for i := 0; i < 2; i++ {
				if err := s.ReadFull(buf); !errors.Is(err, io.EOF) {
					t.Fatalf("read %d past end: expected io.EOF, got %v", i, err)
				}
			}
		})
	}
}

func TestStreamReportsExitFailureRepeatedly(t *testing.T) {
	bin := testsupport.WriteStub(t, t.TempDir(), "ffmpeg", "echo 'Invalid data found' >&2\nexit 1\n")
	s, err := ffmpeg.Start(context.Background(), bin, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	buf := make([]byte, 4)
	for i := 0; i < 2; i++ {
		err := s.ReadFull(buf)
		if err == nil || errors.Is(err, io.EOF) {
			t.Fatalf("read %d: expected exit failure, got %v", i, err)
		}
		if !strings.Contains(err.Error(), "Invalid data found") {
			t.Fatalf("read %d: expected stderr detail, got %v", i, err)
		}
	}
}

func TestSecondsClampsNegative(t *testing.T) {
	if got := ffmpeg.Seconds(-1); got != "0.000" {
		t.Fatalf("Seconds(-1) = %q", got)
	}
	if got := ffmpeg.Seconds(2.5); got != "2.500" {
		t.Fatalf("Seconds(2.5) = %q", got)
	}
}
