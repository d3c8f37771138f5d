package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"highlighter/internal/logs"
)

func TestLastReturnsTrailingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highlighter.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\nd\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	tests := []struct {
		n    int
		want []string
	}{
		{n: 2, want: []string{"c", "d"}},
		{n: 4, want: []string{"a", "b", "c", "d"}},
		{n: 10, want: []string{"a", "b", "c", "d"}},
		{n: 0, want: nil},
	}
	for _, tt := range tests {
		lines, offset, err := logs.Last(path, tt.n)
		if err != nil {
			t.Fatalf("Last(%d): %v", tt.n, err)
		}
		if offset != 8 {
			t.Fatalf("Last(%d): expected end offset 8, got %d", tt.n, offset)
		}
		if len(lines) != len(tt.want) {
			t.Fatalf("Last(%d): got %#v, want %#v", tt.n, lines, tt.want)
		}
		for i := range lines {
			if lines[i] != tt.want[i] {
				t.Fatalf("Last(%d): got %#v, want %#v", tt.n, lines, tt.want)
			}
		}
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "none.log"), 5)
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("expected empty result, got %#v %d %v", lines, offset, err)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highlighter.log")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	_, offset, err := logs.Last(path, 1)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan string, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- logs.Follow(ctx, path, offset, 20*time.Millisecond, func(line string) error {
			got <- line
			return nil
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\npart"); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = f.Close()

	select {
	case line := <-got:
		if line != "later" {
			t.Fatalf("unexpected line %q", line)
		}
	case <-ctx.Done():
		t.Fatal("follow did not emit the appended line")
	}
	select {
	case line := <-got:
		t.Fatalf("partial line emitted early: %q", line)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFollowStopsOnEmitError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highlighter.log")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	stop := errors.New("stop")
	err := logs.Follow(context.Background(), path, 0, 10*time.Millisecond, func(string) error { return stop })
	if !errors.Is(err, stop) {
		t.Fatalf("expected emit error, got %v", err)
	}
}
