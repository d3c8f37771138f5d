package audio_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"highlighter/internal/clip"
	"highlighter/internal/config"
	"highlighter/internal/media/audio"
	"highlighter/internal/testsupport"
)

// Two stereo frames: 1.0, 0.5, 1.0, 0.5 as little-endian float32.
const pcmBody = `printf '\000\000\200\077\000\000\000\077\000\000\200\077\000\000\000\077'`

func newConfig(t *testing.T, probeJSON string) (*config.Config, string, string) {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "match.mp4")
	testsupport.WriteFile(t, source, 64)
	argsLog := filepath.Join(dir, "ffmpeg.args")

	cfg := testsupport.NewConfig(t,
		testsupport.WithStubScript("ffprobe", testsupport.FFprobeScript(probeJSON, "10.000000")),
		testsupport.WithStubScript("ffmpeg", `echo "$@" >> '`+argsLog+"'\n"+pcmBody+"\n"),
	)
	cfg.Decode.AudioSampleRate = 8000
	cfg.Decode.AudioChannels = 2
	return cfg, source, argsLog
}

func TestReaderDecodesPrimaryStream(t *testing.T) {
	cfg, source, argsLog := newConfig(t, testsupport.ProbeJSON(4, 2, 2, "10.0"))
	r, err := audio.Open(context.Background(), clip.Bounds{Path: source, Duration: 10, StartTrim: 1.5}, audio.OptionsFromConfig(cfg, nil))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if f := r.Format(); f.SampleRate != 8000 || f.Channels != 2 {
		t.Fatalf("unexpected format %+v", f)
	}
	dst := make([]float32, 8)
	n, err := r.ReadSamples(context.Background(), dst)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	want := []float32{1, 0.5, 1, 0.5}
	if n != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), n)
	}
	for i, v := range want {
		if dst[i] != v {
			t.Fatalf("sample %d: got %v want %v", i, dst[i], v)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := r.ReadSamples(context.Background(), dst); !errors.Is(err, io.EOF) {
			t.Fatalf("read %d past end: expected io.EOF, got %v", i, err)
		}
	}

	args, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	for _, fragment := range []string{"-ss 1.500 -t 8.500", "-map 0:1", "-f f32le -ac 2 -ar 8000"} {
		if !strings.Contains(string(args), fragment) {
			t.Fatalf("expected %q in ffmpeg args %q", fragment, args)
		}
	}
}

func TestReaderKeepsChannelsAligned(t *testing.T) {
	cfg, source, _ := newConfig(t, testsupport.ProbeJSON(4, 2, 2, "10.0"))
	r, err := audio.Open(context.Background(), clip.Bounds{Path: source, Duration: 10}, audio.OptionsFromConfig(cfg, nil))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	dst := make([]float32, 3)
	n, err := r.ReadSamples(context.Background(), dst)
	if err != nil || n != 2 {
		t.Fatalf("expected one whole frame, got n=%d err=%v", n, err)
	}
	n, err = r.ReadSamples(context.Background(), dst)
	if err != nil || n != 2 || dst[0] != 1 || dst[1] != 0.5 {
		t.Fatalf("expected second frame, got n=%d dst=%v err=%v", n, dst, err)
	}
}

func TestReaderWithoutAudioYieldsSilence(t *testing.T) {
	cfg, source, argsLog := newConfig(t, testsupport.ProbeJSON(4, 2, 0, "10.0"))
	r, err := audio.Open(context.Background(), clip.Bounds{Path: source, Duration: 1, EndTrim: 0.5}, audio.OptionsFromConfig(cfg, nil))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if !r.Selection().Silent() {
		t.Fatal("expected silent selection")
	}

	total := 0
	dst := make([]float32, 1000)
	for {
		n, err := r.ReadSamples(context.Background(), dst)
		total += n
		for _, v := range dst[:n] {
			if v != 0 {
				t.Fatalf("expected silence, got %v", v)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples: %v", err)
		}
	}
	if total != 4000*2 {
		t.Fatalf("expected %d silent samples, got %d", 4000*2, total)
	}
	if _, err := os.Stat(argsLog); !os.IsNotExist(err) {
		t.Fatal("silent reader must not start ffmpeg")
	}
}

func TestClosedReaderReturnsErrClosed(t *testing.T) {
	cfg, source, _ := newConfig(t, testsupport.ProbeJSON(4, 2, 2, "10.0"))
	r, err := audio.Open(context.Background(), clip.Bounds{Path: source, Duration: 10}, audio.OptionsFromConfig(cfg, nil))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := r.ReadSamples(context.Background(), make([]float32, 4)); !errors.Is(err, clip.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestOpenRejectsInvalidFormat(t *testing.T) {
	_, err := audio.Open(context.Background(), clip.Bounds{Path: "/nope", Duration: 1}, audio.Options{SampleRate: 0, Channels: 2})
	if err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}
