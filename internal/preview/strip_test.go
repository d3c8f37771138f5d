package preview_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"highlighter/internal/preview"
	"highlighter/internal/services"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestStripPathIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := preview.StripPath(dir, "/footage/match.mp4", 0, 0)
	b := preview.StripPath(dir, "/footage/match.mp4", 0, 0)
	if a != b {
		t.Fatalf("expected identical paths, got %q and %q", a, b)
	}
	if filepath.Dir(a) != dir || !strings.HasSuffix(a, ".png") {
		t.Fatalf("unexpected strip path %q", a)
	}
	if len(filepath.Base(a)) != len("0123456789abcdef.png") {
		t.Fatalf("unexpected strip name %q", filepath.Base(a))
	}
	if preview.StripPath(dir, "/footage/other.mp4", 0, 0) == a {
		t.Fatal("different sources must not share a strip")
	}
	if preview.StripPath(dir, "/footage/match.mp4", 1.5, 0) == a {
		t.Fatal("different trims must not share a strip")
	}
}

func TestOffsets(t *testing.T) {
	got := preview.Offsets(10, 4)
	want := []float64{1.25, 3.75, 6.25, 8.75}
	if len(got) != len(want) {
		t.Fatalf("expected %d offsets, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("offset %d: got %v want %v", i, got[i], want[i])
		}
	}
	if preview.Offsets(0, 4) != nil || preview.Offsets(10, 0) != nil {
		t.Fatal("expected no offsets for empty input")
	}
}

func TestComposeLaysFramesOutHorizontally(t *testing.T) {
	frames := []image.Image{
		solid(160, 90, color.RGBA{R: 255, A: 255}),
		solid(320, 180, color.RGBA{G: 255, A: 255}),
		solid(90, 90, color.RGBA{B: 255, A: 255}),
	}
	strip, err := preview.Compose(frames, 45)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := strip.Bounds().Dy(); got != 45 {
		t.Fatalf("unexpected height %d", got)
	}
	if got := strip.Bounds().Dx(); got != 80+80+45 {
		t.Fatalf("unexpected width %d", got)
	}
	r, g, b, _ := strip.At(40, 20).RGBA()
	if r>>8 < 200 || g>>8 > 50 || b>>8 > 50 {
		t.Fatalf("expected red in first slot, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = strip.At(180, 20).RGBA()
	if b>>8 < 200 || r>>8 > 50 || g>>8 > 50 {
		t.Fatalf("expected blue in last slot, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestComposeRejectsEmptyInput(t *testing.T) {
	if _, err := preview.Compose(nil, 90); err == nil {
		t.Fatal("expected error for no frames")
	}
	if _, err := preview.Compose([]image.Image{solid(4, 4, color.Black)}, 0); err == nil {
		t.Fatal("expected error for zero height")
	}
}

func TestGenerateWritesOnce(t *testing.T) {
	path := preview.StripPath(filepath.Join(t.TempDir(), "strips"), "/footage/match.mp4", 0, 0)
	var samples atomic.Int32
	sampler := func(ctx context.Context) ([]image.Image, error) {
		samples.Add(1)
		return []image.Image{solid(32, 18, color.White), solid(32, 18, color.Black)}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := preview.Generate(context.Background(), path, 18, sampler, nil); err != nil {
				t.Errorf("Generate: %v", err)
			}
		}()
	}
	wg.Wait()

	if samples.Load() != 1 {
		t.Fatalf("expected a single sampling pass, got %d", samples.Load())
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open strip: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode strip: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 18 {
		t.Fatalf("unexpected strip size %v", img.Bounds())
	}

	written, err := preview.Generate(context.Background(), path, 18, sampler, nil)
	if err != nil || written {
		t.Fatalf("expected existing strip to be kept, written=%v err=%v", written, err)
	}
}

func TestGenerateSamplerFailure(t *testing.T) {
	path := preview.StripPath(t.TempDir(), "/footage/match.mp4", 0, 0)
	boom := errors.New("decoder died")
	_, err := preview.Generate(context.Background(), path, 18, func(context.Context) ([]image.Image, error) {
		return nil, boom
	}, nil)
	if !errors.Is(err, services.ErrStripGeneration) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped strip error, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("no strip expected after failure, stat err=%v", statErr)
	}
}

func TestGenerateAbandonedOnCancel(t *testing.T) {
	path := preview.StripPath(t.TempDir(), "/footage/match.mp4", 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	_, err := preview.Generate(ctx, path, 18, func(context.Context) ([]image.Image, error) {
		cancel()
		return []image.Image{solid(8, 8, color.White)}, nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("abandoned strip must not be written")
	}
}
