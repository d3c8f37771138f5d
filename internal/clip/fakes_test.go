package clip_test

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"highlighter/internal/clip"
)

type fakeProber struct {
	calls    atomic.Int32
	duration float64
	err      error
	gate     chan struct{}
}

func (p *fakeProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	p.calls.Add(1)
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if p.err != nil {
		return 0, p.err
	}
	return p.duration, nil
}

type fakeFrames struct {
	bounds    clip.Bounds
	stripPath string
	stripErr  error
	stripGate chan struct{}
	strips    *atomic.Int32
	closed    atomic.Bool
}

func (f *fakeFrames) NextFrame(ctx context.Context) (image.Image, error) {
	if f.closed.Load() {
		return nil, clip.ErrClosed
	}
	return nil, io.EOF
}

func (f *fakeFrames) FrameAt(ctx context.Context, offset float64) (image.Image, error) {
	if f.closed.Load() {
		return nil, clip.ErrClosed
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func (f *fakeFrames) ExportScrubbingStrip(ctx context.Context) error {
	if f.closed.Load() {
		return clip.ErrClosed
	}
	f.strips.Add(1)
	if f.stripGate != nil {
		select {
		case <-f.stripGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.stripErr != nil {
		return f.stripErr
	}
	return os.WriteFile(f.stripPath, []byte("strip"), 0o644)
}

func (f *fakeFrames) StripPath() string { return f.stripPath }

func (f *fakeFrames) Close() error {
	f.closed.Store(true)
	return nil
}

type fakeAudio struct {
	closed atomic.Bool
}

func (a *fakeAudio) ReadSamples(ctx context.Context, dst []float32) (int, error) {
	if a.closed.Load() {
		return 0, clip.ErrClosed
	}
	return 0, io.EOF
}

func (a *fakeAudio) Format() clip.AudioFormat { return clip.AudioFormat{SampleRate: 48000, Channels: 2} }

func (a *fakeAudio) Close() error {
	a.closed.Store(true)
	return nil
}

type fakeFactory struct {
	stripDir  string
	stripErr  error
	stripGate chan struct{}
	frameErr  error
	audioErr  error

	frameBuilds atomic.Int32
	audioBuilds atomic.Int32
	strips      atomic.Int32

	mu        sync.Mutex
	active    int
	maxActive int
	frames    []*fakeFrames
	audio     []*fakeAudio
	gate      chan struct{}
}

func newFakeFactory(stripDir string) *fakeFactory {
	return &fakeFactory{stripDir: stripDir}
}

func (f *fakeFactory) NewFrameSource(ctx context.Context, bounds clip.Bounds) (clip.FrameSource, error) {
	f.frameBuilds.Add(1)
	f.mu.Lock()
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	gate := f.gate
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()
	if gate != nil {
		<-gate
	}
	if f.frameErr != nil {
		return nil, f.frameErr
	}
	fr := &fakeFrames{
		bounds:    bounds,
		stripPath: filepath.Join(f.stripDir, filepath.Base(bounds.Path)+".png"),
		stripErr:  f.stripErr,
		stripGate: f.stripGate,
		strips:    &f.strips,
	}
	f.mu.Lock()
	f.frames = append(f.frames, fr)
	f.mu.Unlock()
	return fr, nil
}

func (f *fakeFactory) NewAudioSource(ctx context.Context, bounds clip.Bounds) (clip.AudioSource, error) {
	f.audioBuilds.Add(1)
	if f.audioErr != nil {
		return nil, f.audioErr
	}
	a := &fakeAudio{}
	f.mu.Lock()
	f.audio = append(f.audio, a)
	f.mu.Unlock()
	return a, nil
}

func (f *fakeFactory) lastFrames() *fakeFrames {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}
