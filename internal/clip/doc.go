// Package clip manages the lifecycle of a single imported media file.
//
// A Clip is identified by its source path. Init performs the one-time heavy
// setup (existence check, duration probe, decoder construction, scrubbing
// strip export) exactly once no matter how many goroutines ask for it, and
// replays the outcome to every caller. Reset rebuilds the disposable
// frame/audio source pair after trim or preview changes without touching the
// strip. A missing or unreadable source file is a normal state (Deleted), not
// an error.
//
// The decoders themselves live elsewhere; this package only defines the
// FrameSource, AudioSource and SourceFactory contracts they satisfy.
package clip
