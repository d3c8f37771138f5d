// Package audio implements the clip audio source on top of ffmpeg.
//
// Construction inspects the file and selects a primary stream (default
// disposition, then channel count, then lowest index). The Reader streams
// interleaved float32 PCM over the trimmed range at the configured rate and
// channel count. A file with no audio stream yields silence for the trimmed
// length.
//
// Primary entry points:
//   - Select: ranks audio streams
//   - Open: builds a Reader for one clip.Bounds tuple
package audio
