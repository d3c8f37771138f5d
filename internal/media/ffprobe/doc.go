// Package ffprobe wraps the ffprobe media inspection tool.
//
// Key types:
//   - Prober: bounded, stdout-only duration probe used by the clip core
//   - Result: parsed JSON inspection output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//
// Primary entry points:
//   - Prober.ProbeDuration: runs the single-value duration query
//   - Inspect: executes a full JSON inspection and returns parsed Result
package ffprobe
