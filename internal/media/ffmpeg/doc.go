// Package ffmpeg runs the ffmpeg decoder as a child process and exposes its
// stdout as a stream. Only stdout carries data; stderr is kept for error
// detail. Every process is bound to a context and is killed when that
// context ends or the stream is closed.
package ffmpeg
