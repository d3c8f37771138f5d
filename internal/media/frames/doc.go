// Package frames implements the clip frame source on top of ffmpeg.
//
// A Reader is built for one exact clip.Bounds tuple. Sequential decode streams
// raw RGBA frames over the trimmed range; random access decodes a single PNG
// frame. The reader also produces the scrubbing strip through the preview
// package.
package frames
