// Package video - Frame-addressable video sources.
//
// The tracking and background packages consume frames through the Source
// interface so tests can substitute synthetic frame sequences for real
// captures.
package video

import "gocv.io/x/gocv"

// Source yields decoded frames in order. Implementations own the decode
// state; callers own the Mats they pass to Read.
type Source interface {
	// Read decodes the next frame into dst. It returns false when the source
	// is exhausted or unreadable; dst is unspecified in that case.
	Read(dst *gocv.Mat) bool
	// FrameCount is the total number of frames the source reports, 0 when
	// unknown.
	FrameCount() int
	// FPS is the source frame rate, 0 when unknown.
	FPS() float64
	// Size returns the frame width and height in pixels.
	Size() (width, height int)
	// Reset rewinds the source to the first frame.
	Reset() error
	// Close releases decode resources.
	Close() error
}
