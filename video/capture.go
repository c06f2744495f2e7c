package video

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FileSource reads frames from a video file through gocv.VideoCapture.
type FileSource struct {
	path    string
	capture *gocv.VideoCapture
}

// OpenFile opens a video file for sequential decoding. Failure to open is the
// one hard error in the pipeline's input path: without a readable source no
// run can start.
func OpenFile(path string) (*FileSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening video %s", path)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Errorf("video %s could not be opened", path)
	}
	return &FileSource{path: path, capture: capture}, nil
}

// Read implements Source.
func (s *FileSource) Read(dst *gocv.Mat) bool {
	return s.capture.Read(dst)
}

// FrameCount implements Source.
func (s *FileSource) FrameCount() int {
	return int(s.capture.Get(gocv.VideoCaptureFrameCount))
}

// FPS implements Source.
func (s *FileSource) FPS() float64 {
	return s.capture.Get(gocv.VideoCaptureFPS)
}

// Size implements Source.
func (s *FileSource) Size() (int, int) {
	return int(s.capture.Get(gocv.VideoCaptureFrameWidth)),
		int(s.capture.Get(gocv.VideoCaptureFrameHeight))
}

// Reset implements Source by seeking back to frame zero.
func (s *FileSource) Reset() error {
	s.capture.Set(gocv.VideoCapturePosFrames, 0)
	if s.capture.Get(gocv.VideoCapturePosFrames) != 0 {
		// Some containers cannot seek; reopen instead.
		s.capture.Close()
		capture, err := gocv.VideoCaptureFile(s.path)
		if err != nil {
			return errors.Wrapf(err, "reopening video %s", s.path)
		}
		s.capture = capture
	}
	return nil
}

// Close implements Source.
func (s *FileSource) Close() error {
	return s.capture.Close()
}
