// Package background - Reference-frame estimation for subtraction-based
// detection.
//
// The estimator runs once per video, before frame iteration, and averages a
// sample of frames into a single grayscale reference approximating the empty
// arena. The reference is immutable for the rest of the run; slow lighting
// drift across a long recording is not compensated.
package background

import (
	"github.com/etho-ai/go-tracking/video"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrUnavailable reports that no background model could be built: the source
// was unreadable or yielded zero sample frames. Callers treat this as
// "fallback detection disabled for this run", not as a fatal condition.
var ErrUnavailable = errors.New("background model unavailable")

// DefaultSampleCount is the target number of frames averaged into the model.
const DefaultSampleCount = 200

// Options controls sampling.
type Options struct {
	// SampleCount is the target number of frames to average. Zero or
	// negative means DefaultSampleCount.
	SampleCount int
	// WindowStart and WindowEnd restrict sampling to a sub-range of frame
	// indices, end exclusive. Both zero means the whole video. Trimming the
	// first and last quarters avoids averaging in the experimenter's hand
	// placing the animal.
	WindowStart int
	WindowEnd   int
}

// Model is the computed reference frame plus how many samples produced it.
type Model struct {
	// Reference is a CV8UC1 grayscale frame at source resolution. Read-only
	// after construction.
	Reference gocv.Mat
	// SampleCount is the number of frames actually averaged, which can be
	// lower than requested on short videos.
	SampleCount int
}

// Close releases the reference frame.
func (m *Model) Close() {
	m.Reference.Close()
}

// Estimate builds a background model by sampling every frameStep-th frame of
// the window, where frameStep = max(1, framesInWindow/sampleCount).
//
// Each sampled frame is converted to grayscale and accumulated in a CV32F
// Mat: up to sampleCount additions of 8-bit values overflow narrower
// accumulators. The accumulator is divided by the actual sample count and
// quantized back to 8-bit.
//
// Returns:
//   - *Model: The background model. The caller owns it and must Close it.
//   - error: ErrUnavailable when the source yields no frames.
func Estimate(src video.Source, opts Options) (*Model, error) {
	sampleCount := opts.SampleCount
	if sampleCount <= 0 {
		sampleCount = DefaultSampleCount
	}

	total := src.FrameCount()
	start, end := opts.WindowStart, opts.WindowEnd
	if end <= 0 || end > total {
		end = total
	}
	if start < 0 {
		start = 0
	}

	frameStep := 1
	if window := end - start; window > sampleCount {
		frameStep = window / sampleCount
	}

	frame := gocv.NewMat()
	defer frame.Close()
	gray := gocv.NewMat()
	defer gray.Close()
	sample := gocv.NewMat()
	defer sample.Close()

	acc := gocv.NewMat()
	defer acc.Close()

	collected := 0
	for idx := 0; src.Read(&frame); idx++ {
		if idx < start {
			continue
		}
		if end > 0 && idx >= end {
			break
		}
		if (idx-start)%frameStep != 0 {
			continue
		}

		toGray(frame, &gray)
		gray.ConvertTo(&sample, gocv.MatTypeCV32F)

		if collected == 0 {
			sample.CopyTo(&acc)
		} else {
			gocv.Add(acc, sample, &acc)
		}
		collected++

		if collected >= sampleCount {
			break
		}
	}

	if collected == 0 {
		return nil, ErrUnavailable
	}

	acc.DivideFloat(float32(collected))

	reference := gocv.NewMat()
	acc.ConvertTo(&reference, gocv.MatTypeCV8U)

	return &Model{Reference: reference, SampleCount: collected}, nil
}

// toGray converts a frame to single-channel intensity, copying through when
// the source already decodes grayscale.
func toGray(src gocv.Mat, dst *gocv.Mat) {
	if src.Channels() == 1 {
		src.CopyTo(dst)
		return
	}
	gocv.CvtColor(src, dst, gocv.ColorBGRToGray)
}
