// Package detect - The two detection tiers: the learned primary detector
// behind a substitutable contract, and the background-subtraction fallback.
//
// A Detector returns zero or more Detections per frame. Each Detection
// carries a confidence and exactly one payload shape, fixed per model by its
// OutputKind: a probability mask, a bounding box, or a keypoint set. The
// Adapter normalizes whichever payload arrives into a single position
// estimate.
package detect

import (
	"context"

	"github.com/etho-ai/go-tracking/images"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// OutputKind is the closed set of payload shapes a model can emit. It is a
// property of the model artifact, resolved once at load, never per frame.
type OutputKind string

const (
	// KindSegmentation models emit per-detection probability masks.
	KindSegmentation OutputKind = "segmentation"
	// KindPose models emit named keypoints with per-keypoint confidence.
	KindPose OutputKind = "pose"
	// KindBoundingBox models emit plain axis-aligned boxes.
	KindBoundingBox OutputKind = "detection"
)

// Keypoint is one named 2-D landmark with its own confidence.
type Keypoint struct {
	Name       string  `json:"name"`
	X          float32 `json:"x"`
	Y          float32 `json:"y"`
	Confidence float32 `json:"conf"`
}

// Mask is a per-detection probability mask at the model's own resolution,
// row-major, values in [0,1].
type Mask struct {
	Width  int
	Height int
	Probs  []float32
}

// Detection is one hypothesis from the primary detector for a frame. Box is
// always populated; Mask and Keypoints are populated according to the
// model's OutputKind.
type Detection struct {
	Confidence float32
	Box        images.Rect
	Mask       *Mask
	Keypoints  []Keypoint
}

// Detector is the single abstraction boundary to the learned model. A frame
// in, zero or more detections out. Implementations must be substitutable by
// tests with a fake.
type Detector interface {
	// Detect runs the model on one frame. An empty slice is a normal
	// no-detection outcome; errors are per-frame failures the caller
	// recovers from.
	Detect(ctx context.Context, frame gocv.Mat) ([]Detection, error)
	// Kind reports the model's payload shape.
	Kind() OutputKind
	Close() error
}

// Config holds the detector settings the caller provides per run.
type Config struct {
	// ModelPath is the ONNX model artifact.
	ModelPath string `json:"model_path"`
	// Kind is the model's declared output type.
	Kind OutputKind `json:"kind"`
	// ConfidenceThreshold in [0,1] discards weak detections.
	ConfidenceThreshold float32 `json:"confidence_threshold"`
	// IoUThreshold in [0,1] drives non-maximum suppression.
	IoUThreshold float32 `json:"iou_threshold"`
	// InferenceSize is the square input resolution fed to the model.
	InferenceSize int `json:"inference_size"`
}

// Validate clamps thresholds into range and fills defaults.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindSegmentation, KindPose, KindBoundingBox:
	default:
		return errors.Errorf("unknown model output kind %q", c.Kind)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		c.ConfidenceThreshold = 0.5
	}
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		c.IoUThreshold = 0.7
	}
	if c.InferenceSize <= 0 {
		c.InferenceSize = 640
	}
	return nil
}
