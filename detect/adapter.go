package detect

import (
	"github.com/etho-ai/go-tracking/images"
)

// The 7-keypoint mouse pose convention: nose, ears and body center form the
// head group; the rest of the skeleton follows.
var mouseKeypointNames = []string{
	"nose", "left_ear", "right_ear", "body_center",
	"left_hip", "right_hip", "tail_base",
}

const (
	// headKeypointCount is how many leading keypoints form the head group
	// the position estimate averages over.
	headKeypointCount = 4
	// keypointVisibility is the per-keypoint confidence a landmark must
	// exceed to count as visible.
	keypointVisibility = 0.5
)

// KeypointName returns the conventional name for keypoint index i, empty for
// indices beyond the skeleton.
func KeypointName(i int) string {
	if i < 0 || i >= len(mouseKeypointNames) {
		return ""
	}
	return mouseKeypointNames[i]
}

// Primary is the normalized outcome of one successful primary detection: a
// position plus whatever payload the model kind produces for downstream
// visualization.
type Primary struct {
	Position   images.Point
	Confidence float32
	Box        images.Rect
	// Outline is the simplified mask silhouette, segmentation models only.
	Outline []images.Point
	// Keypoints are the visible head-group landmarks, pose models only.
	Keypoints []Keypoint
}

// SelectCandidate picks the detection with maximum confidence. Exact
// confidence ties keep the lowest index; model output order is otherwise
// unspecified, so any deterministic rule is as good as another.
func SelectCandidate(detections []Detection) (Detection, bool) {
	if len(detections) == 0 {
		return Detection{}, false
	}
	best := 0
	for i := 1; i < len(detections); i++ {
		if detections[i].Confidence > detections[best].Confidence {
			best = i
		}
	}
	return detections[best], true
}

// Adapter converts raw model detections into a Primary position estimate.
// The conversion is exhaustive over the model's OutputKind; malformed or
// missing payloads yield "no candidate", never an error, so the caller's
// fallback tier can take over.
type Adapter struct {
	kind OutputKind
}

// NewAdapter builds an adapter for a model of the given output kind.
func NewAdapter(kind OutputKind) *Adapter {
	return &Adapter{kind: kind}
}

// Kind reports the output kind the adapter expects.
func (a *Adapter) Kind() OutputKind { return a.kind }

// Adapt selects the best candidate and derives its position for a frame of
// the given dimensions.
//
// Returns:
//   - *Primary: The normalized detection, nil when no usable candidate
//     exists.
func (a *Adapter) Adapt(detections []Detection, frameW, frameH int) *Primary {
	candidate, ok := SelectCandidate(detections)
	if !ok {
		return nil
	}

	switch a.kind {
	case KindSegmentation:
		return a.adaptMask(candidate, frameW, frameH)
	case KindPose:
		return a.adaptKeypoints(candidate)
	case KindBoundingBox:
		return &Primary{
			Position:   candidate.Box.Center(),
			Confidence: candidate.Confidence,
			Box:        candidate.Box,
		}
	default:
		return nil
	}
}

// adaptMask upscales the probability mask to frame resolution, binarizes at
// 0.5 and takes the moment centroid. A mask with zero foreground pixels
// discards the candidate.
func (a *Adapter) adaptMask(candidate Detection, frameW, frameH int) *Primary {
	m := candidate.Mask
	if m == nil || len(m.Probs) != m.Width*m.Height || m.Width <= 0 {
		return nil
	}

	binary := images.UpscaleProbMask(m.Probs, m.Width, m.Height, frameW, frameH)
	defer binary.Close()

	position, ok := images.Centroid(binary)
	if !ok {
		return nil
	}

	return &Primary{
		Position:   position,
		Confidence: candidate.Confidence,
		Box:        candidate.Box,
		Outline:    images.SimplifyOutline(binary),
	}
}

// adaptKeypoints averages the visible head-group landmarks. No visible head
// keypoint discards the candidate.
func (a *Adapter) adaptKeypoints(candidate Detection) *Primary {
	kpts := candidate.Keypoints
	if len(kpts) == 0 {
		return nil
	}
	head := kpts
	if len(head) > headKeypointCount {
		head = head[:headKeypointCount]
	}

	var sumX, sumY float64
	visible := make([]Keypoint, 0, len(head))
	for _, kp := range head {
		if kp.Confidence > keypointVisibility {
			sumX += float64(kp.X)
			sumY += float64(kp.Y)
			visible = append(visible, kp)
		}
	}
	if len(visible) == 0 {
		return nil
	}

	n := float64(len(visible))
	return &Primary{
		Position:   images.Point{X: sumX / n, Y: sumY / n},
		Confidence: candidate.Confidence,
		Box:        candidate.Box,
		Keypoints:  visible,
	}
}
