// Package tracking - The per-video orchestration loop: primary detection,
// fallback, ROI resolution, and the per-frame record stream.
package tracking

import (
	"time"

	"github.com/etho-ai/go-tracking/detect"
	"github.com/etho-ai/go-tracking/roi"
)

// Method tags where a frame's position estimate came from.
type Method string

const (
	// MethodPrimary means the learned detector produced the position.
	MethodPrimary Method = "primary"
	// MethodFallback means background subtraction produced it.
	MethodFallback Method = "fallback"
	// MethodNone means both tiers failed for the frame.
	MethodNone Method = "none"
)

// FrameRecord is the immutable per-frame output. Centroid and ROI fields are
// nil when the frame had no detection; payload fields are populated
// according to the model kind that produced the detection.
type FrameRecord struct {
	FrameNumber  int      `json:"frame_number"`
	CentroidX    *float64 `json:"centroid_x"`
	CentroidY    *float64 `json:"centroid_y"`
	ROI          *string  `json:"roi"`
	ROIIndex     *int     `json:"roi_index"`
	Method       Method   `json:"detection_method"`
	TimestampSec float64  `json:"timestamp_sec"`

	// BBox is [x1, y1, x2, y2], primary detections only.
	BBox       []float64         `json:"bbox,omitempty"`
	Confidence *float32          `json:"confidence,omitempty"`
	Keypoints  []detect.Keypoint `json:"keypoints,omitempty"`
	// Mask is the simplified mask outline as [x, y] pairs, segmentation
	// models only.
	Mask [][2]float64 `json:"mask,omitempty"`
}

// Position returns the record's centroid when it has one.
func (r FrameRecord) Position() (x, y float64, ok bool) {
	if r.CentroidX == nil || r.CentroidY == nil {
		return 0, 0, false
	}
	return *r.CentroidX, *r.CentroidY, true
}

// Statistics summarizes a run: counts of frames by detection method. The
// three counts always sum to the number of records.
type Statistics struct {
	PrimaryDetections      int     `json:"primary_detections"`
	FallbackDetections     int     `json:"fallback_detections"`
	FramesWithoutDetection int     `json:"frames_without_detection"`
	DetectionRate          float64 `json:"detection_rate"`
}

// Summarize derives run statistics from an emitted record sequence.
func Summarize(records []FrameRecord) Statistics {
	var s Statistics
	for _, r := range records {
		switch r.Method {
		case MethodPrimary:
			s.PrimaryDetections++
		case MethodFallback:
			s.FallbackDetections++
		default:
			s.FramesWithoutDetection++
		}
	}
	if len(records) > 0 {
		s.DetectionRate = float64(s.PrimaryDetections+s.FallbackDetections) / float64(len(records))
	}
	return s
}

// VideoInfo describes the processed source.
type VideoInfo struct {
	TotalFrames int     `json:"total_frames"`
	FPS         float64 `json:"fps"`
	FrameWidth  int     `json:"frame_width"`
	FrameHeight int     `json:"frame_height"`
}

// Result is the boundary artifact of a run: the ordered record sequence plus
// summary data, serializable as the tracking JSON consumed by the analysis
// layer.
type Result struct {
	VideoName           string        `json:"video_name"`
	Timestamp           time.Time     `json:"timestamp"`
	VideoInfo           VideoInfo     `json:"video_info"`
	Statistics          Statistics    `json:"statistics"`
	ROIs                []roi.ROI     `json:"rois"`
	Records             []FrameRecord `json:"tracking_data"`
	BackgroundAvailable bool          `json:"background_available"`
}
