package tracking

import (
	"context"
	"log"
	"time"

	"github.com/etho-ai/go-tracking/background"
	"github.com/etho-ai/go-tracking/detect"
	"github.com/etho-ai/go-tracking/images"
	"github.com/etho-ai/go-tracking/roi"
	"github.com/etho-ai/go-tracking/video"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Options configure one tracking run. Each run owns its options for the
// whole run; ROIs are snapshotted so collection edits elsewhere cannot shift
// priority mid-run.
type Options struct {
	// Detector is the primary tier. Required.
	Detector detect.Detector
	// Background enables the fallback tier when non-nil. A run without a
	// model simply never enters fallback.
	Background *background.Model
	// ROIs is the ordered region snapshot for resolution.
	ROIs []roi.ROI
	// RestrictFallback limits subtraction to the ROI union mask.
	RestrictFallback bool
	// FallbackThreshold overrides the subtraction binarization cutoff;
	// zero keeps the default.
	FallbackThreshold float32
	// Progress, when non-nil, receives (currentFrame, totalFrames) after
	// every processed frame.
	Progress func(current, total int)
	// VideoName labels the result.
	VideoName string
}

// Tracker iterates a video and produces one FrameRecord per frame. Frames
// are processed strictly in order; a frame that fails both tiers still emits
// a record, so the sequence has no gaps.
type Tracker struct {
	detector detect.Detector
	adapter  *detect.Adapter
	fallback *detect.Subtractor
	opts     Options
}

// NewTracker wires a run. When a background model is supplied the fallback
// subtractor is prepared here, masked to the ROI union when requested.
func NewTracker(opts Options) (*Tracker, error) {
	if opts.Detector == nil {
		return nil, errors.New("tracker needs a primary detector")
	}

	t := &Tracker{
		detector: opts.Detector,
		adapter:  detect.NewAdapter(opts.Detector.Kind()),
		opts:     opts,
	}

	if opts.Background != nil {
		subOpts := detect.SubtractorOptions{Threshold: opts.FallbackThreshold}
		if opts.RestrictFallback && len(opts.ROIs) > 0 {
			ref := opts.Background.Reference
			mask := roi.Rasterize(opts.ROIs, ref.Cols(), ref.Rows())
			defer mask.Close()
			subOpts.ROIMask = &mask
		}
		fallback, err := detect.NewSubtractor(opts.Background, subOpts)
		if err != nil {
			return nil, errors.Wrap(err, "preparing fallback detector")
		}
		t.fallback = fallback
	}

	return t, nil
}

// Run processes the source until exhaustion or cancellation. Cancellation is
// cooperative, checked before each frame; a cancelled run returns the
// records accumulated so far as a complete, well-formed partial result, not
// an error.
func (t *Tracker) Run(ctx context.Context, src video.Source) (*Result, error) {
	fps := src.FPS()
	total := src.FrameCount()
	width, height := src.Size()

	records := make([]FrameRecord, 0, total)

	frame := gocv.NewMat()
	defer frame.Close()

loop:
	for idx := 0; ; idx++ {
		select {
		case <-ctx.Done():
			break loop
		default:
		}

		if !src.Read(&frame) {
			break
		}

		rec := t.processFrame(ctx, idx, frame, fps)
		records = append(records, rec)

		if t.opts.Progress != nil {
			t.opts.Progress(idx+1, total)
		}
	}

	return &Result{
		VideoName:           t.opts.VideoName,
		Timestamp:           time.Now(),
		VideoInfo:           VideoInfo{TotalFrames: total, FPS: fps, FrameWidth: width, FrameHeight: height},
		Statistics:          Summarize(records),
		ROIs:                t.opts.ROIs,
		Records:             records,
		BackgroundAvailable: t.fallback != nil,
	}, nil
}

// processFrame walks the per-frame state machine: try primary, on failure
// try fallback when available, then resolve ROI membership. Failures at
// either tier never escape a frame.
func (t *Tracker) processFrame(ctx context.Context, idx int, frame gocv.Mat, fps float64) FrameRecord {
	rec := FrameRecord{
		FrameNumber: idx,
		Method:      MethodNone,
	}
	if fps > 0 {
		rec.TimestampSec = float64(idx) / fps
	}

	var position images.Point
	havePosition := false

	if primary := t.tryPrimary(ctx, idx, frame); primary != nil {
		position = primary.Position
		havePosition = true
		rec.Method = MethodPrimary
		rec.Confidence = &primary.Confidence
		rec.BBox = []float64{
			float64(primary.Box.X1), float64(primary.Box.Y1),
			float64(primary.Box.X2), float64(primary.Box.Y2),
		}
		rec.Keypoints = primary.Keypoints
		if len(primary.Outline) > 0 {
			rec.Mask = make([][2]float64, len(primary.Outline))
			for i, p := range primary.Outline {
				rec.Mask[i] = [2]float64{p.X, p.Y}
			}
		}
	} else if t.fallback != nil {
		if p, ok := t.tryFallback(idx, frame); ok {
			position = p
			havePosition = true
			rec.Method = MethodFallback
		}
	}

	if havePosition {
		rec.CentroidX = &position.X
		rec.CentroidY = &position.Y
		if roiIdx, name, ok := roi.ResolveName(t.opts.ROIs, position); ok {
			rec.ROIIndex = &roiIdx
			rec.ROI = &name
		}
	}

	return rec
}

// tryPrimary invokes the learned detector and the adapter. Errors and panics
// from the model invocation are logged and collapse to "no candidate": a
// single frame's detector failure must not abort the run.
func (t *Tracker) tryPrimary(ctx context.Context, idx int, frame gocv.Mat) (primary *detect.Primary) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("primary detector panicked on frame %d: %v", idx, r)
			primary = nil
		}
	}()

	detections, err := t.detector.Detect(ctx, frame)
	if err != nil {
		log.Printf("primary detection failed on frame %d: %v", idx, err)
		return nil
	}
	return t.adapter.Adapt(detections, frame.Cols(), frame.Rows())
}

// tryFallback runs background subtraction, recovering errors the same way.
func (t *Tracker) tryFallback(idx int, frame gocv.Mat) (images.Point, bool) {
	p, ok, err := t.fallback.Detect(frame)
	if err != nil {
		log.Printf("fallback detection failed on frame %d: %v", idx, err)
		return images.Point{}, false
	}
	return p, ok
}

// Close releases the run's fallback resources. The detector and background
// model belong to the caller.
func (t *Tracker) Close() {
	if t.fallback != nil {
		t.fallback.Close()
	}
}
