package detect

import (
	"image"

	"github.com/etho-ai/go-tracking/background"
	"github.com/etho-ai/go-tracking/images"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// DefaultDiffThreshold is the absolute intensity difference at which a pixel
// counts as foreground against the background reference.
const DefaultDiffThreshold = 25

// Subtractor is the fallback tier: background subtraction with morphological
// cleanup and largest-contour centroid extraction. It borrows the background
// model read-only for the run and reuses its working Mats across frames.
//
// Always call Close when the run ends to release native resources.
type Subtractor struct {
	reference gocv.Mat // masked copy when an ROI mask is supplied
	roiMask   gocv.Mat // empty when detection is unrestricted
	threshold float32
	kernel    gocv.Mat

	gray   gocv.Mat
	masked gocv.Mat
	diff   gocv.Mat
	binary gocv.Mat
}

// SubtractorOptions tune the fallback detector.
type SubtractorOptions struct {
	// Threshold is the binarization cutoff, defaulting to
	// DefaultDiffThreshold when zero.
	Threshold float32
	// ROIMask restricts differencing to the masked area. The subtractor
	// keeps its own copy.
	ROIMask *gocv.Mat
}

// NewSubtractor prepares the fallback detector against a computed background
// model. When an ROI mask is given, the reference is masked once here rather
// than per frame.
func NewSubtractor(model *background.Model, opts SubtractorOptions) (*Subtractor, error) {
	if model == nil || model.Reference.Empty() {
		return nil, errors.New("subtractor needs a background model")
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultDiffThreshold
	}

	s := &Subtractor{
		threshold: threshold,
		kernel:    gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
		gray:      gocv.NewMat(),
		masked:    gocv.NewMat(),
		diff:      gocv.NewMat(),
		binary:    gocv.NewMat(),
	}

	if opts.ROIMask != nil && !opts.ROIMask.Empty() {
		s.roiMask = opts.ROIMask.Clone()
		s.reference = gocv.NewMat()
		gocv.BitwiseAndWithMask(model.Reference, model.Reference, &s.reference, s.roiMask)
	} else {
		s.roiMask = gocv.NewMat()
		s.reference = model.Reference.Clone()
	}

	return s, nil
}

// Detect produces at most one position estimate for the frame.
//
// Pipeline: grayscale, optional ROI masking, absolute difference against the
// reference, binary threshold, morphological opening then closing (3x3
// kernel, 2 iterations each, open strictly before close), external contours,
// largest-area contour, filled-region moment centroid.
//
// Returns:
//   - images.Point: The centroid of the largest foreground region.
//   - bool: False when no foreground region exists or the region is
//     degenerate.
//   - error: Frame/reference geometry mismatches and native failures. The
//     orchestrator treats these as a per-frame miss.
func (s *Subtractor) Detect(frame gocv.Mat) (images.Point, bool, error) {
	if frame.Empty() {
		return images.Point{}, false, errors.New("empty frame")
	}
	if frame.Rows() != s.reference.Rows() || frame.Cols() != s.reference.Cols() {
		return images.Point{}, false, errors.Errorf(
			"frame %dx%d does not match background %dx%d",
			frame.Cols(), frame.Rows(), s.reference.Cols(), s.reference.Rows())
	}

	if frame.Channels() == 1 {
		frame.CopyTo(&s.gray)
	} else {
		gocv.CvtColor(frame, &s.gray, gocv.ColorBGRToGray)
	}

	compare := s.gray
	if !s.roiMask.Empty() {
		gocv.BitwiseAndWithMask(s.gray, s.gray, &s.masked, s.roiMask)
		compare = s.masked
	}

	gocv.AbsDiff(compare, s.reference, &s.diff)
	gocv.Threshold(s.diff, &s.binary, s.threshold, 255, gocv.ThresholdBinary)

	// Opening removes speckle noise, closing fills small gaps. The order is
	// fixed: open before close.
	gocv.MorphologyExWithParams(s.binary, &s.binary, gocv.MorphOpen, s.kernel, 2, gocv.BorderConstant)
	gocv.MorphologyExWithParams(s.binary, &s.binary, gocv.MorphClose, s.kernel, 2, gocv.BorderConstant)

	contours := gocv.FindContours(s.binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	idx := images.LargestContour(contours)
	if idx < 0 {
		return images.Point{}, false, nil
	}

	region := images.FillContour(contours, idx, frame.Rows(), frame.Cols())
	defer region.Close()

	position, ok := images.Centroid(region)
	return position, ok, nil
}

// Close releases all native resources. The background model itself belongs
// to the caller and stays open.
func (s *Subtractor) Close() {
	s.reference.Close()
	s.roiMask.Close()
	s.kernel.Close()
	s.gray.Close()
	s.masked.Close()
	s.diff.Close()
	s.binary.Close()
}
