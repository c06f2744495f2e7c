// Package images - Centroid and contour computations on binary masks.
package images

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Centroid computes the image-moment centroid of a binary mask: the first
// moment divided by the zeroth moment. The mask is treated as binary, so
// every nonzero pixel contributes equally.
//
// Returns:
//   - Point: The centroid in pixel coordinates.
//   - bool: False when the mask has no foreground pixels (zero area).
func Centroid(mask gocv.Mat) (Point, bool) {
	m := gocv.Moments(mask, true)
	if m["m00"] <= 0 {
		return Point{}, false
	}
	return Point{X: m["m10"] / m["m00"], Y: m["m01"] / m["m00"]}, true
}

// LargestContour returns the index of the contour with the maximum area, or
// -1 when the vector is empty. Exact area ties keep the lowest index, which
// matches the enumeration order of gocv.FindContours.
func LargestContour(contours gocv.PointsVector) int {
	best := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if best == -1 || area > bestArea {
			best = i
			bestArea = area
		}
	}
	return best
}

// FillContour rasterizes a single contour, filled, into a fresh CV8UC1 mask
// of the given dimensions. The caller owns the returned Mat.
func FillContour(contours gocv.PointsVector, idx, rows, cols int) gocv.Mat {
	mask := gocv.Zeros(rows, cols, gocv.MatTypeCV8UC1)
	gocv.DrawContours(&mask, contours, idx, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
	return mask
}

// SimplifyOutline extracts the largest external contour of a binary mask and
// reduces it with polygon approximation. The tolerance is 0.5% of the contour
// perimeter, enough to keep the silhouette recognizable for overlays while
// shedding most vertices.
//
// Returns:
//   - []Point: The simplified outline, nil when the mask has no contours.
func SimplifyOutline(mask gocv.Mat) []Point {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	idx := LargestContour(contours)
	if idx < 0 {
		return nil
	}

	contour := contours.At(idx)
	epsilon := 0.005 * gocv.ArcLength(contour, true)
	approx := gocv.ApproxPolyDP(contour, epsilon, true)
	defer approx.Close()

	outline := make([]Point, 0, approx.Size())
	for _, p := range approx.ToPoints() {
		outline = append(outline, Point{X: float64(p.X), Y: float64(p.Y)})
	}
	return outline
}
