// Package images - Frame-level raster and geometry utilities shared by the
// detection and tracking packages.
package images

// Point is a position in frame pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a lightweight bounding box.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() int { return r.X2 - r.X1 }

// Height returns the vertical extent of the box.
func (r Rect) Height() int { return r.Y2 - r.Y1 }

// Center returns the midpoint of the box diagonal in pixel coordinates.
func (r Rect) Center() Point {
	return Point{X: float64(r.X1+r.X2) / 2, Y: float64(r.Y1+r.Y2) / 2}
}

// CalculateIoU computes the Intersection over Union of two boxes.
//
// The intersection corners are the max of the starting corners and the min of
// the ending corners; a non-positive width or height means the boxes do not
// overlap and the score is 0. The union follows the principle of
// inclusion-exclusion: Area(A) + Area(B) - Area(A∩B).
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	areaR := (r.X2 - r.X1) * (r.Y2 - r.Y1)
	areaO := (o.X2 - o.X1) * (o.Y2 - o.Y1)
	unionArea := areaR + areaO - interArea

	return float32(interArea) / float32(unionArea)
}
