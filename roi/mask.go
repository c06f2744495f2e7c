package roi

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var maskColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Rasterize paints every ROI, filled, into a fresh CV8UC1 mask of the given
// frame dimensions: 255 inside any region, 0 elsewhere. The fallback
// detector uses the mask to restrict background subtraction to the regions
// the experimenter cares about. The caller owns the returned Mat.
//
// Note the raster is a union with no priority — priority only matters for
// point resolution, not for limiting where detection looks.
func Rasterize(rois []ROI, width, height int) gocv.Mat {
	mask := gocv.Zeros(height, width, gocv.MatTypeCV8UC1)

	for _, r := range rois {
		switch r.Kind {
		case KindRectangle:
			x1 := int(r.CenterX - r.Width/2)
			y1 := int(r.CenterY - r.Height/2)
			x2 := int(r.CenterX + r.Width/2)
			y2 := int(r.CenterY + r.Height/2)
			gocv.Rectangle(&mask, image.Rect(x1, y1, x2, y2), maskColor, -1)
		case KindCircle:
			center := image.Pt(int(r.CenterX), int(r.CenterY))
			gocv.Circle(&mask, center, int(r.Radius), maskColor, -1)
		case KindPolygon:
			pts := make([]image.Point, len(r.Vertices))
			for i, v := range r.Vertices {
				pts[i] = image.Pt(int(v.X), int(v.Y))
			}
			polys := gocv.NewPointsVector()
			polys.Append(gocv.NewPointVectorFromPoints(pts))
			gocv.FillPoly(&mask, polys, maskColor)
			polys.Close()
		}
	}

	return mask
}
