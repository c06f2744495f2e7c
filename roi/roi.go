// Package roi - Regions of interest: shape definitions, containment
// geometry, the priority resolver, and mask rasterization.
//
// An ROI is a user-authored named region of the frame. Three shapes exist,
// all anchored on a center point: axis-aligned rectangles, circles, and
// polygons with an explicit vertex list. Containment tests are pure float64
// geometry; boundaries count as inside for every shape.
package roi

import (
	"encoding/json"
	"fmt"

	"github.com/etho-ai/go-tracking/images"
	"github.com/pkg/errors"
)

// ShapeKind discriminates the closed set of ROI shapes.
type ShapeKind string

const (
	// KindRectangle is an axis-aligned rectangle given by center and extent.
	KindRectangle ShapeKind = "Rectangle"
	// KindCircle is a circle given by center and radius.
	KindCircle ShapeKind = "Circle"
	// KindPolygon is a closed polygon given by an ordered vertex list.
	KindPolygon ShapeKind = "Polygon"
)

// ROI is one named region. Exactly the fields for its Kind are meaningful:
// Width/Height for rectangles, Radius for circles, Vertices for polygons.
// ROIs are immutable once added to a Collection.
type ROI struct {
	Name    string
	Kind    ShapeKind
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
	Radius  float64
	// Vertices is the ordered outline of a polygon, at least 3 points.
	Vertices []images.Point
}

// Contains reports whether p lies inside the region, boundary inclusive.
func (r ROI) Contains(p images.Point) bool {
	switch r.Kind {
	case KindRectangle:
		halfW := r.Width / 2
		halfH := r.Height / 2
		return p.X >= r.CenterX-halfW && p.X <= r.CenterX+halfW &&
			p.Y >= r.CenterY-halfH && p.Y <= r.CenterY+halfH
	case KindCircle:
		dx := p.X - r.CenterX
		dy := p.Y - r.CenterY
		return dx*dx+dy*dy <= r.Radius*r.Radius
	case KindPolygon:
		return polygonContains(r.Vertices, p)
	default:
		return false
	}
}

// Validate checks that the shape parameters are usable.
func (r ROI) Validate() error {
	switch r.Kind {
	case KindRectangle:
		if r.Width <= 0 || r.Height <= 0 {
			return errors.Errorf("rectangle %q needs positive extent, got %gx%g", r.Name, r.Width, r.Height)
		}
	case KindCircle:
		if r.Radius <= 0 {
			return errors.Errorf("circle %q needs positive radius, got %g", r.Name, r.Radius)
		}
	case KindPolygon:
		if len(r.Vertices) < 3 {
			return errors.Errorf("polygon %q needs at least 3 vertices, got %d", r.Name, len(r.Vertices))
		}
	default:
		return errors.Errorf("unknown ROI kind %q", r.Kind)
	}
	return nil
}

// polygonContains runs a ray-casting test with an explicit edge check first,
// so points exactly on an edge or vertex classify as inside.
func polygonContains(vertices []images.Point, p images.Point) bool {
	n := len(vertices)
	if n < 3 {
		return false
	}

	for i := 0; i < n; i++ {
		if onSegment(vertices[i], vertices[(i+1)%n], p) {
			return true
		}
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xCross := vi.X + (p.Y-vi.Y)/(vj.Y-vi.Y)*(vj.X-vi.X)
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// onSegment reports whether p lies on the segment a-b.
func onSegment(a, b, p images.Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if cross != 0 {
		return false
	}
	return p.X >= min(a.X, b.X) && p.X <= max(a.X, b.X) &&
		p.Y >= min(a.Y, b.Y) && p.Y <= max(a.Y, b.Y)
}

// roiJSON is the wire form, matching the preset file layout: vertices travel
// as [x, y] pairs and only the fields for the shape kind are emitted.
type roiJSON struct {
	Type     ShapeKind    `json:"roi_type"`
	Name     string       `json:"name,omitempty"`
	CenterX  float64      `json:"center_x"`
	CenterY  float64      `json:"center_y"`
	Width    *float64     `json:"width,omitempty"`
	Height   *float64     `json:"height,omitempty"`
	Radius   *float64     `json:"radius,omitempty"`
	Vertices [][2]float64 `json:"vertices,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r ROI) MarshalJSON() ([]byte, error) {
	out := roiJSON{Type: r.Kind, Name: r.Name, CenterX: r.CenterX, CenterY: r.CenterY}
	switch r.Kind {
	case KindRectangle:
		out.Width, out.Height = &r.Width, &r.Height
	case KindCircle:
		out.Radius = &r.Radius
	case KindPolygon:
		out.Vertices = make([][2]float64, len(r.Vertices))
		for i, v := range r.Vertices {
			out.Vertices[i] = [2]float64{v.X, v.Y}
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ROI) UnmarshalJSON(data []byte) error {
	var in roiJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Name = in.Name
	r.Kind = in.Type
	r.CenterX = in.CenterX
	r.CenterY = in.CenterY
	if in.Width != nil {
		r.Width = *in.Width
	}
	if in.Height != nil {
		r.Height = *in.Height
	}
	if in.Radius != nil {
		r.Radius = *in.Radius
	}
	if len(in.Vertices) > 0 {
		r.Vertices = make([]images.Point, len(in.Vertices))
		for i, v := range in.Vertices {
			r.Vertices[i] = images.Point{X: v[0], Y: v[1]}
		}
	}
	return r.Validate()
}

// String returns a short human-readable description.
func (r ROI) String() string {
	switch r.Kind {
	case KindRectangle:
		return fmt.Sprintf("%s rect(%g,%g %gx%g)", r.Name, r.CenterX, r.CenterY, r.Width, r.Height)
	case KindCircle:
		return fmt.Sprintf("%s circle(%g,%g r=%g)", r.Name, r.CenterX, r.CenterY, r.Radius)
	default:
		return fmt.Sprintf("%s polygon(%d vertices)", r.Name, len(r.Vertices))
	}
}
