package roi

import (
	"strconv"

	"github.com/etho-ai/go-tracking/images"
)

// Collection is an insertion-ordered set of ROIs. Insertion order carries the
// overlap priority: when two regions contain the same point, the one added
// later wins. The collection is not safe for concurrent mutation; runs take
// a Snapshot at start and never see later edits.
type Collection struct {
	rois []ROI
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends an ROI, giving it the highest overlap priority so far.
func (c *Collection) Add(r ROI) error {
	if err := r.Validate(); err != nil {
		return err
	}
	c.rois = append(c.rois, r)
	return nil
}

// Remove deletes the ROI at index i, preserving the relative order of the
// rest. Out-of-range indices are ignored.
func (c *Collection) Remove(i int) {
	if i < 0 || i >= len(c.rois) {
		return
	}
	c.rois = append(c.rois[:i], c.rois[i+1:]...)
}

// Clear removes every ROI.
func (c *Collection) Clear() {
	c.rois = nil
}

// Len returns the number of ROIs.
func (c *Collection) Len() int { return len(c.rois) }

// At returns the ROI at index i.
func (c *Collection) At(i int) ROI { return c.rois[i] }

// Snapshot returns a copy of the ordered ROI list. Callers that iterate
// frames hold the snapshot so concurrent edits to the collection cannot
// change priority mid-run.
func (c *Collection) Snapshot() []ROI {
	out := make([]ROI, len(c.rois))
	copy(out, c.rois)
	return out
}

// Resolve returns the index of the ROI containing p, walking the list in
// reverse insertion order so the most recently added containing region wins.
// The second return is false when no region contains the point.
func Resolve(rois []ROI, p images.Point) (int, bool) {
	for i := len(rois) - 1; i >= 0; i-- {
		if rois[i].Contains(p) {
			return i, true
		}
	}
	return -1, false
}

// ResolveName is Resolve plus the region's display name. Unnamed regions get
// a stable positional identity ("roi_0", "roi_1", ...).
func ResolveName(rois []ROI, p images.Point) (int, string, bool) {
	idx, ok := Resolve(rois, p)
	if !ok {
		return -1, "", false
	}
	name := rois[idx].Name
	if name == "" {
		name = "roi_" + strconv.Itoa(idx)
	}
	return idx, name, true
}
