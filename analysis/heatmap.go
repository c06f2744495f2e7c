package analysis

import (
	"github.com/etho-ai/go-tracking/tracking"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// HeatmapSettings controls occupancy binning.
type HeatmapSettings struct {
	// Resolution is the number of bins along each frame axis.
	Resolution int `json:"resolution"`
	// Normalize rescales the grid so the hottest bin is 1.0.
	Normalize bool `json:"normalize"`
}

// Heatmap bins detected positions into a Resolution x Resolution occupancy
// grid over the frame. The grid is indexed [row][col], row 0 at the top of
// the frame, matching image coordinates.
//
// Returns:
//   - *tensor.Dense: The float64 occupancy grid.
//   - error: Invalid dimensions or settings.
func Heatmap(records []tracking.FrameRecord, frameW, frameH int, settings HeatmapSettings) (*tensor.Dense, error) {
	if frameW <= 0 || frameH <= 0 {
		return nil, errors.Errorf("invalid frame dimensions %dx%d", frameW, frameH)
	}
	bins := settings.Resolution
	if bins <= 0 {
		return nil, errors.Errorf("invalid heatmap resolution %d", bins)
	}

	grid := tensor.New(tensor.WithShape(bins, bins), tensor.Of(tensor.Float64))
	data := grid.Data().([]float64)

	for _, rec := range records {
		x, y, ok := rec.Position()
		if !ok {
			continue
		}
		col := int(x / float64(frameW) * float64(bins))
		row := int(y / float64(frameH) * float64(bins))
		// Positions exactly on the right/bottom frame edge belong to the
		// last bin, not outside the grid.
		if col == bins && x == float64(frameW) {
			col = bins - 1
		}
		if row == bins && y == float64(frameH) {
			row = bins - 1
		}
		if col < 0 || col >= bins || row < 0 || row >= bins {
			continue
		}
		data[row*bins+col]++
	}

	if settings.Normalize {
		var peak float64
		for _, v := range data {
			if v > peak {
				peak = v
			}
		}
		if peak > 0 {
			for i := range data {
				data[i] /= peak
			}
		}
	}

	return grid, nil
}
