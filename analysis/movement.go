// Package analysis - Derived metrics over a completed tracking run:
// movement statistics, occupancy heatmaps, open-field zone times, and jump
// detection.
//
// Everything here consumes the FrameRecord sequence; frames without a
// detection are skipped, so a sparse run still yields well-defined metrics.
package analysis

import (
	"math"

	"github.com/etho-ai/go-tracking/images"
	"github.com/etho-ai/go-tracking/tracking"
)

// Movement summarizes trajectory statistics in pixel units per frame.
type Movement struct {
	TotalDistance   float64      `json:"total_distance"`
	AverageVelocity float64      `json:"average_velocity"`
	MaxVelocity     float64      `json:"max_velocity"`
	CenterOfMass    images.Point `json:"center_of_mass"`
	FramesAnalyzed  int          `json:"frames_analyzed"`
}

// AnalyzeMovement computes per-step velocities between consecutive detected
// positions. Undetected frames break the chain: the step across a gap is not
// counted as one jump of velocity.
func AnalyzeMovement(records []tracking.FrameRecord) Movement {
	var m Movement
	var sumX, sumY float64
	var prevX, prevY float64
	havePrev := false
	steps := 0

	for _, rec := range records {
		x, y, ok := rec.Position()
		if !ok {
			havePrev = false
			continue
		}

		sumX += x
		sumY += y
		m.FramesAnalyzed++

		if havePrev {
			v := math.Hypot(x-prevX, y-prevY)
			m.TotalDistance += v
			if v > m.MaxVelocity {
				m.MaxVelocity = v
			}
			steps++
		}
		prevX, prevY = x, y
		havePrev = true
	}

	if steps > 0 {
		m.AverageVelocity = m.TotalDistance / float64(steps)
	}
	if m.FramesAnalyzed > 0 {
		m.CenterOfMass = images.Point{
			X: sumX / float64(m.FramesAnalyzed),
			Y: sumY / float64(m.FramesAnalyzed),
		}
	}
	return m
}
