package analysis

import (
	"math"

	"github.com/etho-ai/go-tracking/tracking"
)

// centerZoneFraction: the center zone of an open-field arena is the inner
// half of the radius.
const centerZoneFraction = 0.5

// OpenField is the center/periphery time split of an open-field session,
// counted in frames. More periphery time (thigmotaxis) reads as higher
// anxiety-like behavior.
type OpenField struct {
	CenterTime          int     `json:"center_time"`
	PeripheryTime       int     `json:"periphery_time"`
	CenterPercentage    float64 `json:"center_percentage"`
	PeripheryPercentage float64 `json:"periphery_percentage"`
	TotalFrames         int     `json:"total_frames"`
}

// AnalyzeOpenField classifies each detected position against a circular
// arena: inside centerZoneFraction of the radius counts as center time,
// everything else as periphery.
func AnalyzeOpenField(records []tracking.FrameRecord, arenaCenterX, arenaCenterY, arenaRadius float64) OpenField {
	var r OpenField
	for _, rec := range records {
		x, y, ok := rec.Position()
		if !ok {
			continue
		}
		distance := math.Hypot(x-arenaCenterX, y-arenaCenterY)
		if distance < arenaRadius*centerZoneFraction {
			r.CenterTime++
		} else {
			r.PeripheryTime++
		}
	}

	r.TotalFrames = r.CenterTime + r.PeripheryTime
	if r.TotalFrames > 0 {
		r.CenterPercentage = float64(r.CenterTime) / float64(r.TotalFrames) * 100
		r.PeripheryPercentage = float64(r.PeripheryTime) / float64(r.TotalFrames) * 100
	}
	return r
}
