package analysis

import (
	"math"

	"github.com/etho-ai/go-tracking/tracking"
)

// jumpRefractoryFrames is the minimum spacing between counted jumps; a
// single leap spans several frames outside the arena and must count once.
const jumpRefractoryFrames = 20

// DetectJumps scans pose records for frames where the animal clears the
// arena boundary: both the nose and the body center land outside the arena
// circle. Consecutive out-of-bounds frames within the refractory interval
// collapse into one jump.
//
// Only records carrying keypoints participate, so the function is a no-op on
// runs from non-pose models.
//
// Returns:
//   - []int: Frame numbers at which jumps were counted.
func DetectJumps(records []tracking.FrameRecord, arenaCenterX, arenaCenterY, arenaRadius float64) []int {
	var jumps []int

	for _, rec := range records {
		var nose, body *[2]float64
		for _, kp := range rec.Keypoints {
			switch kp.Name {
			case "nose":
				nose = &[2]float64{float64(kp.X), float64(kp.Y)}
			case "body_center":
				body = &[2]float64{float64(kp.X), float64(kp.Y)}
			}
		}
		if nose == nil || body == nil {
			continue
		}

		noseOut := math.Hypot(nose[0]-arenaCenterX, nose[1]-arenaCenterY) > arenaRadius
		bodyOut := math.Hypot(body[0]-arenaCenterX, body[1]-arenaCenterY) > arenaRadius
		if !noseOut || !bodyOut {
			continue
		}

		if len(jumps) == 0 || rec.FrameNumber-jumps[len(jumps)-1] > jumpRefractoryFrames {
			jumps = append(jumps, rec.FrameNumber)
		}
	}

	return jumps
}
