package detect

import (
	"sort"

	"github.com/etho-ai/go-tracking/images"
)

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Detections are ordered by descending confidence, then each surviving
// anchor suppresses later boxes whose IoU with it exceeds the threshold.
// With a single animal in the arena this usually collapses the raw anchor
// grid to one detection.
//
// Arguments:
//   - detections: Raw detections in any order.
//   - iouThreshold: Overlap above which the weaker box is suppressed.
//
// Returns:
//   - Filtered slice, highest confidence first. Nil input returns nil.
func ApplyGreedyNMS(detections []Detection, iouThreshold float32) []Detection {
	n := len(detections)
	if n == 0 {
		return nil
	}

	ordered := make([]Detection, n)
	copy(ordered, detections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	filtered := make([]Detection, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := ordered[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if images.CalculateIoU(anchor.Box, ordered[j].Box) > iouThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}
