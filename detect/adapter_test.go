package detect

import (
	"testing"

	"github.com/etho-ai/go-tracking/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCandidate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, ok := SelectCandidate(nil)
		assert.False(t, ok)
	})

	t.Run("max confidence wins", func(t *testing.T) {
		selected, ok := SelectCandidate([]Detection{
			{Confidence: 0.4, Box: images.Rect{X1: 0, Y1: 0, X2: 1, Y2: 1}},
			{Confidence: 0.9, Box: images.Rect{X1: 10, Y1: 10, X2: 11, Y2: 11}},
			{Confidence: 0.7, Box: images.Rect{X1: 20, Y1: 20, X2: 21, Y2: 21}},
		})
		require.True(t, ok)
		assert.Equal(t, float32(0.9), selected.Confidence)
		assert.Equal(t, 10, selected.Box.X1)
	})

	t.Run("exact tie keeps lowest index", func(t *testing.T) {
		selected, ok := SelectCandidate([]Detection{
			{Confidence: 0.8, Box: images.Rect{X1: 1, Y1: 1, X2: 2, Y2: 2}},
			{Confidence: 0.8, Box: images.Rect{X1: 5, Y1: 5, X2: 6, Y2: 6}},
		})
		require.True(t, ok)
		assert.Equal(t, 1, selected.Box.X1)
	})
}

func TestAdaptBoundingBox(t *testing.T) {
	adapter := NewAdapter(KindBoundingBox)

	primary := adapter.Adapt([]Detection{
		{Confidence: 0.85, Box: images.Rect{X1: 100, Y1: 50, X2: 200, Y2: 150}},
	}, 640, 480)

	require.NotNil(t, primary)
	assert.Equal(t, images.Point{X: 150, Y: 100}, primary.Position)
	assert.Equal(t, float32(0.85), primary.Confidence)
	assert.Nil(t, primary.Outline)
	assert.Nil(t, primary.Keypoints)
}

func TestAdaptPoseHeadGroup(t *testing.T) {
	adapter := NewAdapter(KindPose)

	kpts := []Keypoint{
		{Name: "nose", X: 100, Y: 100, Confidence: 0.9},
		{Name: "left_ear", X: 110, Y: 90, Confidence: 0.8},
		{Name: "right_ear", X: 110, Y: 110, Confidence: 0.3}, // below visibility
		{Name: "body_center", X: 120, Y: 100, Confidence: 0.7},
		// Tail keypoints are outside the head group and must not move the
		// position even at full confidence.
		{Name: "left_hip", X: 500, Y: 500, Confidence: 1.0},
		{Name: "right_hip", X: 500, Y: 500, Confidence: 1.0},
		{Name: "tail_base", X: 500, Y: 500, Confidence: 1.0},
	}

	primary := adapter.Adapt([]Detection{{Confidence: 0.9, Keypoints: kpts}}, 640, 480)
	require.NotNil(t, primary)

	// Mean of the three visible head keypoints.
	assert.InDelta(t, (100.0+110+120)/3, primary.Position.X, 1e-9)
	assert.InDelta(t, (100.0+90+100)/3, primary.Position.Y, 1e-9)
	require.Len(t, primary.Keypoints, 3)
	assert.Equal(t, "nose", primary.Keypoints[0].Name)
}

func TestAdaptPoseNoVisibleHead(t *testing.T) {
	adapter := NewAdapter(KindPose)

	primary := adapter.Adapt([]Detection{{
		Confidence: 0.9,
		Keypoints: []Keypoint{
			{Name: "nose", X: 1, Y: 1, Confidence: 0.2},
			{Name: "left_ear", X: 2, Y: 2, Confidence: 0.5}, // not strictly above
			{Name: "right_ear", X: 3, Y: 3, Confidence: 0.1},
			{Name: "body_center", X: 4, Y: 4, Confidence: 0.0},
		},
	}}, 640, 480)

	assert.Nil(t, primary, "a candidate with no visible head keypoints is discarded")
}

func TestAdaptSegmentationCentroid(t *testing.T) {
	adapter := NewAdapter(KindSegmentation)

	// A 16x16 probability mask fully foreground in the lower-right quadrant.
	// Upscaled to 64x64 the quadrant covers x,y in [32,64); its centroid sits
	// near (47.5, 47.5).
	probs := make([]float32, 16*16)
	for y := 8; y < 16; y++ {
		for x := 8; x < 16; x++ {
			probs[y*16+x] = 1.0
		}
	}

	primary := adapter.Adapt([]Detection{{
		Confidence: 0.95,
		Box:        images.Rect{X1: 32, Y1: 32, X2: 64, Y2: 64},
		Mask:       &Mask{Width: 16, Height: 16, Probs: probs},
	}}, 64, 64)

	require.NotNil(t, primary)
	assert.InDelta(t, 47.5, primary.Position.X, 1.0)
	assert.InDelta(t, 47.5, primary.Position.Y, 1.0)
	assert.NotEmpty(t, primary.Outline, "segmentation detections carry a mask outline")
}

func TestAdaptMalformedPayloads(t *testing.T) {
	t.Run("segmentation without mask", func(t *testing.T) {
		primary := NewAdapter(KindSegmentation).Adapt(
			[]Detection{{Confidence: 0.9}}, 64, 64)
		assert.Nil(t, primary)
	})

	t.Run("segmentation with inconsistent mask", func(t *testing.T) {
		primary := NewAdapter(KindSegmentation).Adapt(
			[]Detection{{Confidence: 0.9, Mask: &Mask{Width: 4, Height: 4, Probs: []float32{1}}}}, 64, 64)
		assert.Nil(t, primary)
	})

	t.Run("segmentation with empty mask", func(t *testing.T) {
		primary := NewAdapter(KindSegmentation).Adapt(
			[]Detection{{Confidence: 0.9, Mask: &Mask{Width: 4, Height: 4, Probs: make([]float32, 16)}}}, 64, 64)
		assert.Nil(t, primary, "zero foreground pixels discards the candidate")
	})

	t.Run("pose without keypoints", func(t *testing.T) {
		primary := NewAdapter(KindPose).Adapt([]Detection{{Confidence: 0.9}}, 64, 64)
		assert.Nil(t, primary)
	})
}

func TestKeypointName(t *testing.T) {
	assert.Equal(t, "nose", KeypointName(0))
	assert.Equal(t, "body_center", KeypointName(3))
	assert.Equal(t, "tail_base", KeypointName(6))
	assert.Equal(t, "", KeypointName(7))
	assert.Equal(t, "", KeypointName(-1))
}
