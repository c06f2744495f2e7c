package roi

import (
	"testing"

	"github.com/etho-ai/go-tracking/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLastInsertedWins(t *testing.T) {
	// Later-added regions take priority on overlap, for every shape pairing.
	rect := ROI{Name: "rect", Kind: KindRectangle, CenterX: 0, CenterY: 0, Width: 10, Height: 10}
	circle := ROI{Name: "circle", Kind: KindCircle, CenterX: 0, CenterY: 0, Radius: 20}
	polygon := ROI{
		Name: "polygon", Kind: KindPolygon, CenterX: 0, CenterY: 0,
		Vertices: []images.Point{{X: -15, Y: -15}, {X: 15, Y: -15}, {X: 15, Y: 15}, {X: -15, Y: 15}},
	}

	pairings := []struct {
		name          string
		first, second ROI
	}{
		{"rect then rect", rect, ROI{Name: "rect2", Kind: KindRectangle, CenterX: 0, CenterY: 0, Width: 8, Height: 8}},
		{"rect then circle", rect, circle},
		{"circle then rect", circle, rect},
		{"circle then polygon", circle, polygon},
		{"polygon then circle", polygon, circle},
		{"polygon then rect", polygon, rect},
	}

	origin := images.Point{X: 0, Y: 0}
	for _, tt := range pairings {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollection()
			require.NoError(t, c.Add(tt.first))
			require.NoError(t, c.Add(tt.second))

			idx, ok := Resolve(c.Snapshot(), origin)
			require.True(t, ok)
			assert.Equal(t, 1, idx, "the later-added ROI must win")
		})
	}
}

func TestResolveOverlappingBoundary(t *testing.T) {
	// A point exactly on two overlapping boundaries still resolves to the
	// later-added region.
	c := NewCollection()
	require.NoError(t, c.Add(ROI{Name: "a", Kind: KindRectangle, CenterX: 0, CenterY: 0, Width: 10, Height: 10}))
	require.NoError(t, c.Add(ROI{Name: "b", Kind: KindCircle, CenterX: 0, CenterY: 0, Radius: 5}))

	idx, name, ok := ResolveName(c.Snapshot(), images.Point{X: 5, Y: 0})
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "b", name)
}

func TestResolveNeverReturnsNonContaining(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Add(ROI{Name: "left", Kind: KindCircle, CenterX: 0, CenterY: 0, Radius: 10}))
	require.NoError(t, c.Add(ROI{Name: "right", Kind: KindCircle, CenterX: 100, CenterY: 0, Radius: 10}))

	rois := c.Snapshot()
	points := []images.Point{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 50, Y: 0}, {X: 10, Y: 0}, {X: -11, Y: 0},
	}
	for _, p := range points {
		idx, ok := Resolve(rois, p)
		if ok {
			assert.True(t, rois[idx].Contains(p),
				"resolve returned region %d which does not contain %+v", idx, p)
		}
	}
}

func TestResolveEmptyAndMiss(t *testing.T) {
	_, ok := Resolve(nil, images.Point{X: 1, Y: 1})
	assert.False(t, ok)

	c := NewCollection()
	require.NoError(t, c.Add(ROI{Kind: KindCircle, CenterX: 0, CenterY: 0, Radius: 1}))
	_, ok = Resolve(c.Snapshot(), images.Point{X: 50, Y: 50})
	assert.False(t, ok)
}

func TestResolveNamePositionalFallback(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Add(ROI{Kind: KindCircle, CenterX: 0, CenterY: 0, Radius: 5}))

	_, name, ok := ResolveName(c.Snapshot(), images.Point{X: 0, Y: 0})
	require.True(t, ok)
	assert.Equal(t, "roi_0", name)
}

func TestCollectionRemoveKeepsOrder(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Add(ROI{Name: "a", Kind: KindCircle, CenterX: 0, CenterY: 0, Radius: 5}))
	require.NoError(t, c.Add(ROI{Name: "b", Kind: KindCircle, CenterX: 0, CenterY: 0, Radius: 6}))
	require.NoError(t, c.Add(ROI{Name: "c", Kind: KindCircle, CenterX: 0, CenterY: 0, Radius: 7}))

	c.Remove(1)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "a", c.At(0).Name)
	assert.Equal(t, "c", c.At(1).Name)

	// "c" keeps its priority over "a" after the removal.
	idx, ok := Resolve(c.Snapshot(), images.Point{X: 0, Y: 0})
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestSnapshotIsolation(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Add(ROI{Name: "a", Kind: KindCircle, CenterX: 0, CenterY: 0, Radius: 5}))

	snapshot := c.Snapshot()
	require.NoError(t, c.Add(ROI{Name: "b", Kind: KindCircle, CenterX: 0, CenterY: 0, Radius: 6}))
	c.Clear()

	// The snapshot is unaffected by later edits.
	require.Len(t, snapshot, 1)
	assert.Equal(t, "a", snapshot[0].Name)
	assert.Equal(t, 0, c.Len())
}
