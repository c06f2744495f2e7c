package background

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// syntheticSource serves generated frames, one intensity per frame index.
type syntheticSource struct {
	width, height int
	intensities   []float64
	pos           int
}

func (s *syntheticSource) Read(dst *gocv.Mat) bool {
	if s.pos >= len(s.intensities) {
		return false
	}
	frame := gocv.NewMatWithSize(s.height, s.width, gocv.MatTypeCV8UC1)
	frame.SetTo(gocv.NewScalar(s.intensities[s.pos], 0, 0, 0))
	frame.CopyTo(dst)
	frame.Close()
	s.pos++
	return true
}

func (s *syntheticSource) FrameCount() int  { return len(s.intensities) }
func (s *syntheticSource) FPS() float64     { return 30 }
func (s *syntheticSource) Size() (int, int) { return s.width, s.height }
func (s *syntheticSource) Reset() error     { s.pos = 0; return nil }
func (s *syntheticSource) Close() error     { return nil }

func uniformIntensities(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestEstimateConstantVideo(t *testing.T) {
	src := &syntheticSource{width: 64, height: 48, intensities: uniformIntensities(30, 100)}

	model, err := Estimate(src, Options{SampleCount: 10})
	require.NoError(t, err)
	defer model.Close()

	assert.Equal(t, 10, model.SampleCount)
	assert.Equal(t, 48, model.Reference.Rows())
	assert.Equal(t, 64, model.Reference.Cols())
	assert.Equal(t, gocv.MatTypeCV8UC1, model.Reference.Type())
	// Averaging identical frames reproduces the frame.
	assert.Equal(t, uint8(100), model.Reference.GetUCharAt(24, 32))
}

func TestEstimateShortVideoCapsSamples(t *testing.T) {
	// 50 frames against a 200-sample request: every frame is used.
	src := &syntheticSource{width: 32, height: 32, intensities: uniformIntensities(50, 80)}

	model, err := Estimate(src, Options{SampleCount: 200})
	require.NoError(t, err)
	defer model.Close()

	assert.Equal(t, 50, model.SampleCount)
}

func TestEstimateAveragesDistinctFrames(t *testing.T) {
	// Half the frames at 50, half at 150: the mean is 100.
	intensities := append(uniformIntensities(10, 50), uniformIntensities(10, 150)...)
	src := &syntheticSource{width: 16, height: 16, intensities: intensities}

	model, err := Estimate(src, Options{SampleCount: 20})
	require.NoError(t, err)
	defer model.Close()

	assert.Equal(t, 20, model.SampleCount)
	assert.InDelta(t, 100, float64(model.Reference.GetUCharAt(8, 8)), 1)
}

func TestEstimateWindowRestriction(t *testing.T) {
	// Dark lead-in and tail, bright middle. Sampling only the middle must
	// produce a bright reference.
	intensities := uniformIntensities(40, 0)
	for i := 10; i < 30; i++ {
		intensities[i] = 200
	}
	src := &syntheticSource{width: 16, height: 16, intensities: intensities}

	model, err := Estimate(src, Options{SampleCount: 20, WindowStart: 10, WindowEnd: 30})
	require.NoError(t, err)
	defer model.Close()

	assert.Equal(t, 20, model.SampleCount)
	assert.Equal(t, uint8(200), model.Reference.GetUCharAt(8, 8))
}

func TestEstimateSamplingStep(t *testing.T) {
	// 100 frames, 10 samples: step 10 keeps the sample count at the target.
	src := &syntheticSource{width: 16, height: 16, intensities: uniformIntensities(100, 60)}

	model, err := Estimate(src, Options{SampleCount: 10})
	require.NoError(t, err)
	defer model.Close()

	assert.Equal(t, 10, model.SampleCount)
}

func TestEstimateEmptySource(t *testing.T) {
	src := &syntheticSource{width: 16, height: 16}

	model, err := Estimate(src, Options{})
	assert.Nil(t, model)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestEstimateDefaultSampleCount(t *testing.T) {
	src := &syntheticSource{width: 8, height: 8, intensities: uniformIntensities(20, 42)}

	model, err := Estimate(src, Options{SampleCount: 0})
	require.NoError(t, err)
	defer model.Close()

	// Fewer frames than DefaultSampleCount: all of them are averaged.
	assert.Equal(t, 20, model.SampleCount)
}
