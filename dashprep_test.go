package dashprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	prep, err := New("clip", "input.mp4")
	require.NoError(t, err)

	assert.Equal(t, []int{300, 600, 1200, 2500}, prep.config.Rates)
	assert.Equal(t, 5, prep.config.SegmentSeconds)
	assert.Equal(t, 24, prep.config.FrameRate)
	assert.False(t, prep.config.EnableVMAF)
}

func TestNewAppliesOptions(t *testing.T) {
	prep, err := New("clip", "input.mp4",
		WithRates([]int{500, 1000}),
		WithSegmentSeconds(4),
		WithFrameRate(30),
		WithEncoderPreset("fast"),
		WithVMAF(),
		WithVMAFTools("/opt/vmaf/bin", "/opt/vmaf/model.json"),
		WithWorkers(2),
		WithVideosDir("/data/videos"),
	)
	require.NoError(t, err)

	assert.Equal(t, []int{500, 1000}, prep.config.Rates)
	assert.Equal(t, 4, prep.config.SegmentSeconds)
	assert.Equal(t, 30, prep.config.FrameRate)
	assert.Equal(t, "fast", prep.config.EncoderPreset)
	assert.True(t, prep.config.EnableVMAF)
	assert.Equal(t, "/opt/vmaf/bin", prep.config.VMAFBin)
	assert.Equal(t, "/opt/vmaf/model.json", prep.config.VMAFModel)
	assert.Equal(t, 2, prep.config.Workers)
	assert.Equal(t, "/data/videos", prep.config.VideosDir)
}

func TestNewLadder(t *testing.T) {
	prep, err := New("clip", "input.mp4", WithLadder(LadderMobile))
	require.NoError(t, err)
	assert.Equal(t, []int{150, 300, 600}, prep.config.Rates)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New("clip", "input.mp4", WithRates(nil))
	assert.Error(t, err)

	_, err = New("clip", "input.mp4", WithRates([]int{300, 300}))
	assert.Error(t, err)

	_, err = New("clip", "input.mp4", WithSegmentSeconds(0))
	assert.Error(t, err)

	_, err = New("", "input.mp4")
	assert.Error(t, err)
}

func TestParseLadder(t *testing.T) {
	l, err := ParseLadder("WEB")
	require.NoError(t, err)
	assert.Equal(t, LadderWeb, l)

	_, err = ParseLadder("4k")
	assert.Error(t, err)
}

func TestWithRatesCopiesSlice(t *testing.T) {
	rates := []int{300, 600}
	prep, err := New("clip", "input.mp4", WithRates(rates))
	require.NoError(t, err)

	rates[0] = 999
	assert.Equal(t, []int{300, 600}, prep.config.Rates)
}
