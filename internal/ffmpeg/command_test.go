package ffmpeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRepArgs(t *testing.T) {
	args := BuildRepArgs(&RepParams{
		InputPath:  "input.mp4",
		OutputPath: "videos/bbb/tmp/rep_300.mp4",
		RateKbps:   300,
		FrameRate:  24,
		GOP:        120,
		Preset:     "slow",
	})

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-g 120")
	assert.Contains(t, joined, "-keyint_min 120")
	assert.Contains(t, joined, "-sc_threshold 0")
	assert.Contains(t, joined, "-b:v 300k")
	assert.Contains(t, joined, "-maxrate 600k")
	assert.Contains(t, joined, "-bufsize 1200k")
	assert.Contains(t, joined, "-an")
	assert.Equal(t, "videos/bbb/tmp/rep_300.mp4", args[len(args)-1])
}

func TestBuildRepArgsGOPMatchesSegmentBoundary(t *testing.T) {
	// 24 fps x 5 s segments means a keyframe every 120 frames.
	args := BuildRepArgs(&RepParams{
		InputPath:  "in.mp4",
		OutputPath: "out.mp4",
		RateKbps:   600,
		FrameRate:  24,
		GOP:        24 * 5,
		Preset:     "slow",
	})

	var gop, keyintMin string
	for i, a := range args {
		switch a {
		case "-g":
			gop = args[i+1]
		case "-keyint_min":
			keyintMin = args[i+1]
		}
	}
	assert.Equal(t, "120", gop)
	assert.Equal(t, gop, keyintMin, "minimum keyframe interval must equal the GOP")
}

func TestBuildRawArgs(t *testing.T) {
	args := BuildRawArgs(&RawParams{
		InputPath:  "rep_600.mp4",
		OutputPath: "yuv/video_600.yuv",
		Width:      1280,
		Height:     720,
	})

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-pix_fmt yuv420p")
	assert.Contains(t, joined, "-vf scale=1280:720")
	assert.Contains(t, joined, "-vsync 0")
	assert.Equal(t, "yuv/video_600.yuv", args[len(args)-1])
}

func TestBuildCutArgs(t *testing.T) {
	args := BuildCutArgs(&CutParams{
		InputPath:  "yuv/video_300.yuv",
		OutputPath: "cut1.yuv",
		Width:      1280,
		Height:     720,
		FrameRate:  10,
		Start:      5,
		Duration:   4.96,
	})

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-s:v 1280x720")
	assert.Contains(t, joined, "-r 10")
	assert.Contains(t, joined, "-ss 5")
	assert.Contains(t, joined, "-t 4.96")

	// Raw input carries no header: size and rate must precede -i.
	sIdx := indexOf(t, args, "-s:v")
	iIdx := indexOf(t, args, "-i")
	assert.Less(t, sIdx, iIdx)
}

func indexOf(t *testing.T, args []string, flag string) int {
	t.Helper()
	for i, a := range args {
		if a == flag {
			return i
		}
	}
	require.Failf(t, "flag not found", "%s not in %v", flag, args)
	return -1
}

func TestParseProgressLine(t *testing.T) {
	line := "frame=  240 fps= 48 q=28.0 size=    1024KiB time=00:00:10.00 bitrate= 838.9kbits/s speed=2.01x"

	p := parseProgressLine(line, 60, 1440)
	require.NotNil(t, p)

	assert.Equal(t, uint64(240), p.CurrentFrame)
	assert.InDelta(t, 48, p.FPS, 0.01)
	assert.InDelta(t, 2.01, p.Speed, 0.01)
	assert.InDelta(t, 16.66, p.Percent, 0.1)
	assert.InDelta(t, 10.0, p.ElapsedSecs, 1e-9)
}

func TestParseProgressLinePercentClamped(t *testing.T) {
	line := "frame= 2000 fps= 50 time=00:02:00.00 speed=1.0x"

	p := parseProgressLine(line, 60, 1440)
	require.NotNil(t, p)
	assert.Equal(t, float32(100), p.Percent)
}

func TestFieldAfter(t *testing.T) {
	tests := []struct {
		line string
		key  string
		want string
	}{
		{"frame=  240 fps= 48", "frame=", "240"},
		{"frame=  240 fps= 48", "fps=", "48"},
		{"speed=2.01x", "speed=", "2.01x"},
		{"no such field", "frame=", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fieldAfter(tt.line, tt.key), "key %s", tt.key)
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "5", formatSeconds(5))
	assert.Equal(t, "4.96", formatSeconds(4.96))
}
