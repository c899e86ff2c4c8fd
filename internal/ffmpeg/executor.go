package ffmpeg

import (
	"bufio"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"context"

	"dashprep/internal/errors"
	"dashprep/internal/util"
)

// Progress represents encoding progress information.
type Progress struct {
	CurrentFrame uint64
	TotalFrames  uint64
	Percent      float32
	Speed        float32
	FPS          float32
	ETA          time.Duration
	ElapsedSecs  float64
}

// ProgressCallback is called with progress updates during an invocation.
type ProgressCallback func(Progress)

var timeRegex = regexp.MustCompile(`time=(\d{2}:\d{2}:\d{2}\.?\d*)`)

// Run executes ffmpeg with the given arguments. Progress is parsed from
// stderr and reported through callback; duration and totalFrames may be
// zero when unknown. A non-zero exit is returned as a command error
// carrying the captured stderr.
func Run(ctx context.Context, args []string, duration float64, totalFrames uint64, callback ProgressCallback) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.NewCommandStartError("ffmpeg", err)
	}

	if err := cmd.Start(); err != nil {
		return errors.NewCommandStartError("ffmpeg", err)
	}

	var stderrBuilder strings.Builder
	parseProgress(stderr, &stderrBuilder, duration, totalFrames, callback)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return errors.NewCancelledError()
		}
		return errors.WrapExecError("ffmpeg "+strings.Join(args, " "), err, tailOf(stderrBuilder.String()))
	}

	return nil
}

// tailOf trims captured stderr to its last few lines; ffmpeg's banner and
// stream mapping are noise when reporting a failure.
func tailOf(stderr string) string {
	const maxLines = 8
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}

// parseProgress reads FFmpeg stderr and parses progress updates.
// Progress lines are terminated with \r, so reading is byte-wise.
func parseProgress(stderr io.Reader, stderrBuilder *strings.Builder, duration float64, totalFrames uint64, callback ProgressCallback) {
	reader := bufio.NewReader(stderr)
	var lineBuf strings.Builder

	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}

		stderrBuilder.WriteByte(b)

		if b == '\r' || b == '\n' {
			line := lineBuf.String()
			lineBuf.Reset()

			if callback != nil && strings.Contains(line, "frame=") {
				if progress := parseProgressLine(line, duration, totalFrames); progress != nil {
					callback(*progress)
				}
			}
		} else {
			lineBuf.WriteByte(b)
		}
	}
}

// parseProgressLine extracts progress information from an FFmpeg progress line.
func parseProgressLine(line string, duration float64, totalFrames uint64) *Progress {
	var elapsedSecs float64
	if matches := timeRegex.FindStringSubmatch(line); len(matches) >= 2 {
		if secs, ok := util.ParseFFmpegTime(matches[1]); ok {
			elapsedSecs = secs
		}
	}

	frame, _ := strconv.ParseUint(fieldAfter(line, "frame="), 10, 64)
	fps, _ := strconv.ParseFloat(fieldAfter(line, "fps="), 32)
	speedStr := strings.TrimSuffix(fieldAfter(line, "speed="), "x")
	speed, _ := strconv.ParseFloat(speedStr, 32)

	var percent float32
	if duration > 0 {
		percent = float32((elapsedSecs / duration) * 100)
		if percent > 100 {
			percent = 100
		}
	}

	var eta time.Duration
	if speed > 0 && duration > 0 {
		remaining := duration - elapsedSecs
		eta = time.Duration(remaining/speed) * time.Second
	}

	return &Progress{
		CurrentFrame: frame,
		TotalFrames:  totalFrames,
		Percent:      percent,
		Speed:        float32(speed),
		FPS:          float32(fps),
		ETA:          eta,
		ElapsedSecs:  elapsedSecs,
	}
}

// fieldAfter returns the whitespace-delimited token following key in line,
// or "" when key is absent. ffmpeg pads some values with spaces after the
// '=' sign.
func fieldAfter(line, key string) string {
	idx := strings.Index(line, key)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeft(line[idx+len(key):], " ")
	if end := strings.IndexAny(rest, " \t\r\n"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
