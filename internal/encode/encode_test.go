package encode

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashprep/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig("clip", "input.mp4")
	cfg.VideosDir = t.TempDir()
	return cfg
}

// stubEncoder puts a fake ffmpeg on PATH that writes its argument list to
// the output file, so tests can observe which parameters an encode ran with.
func stubEncoder(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	script := "#!/bin/sh\nfor a in \"$@\"; do out=\"$a\"; done\nprintf '%s ' \"$@\" > \"$out\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ffmpeg"), []byte(script), 0755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestBuildRepSkipsExistingOutput(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.TmpDir(), 0755))
	require.NoError(t, os.WriteFile(cfg.RepPath(300), []byte("encoded"), 0644))

	res, err := BuildRep(context.Background(), cfg, 300, 60, 1440, false, nil)
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	assert.Equal(t, cfg.RepPath(300), res.Path)

	// The existing file must be reused byte-identically.
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("encoded"), data)
}

func TestBuildRepForceRebuildsExistingOutput(t *testing.T) {
	stubEncoder(t)
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.TmpDir(), 0755))
	require.NoError(t, os.WriteFile(cfg.RepPath(300), []byte("stale encode"), 0644))

	res, err := BuildRep(context.Background(), cfg, 300, 60, 1440, true, nil)
	require.NoError(t, err)

	assert.False(t, res.Skipped)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.NotEqual(t, "stale encode", string(data))
}

func TestParamChangeRebuildsBeforeDigestRefresh(t *testing.T) {
	stubEncoder(t)
	cfg := testConfig(t)
	ctx := context.Background()

	// First run: encode and record the parameters.
	res, err := BuildRep(ctx, cfg, 300, 60, 1440, false, nil)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	require.NoError(t, WriteDigest(cfg))

	// Second run with a longer segment duration. The recorded digest no
	// longer matches, and that must translate into a rebuild rather than
	// reuse of the file from the first run.
	cfg.SegmentSeconds = 10
	stale, err := StaleParams(cfg)
	require.NoError(t, err)
	require.True(t, stale)

	res, err = BuildRep(ctx, cfg, 300, 60, 1440, stale, nil)
	require.NoError(t, err)
	assert.False(t, res.Skipped)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "-g "+strconv.Itoa(cfg.GOP()))

	// Only now may the digest be refreshed; afterwards the outputs on
	// disk and the recorded parameters agree again.
	require.NoError(t, WriteDigest(cfg))
	stale, err = StaleParams(cfg)
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestDigestStableAcrossRateOrder(t *testing.T) {
	a := testConfig(t)
	a.Rates = []int{2500, 300, 600}
	b := testConfig(t)
	b.Rates = []int{300, 600, 2500}

	assert.Equal(t, Digest(a), Digest(b))
}

func TestDigestSensitiveToParams(t *testing.T) {
	base := testConfig(t)

	changed := testConfig(t)
	changed.SegmentSeconds = base.SegmentSeconds + 1
	assert.NotEqual(t, Digest(base), Digest(changed))

	changed = testConfig(t)
	changed.Rates = append(changed.Rates, 5000)
	assert.NotEqual(t, Digest(base), Digest(changed))

	changed = testConfig(t)
	changed.FrameRate = 30
	assert.NotEqual(t, Digest(base), Digest(changed))
}

func TestStaleParams(t *testing.T) {
	cfg := testConfig(t)

	// No digest recorded yet.
	stale, err := StaleParams(cfg)
	require.NoError(t, err)
	assert.False(t, stale)

	require.NoError(t, WriteDigest(cfg))
	stale, err = StaleParams(cfg)
	require.NoError(t, err)
	assert.False(t, stale)

	cfg.Rates = []int{100}
	stale, err = StaleParams(cfg)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestWriteDigestCreatesTmpDir(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, WriteDigest(cfg))

	data, err := os.ReadFile(filepath.Join(cfg.TmpDir(), digestFilename))
	require.NoError(t, err)
	assert.Equal(t, Digest(cfg)+"\n", string(data))
}
