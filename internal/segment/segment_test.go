package segment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountChunks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1.m4s", "2.m4s", "3.m4s", "10.m4s", "init.mp4", "intermediate_dash.mpd"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	// Subdirectories and non-numeric names must not count.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "4.m4s.d"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seg_5.m4s"), nil, 0644))

	count, err := countChunks(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestCountChunksEmpty(t *testing.T) {
	count, err := countChunks(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRelocateOutputs(t *testing.T) {
	scratch := t.TempDir()
	segDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(scratch, "rep_600_dash.mpd"), []byte("<MPD/>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(scratch, "init.mp4"), []byte("init"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(scratch, "1.m4s"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(scratch, "2.m4s"), []byte("b"), 0644))

	require.NoError(t, relocateOutputs(scratch, segDir))

	for _, name := range []string{FragmentName, InitName, "1.m4s", "2.m4s"} {
		assert.FileExists(t, filepath.Join(segDir, name))
	}

	// Scratch must be emptied by the move.
	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRelocateOutputsMissingFragment(t *testing.T) {
	scratch := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(scratch, "init.mp4"), nil, 0644))

	err := relocateOutputs(scratch, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest fragment")
}

func TestRelocateOutputsMissingInit(t *testing.T) {
	scratch := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(scratch, "rep_300_dash.mpd"), nil, 0644))

	err := relocateOutputs(scratch, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialization")
}

func TestRelocateOutputsNoChunks(t *testing.T) {
	scratch := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(scratch, "rep_300_dash.mpd"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(scratch, "init.mp4"), nil, 0644))

	err := relocateOutputs(scratch, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chunks")
}

func TestDurations(t *testing.T) {
	boundaries := []Boundary{
		{Number: 1, StartTime: 0},
		{Number: 2, StartTime: 5},
		{Number: 3, StartTime: 10},
	}

	durations := Durations(boundaries, 12.5)
	require.Len(t, durations, 3)
	assert.InDelta(t, 5, durations[0], 1e-9)
	assert.InDelta(t, 5, durations[1], 1e-9)
	assert.InDelta(t, 2.5, durations[2], 1e-9)
}

func TestDurationsFallbackApproximation(t *testing.T) {
	boundaries := []Boundary{
		{Number: 1, StartTime: 0},
		{Number: 2, StartTime: 5},
		{Number: 3, StartTime: 10},
	}

	// Total duration unknown: last segment borrows the penultimate length.
	durations := Durations(boundaries, 0)
	require.Len(t, durations, 3)
	assert.InDelta(t, 5, durations[2], 1e-9)
}

func TestDurationsEmpty(t *testing.T) {
	assert.Nil(t, Durations(nil, 60))
}

func TestDurationsSingle(t *testing.T) {
	durations := Durations([]Boundary{{Number: 1, StartTime: 0}}, 4.2)
	require.Len(t, durations, 1)
	assert.InDelta(t, 4.2, durations[0], 1e-9)
}
