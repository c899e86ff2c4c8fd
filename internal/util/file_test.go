package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecreateDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tracks", "video_300")
	require.NoError(t, EnsureDirectory(dir))
	stale := filepath.Join(dir, "1.m4s")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	require.NoError(t, RecreateDirectory(dir))

	assert.True(t, DirectoryExists(dir))
	assert.False(t, FileExists(stale))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rep_300.mp4")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "rep_600.mp4")))
	assert.False(t, FileExists(dir), "directories are not files")
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scratch", "init.mp4")
	dst := filepath.Join(dir, "init.mp4")
	require.NoError(t, EnsureDirectory(filepath.Dir(src)))
	require.NoError(t, os.WriteFile(src, []byte("isom"), 0644))

	require.NoError(t, MoveFile(src, dst))

	assert.False(t, FileExists(src))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("isom"), data)
}

func TestGlobOne(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rep_dash.mpd"), []byte("<MPD/>"), 0644))

	match, err := GlobOne(filepath.Join(dir, "*_dash.mpd"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rep_dash.mpd"), match)

	none, err := GlobOne(filepath.Join(dir, "*.m4s"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetFileStem(t *testing.T) {
	assert.Equal(t, "rep_300", GetFileStem("/videos/bbb/tmp/rep_300.mp4"))
	assert.Equal(t, "manifest", GetFileStem("manifest.mpd"))
}
