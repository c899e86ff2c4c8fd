package vmaf

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashprep/internal/config"
	"dashprep/internal/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig("clip", "input.mp4")
	cfg.VideosDir = t.TempDir()
	cfg.Rates = []int{300, 600}
	require.NoError(t, os.MkdirAll(cfg.VideoDir(), 0755))
	return cfg
}

func TestEvaluateSkipsWhenRecordExists(t *testing.T) {
	cfg := testConfig(t)
	existing := []byte(`{"300": {"1": {"start_time": 0, "vmaf": 95.0}}}`)
	require.NoError(t, os.WriteFile(cfg.VMAFPath(), existing, 0644))

	// No tool binaries exist in this environment; reaching past the skip
	// would fail on the prerequisite check.
	err := Evaluate(context.Background(), cfg, Inputs{})
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.VMAFPath())
	require.NoError(t, err)
	assert.Equal(t, existing, data)
}

func TestEvaluateMissingBinary(t *testing.T) {
	cfg := testConfig(t)
	cfg.VMAFBin = filepath.Join(t.TempDir(), "missing-vmafossexec")

	err := Evaluate(context.Background(), cfg, Inputs{})
	require.Error(t, err)
	assert.True(t, errors.IsMissingPrereq(err))
	assert.Contains(t, err.Error(), cfg.VMAFBin)
}

func TestEvaluateMissingModel(t *testing.T) {
	cfg := testConfig(t)
	binDir := t.TempDir()
	cfg.VMAFBin = filepath.Join(binDir, "vmafossexec")
	require.NoError(t, os.WriteFile(cfg.VMAFBin, []byte("#!/bin/sh\n"), 0755))
	cfg.VMAFModel = filepath.Join(binDir, "missing_model.json")

	err := Evaluate(context.Background(), cfg, Inputs{})
	require.Error(t, err)
	assert.True(t, errors.IsMissingPrereq(err))
	assert.Contains(t, err.Error(), "model")
}

func TestWriteReportShape(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vmaf.json")

	report := Report{
		300: {1: {StartTime: 0, VMAF: 88.5}, 2: {StartTime: 5, VMAF: 90.0}},
		600: {1: {StartTime: 0, VMAF: 95.1}},
	}
	require.NoError(t, writeReport(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]map[string]map[string]float64
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 88.5, decoded["300"]["1"]["vmaf"])
	assert.Equal(t, 5.0, decoded["300"]["2"]["start_time"])
	assert.Equal(t, 95.1, decoded["600"]["1"]["vmaf"])
}
