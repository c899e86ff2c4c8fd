package encode

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dashprep/internal/config"
)

// digestFilename is written next to the encoded representations and records
// the parameters that produced them.
const digestFilename = "encode_params.sha256"

// Digest returns a hex digest of every parameter that affects encode output.
// Existing representation files are only reused when the digest matches, so
// a changed bitrate list or segment duration cannot silently resurrect
// stale encodes from a prior run.
func Digest(cfg *config.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "input=%s\n", cfg.InputPath)
	fmt.Fprintf(&b, "fps=%d\n", cfg.FrameRate)
	fmt.Fprintf(&b, "segment=%d\n", cfg.SegmentSeconds)
	fmt.Fprintf(&b, "preset=%s\n", cfg.EncoderPreset)
	for _, r := range cfg.SortedRates() {
		fmt.Fprintf(&b, "rate=%d\n", r)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// digestPath returns the stored digest location for a run.
func digestPath(cfg *config.Config) string {
	return filepath.Join(cfg.TmpDir(), digestFilename)
}

// StaleParams reports whether a digest from a prior run exists and differs
// from the current parameters.
func StaleParams(cfg *config.Config) (bool, error) {
	data, err := os.ReadFile(digestPath(cfg))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(data)) != Digest(cfg), nil
}

// WriteDigest records the current parameters' digest.
func WriteDigest(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.TmpDir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(digestPath(cfg), []byte(Digest(cfg)+"\n"), 0644)
}
