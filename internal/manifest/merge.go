package manifest

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dashprep/internal/config"
	"dashprep/internal/errors"
	"dashprep/internal/logging"
	"dashprep/internal/segment"
)

// Resolution holds a representation's frame dimensions as declared by its
// manifest fragment.
type Resolution struct {
	Width  int
	Height int
}

const (
	initTemplate  = "$RepresentationID$/init.mp4"
	mediaTemplate = "$RepresentationID$/$Number$.m4s"
)

// Merge reconciles every representation's manifest fragment into a single
// manifest at cfg.ManifestPath and returns each representation's frame
// dimensions.
//
// Representation identifiers are assigned by rank: video0 is the lowest
// bitrate, videoN-1 the highest, regardless of the order rates were
// requested in. The merged document lists representations in that same
// rank order.
func Merge(cfg *config.Config) (map[int]Resolution, error) {
	var base *MPD
	resolutions := make(map[int]Resolution, len(cfg.Rates))

	for rank, rate := range cfg.SortedRates() {
		fragPath := filepath.Join(cfg.SegmentDir(rate), segment.FragmentName)

		doc, err := loadFragment(fragPath)
		if err != nil {
			return nil, err
		}

		rep, err := singleRepresentation(doc, fragPath)
		if err != nil {
			return nil, err
		}
		if rep.Width <= 0 || rep.Height <= 0 {
			return nil, errors.NewManifestError(
				fmt.Sprintf("representation in %s declares no frame dimensions", fragPath), nil)
		}

		rep.ID = fmt.Sprintf("video%d", rank)
		resolutions[rate] = Resolution{Width: rep.Width, Height: rep.Height}

		if base == nil {
			base = doc
			set := base.adaptationSet()
			if set == nil || set.SegmentTemplate == nil {
				return nil, errors.NewManifestError(
					fmt.Sprintf("fragment %s has no segment template to rewrite", fragPath), nil)
			}
			set.SegmentTemplate.Initialization = initTemplate
			set.SegmentTemplate.Media = mediaTemplate
			set.Representations = []Representation{*rep}
		} else {
			set := base.adaptationSet()
			set.Representations = append(set.Representations, *rep)
		}
	}

	if base == nil {
		return nil, errors.NewManifestError("no representations to merge", nil)
	}

	if err := writeManifest(base, cfg.ManifestPath()); err != nil {
		return nil, err
	}
	logging.Info("merged manifest written", "path", cfg.ManifestPath(), "representations", len(resolutions))

	return resolutions, nil
}

// loadFragment reads one manifest fragment, first stripping every line
// that carries a per-chunk initialization reference. Those references
// become dead weight once the shared template points at the
// representation-relative init file.
func loadFragment(path string) (*MPD, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewManifestError("cannot read manifest fragment "+path, err)
	}

	stripped := stripInitializationLines(string(data))
	if stripped != string(data) {
		if err := os.WriteFile(path, []byte(stripped), 0644); err != nil {
			return nil, errors.NewManifestError("cannot rewrite manifest fragment "+path, err)
		}
	}

	var doc MPD
	if err := xml.Unmarshal([]byte(stripped), &doc); err != nil {
		return nil, errors.NewManifestError("cannot parse manifest fragment "+path, err)
	}
	return &doc, nil
}

// stripInitializationLines drops lines containing an Initialization
// element reference.
func stripInitializationLines(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.Contains(line, "Initialization") {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// singleRepresentation returns the fragment's one representation node.
// Zero or multiple nodes mean the fragment is not the single-stream
// document the segmenter is expected to produce.
func singleRepresentation(doc *MPD, path string) (*Representation, error) {
	reps := doc.representations()
	switch len(reps) {
	case 1:
		return reps[0], nil
	case 0:
		return nil, errors.NewManifestError("no Representation in "+path, nil)
	default:
		return nil, errors.NewManifestError(
			fmt.Sprintf("expected one Representation in %s, found %d", path, len(reps)), nil)
	}
}

// writeManifest serializes the merged document, replacing any previous
// manifest at the target path.
func writeManifest(doc *MPD, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.NewIOError("cannot remove previous manifest "+path, err)
	}

	// The decoder records the default namespace both in XMLName and as a
	// literal xmlns attribute; drop the literal one or the root element
	// declares it twice.
	kept := doc.Attrs[:0]
	for _, a := range doc.Attrs {
		if a.Name.Space == "" && a.Name.Local == "xmlns" {
			continue
		}
		kept = append(kept, a)
	}
	doc.Attrs = kept

	out, err := xml.MarshalIndent(doc, "", " ")
	if err != nil {
		return errors.NewManifestError("cannot serialize merged manifest", err)
	}

	if err := os.WriteFile(path, []byte(xml.Header+string(out)+"\n"), 0644); err != nil {
		return errors.NewIOError("cannot write merged manifest "+path, err)
	}
	return nil
}
