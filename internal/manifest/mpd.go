// Package manifest reconciles per-representation manifest fragments into
// one merged manifest.
package manifest

import "encoding/xml"

// MPD is the root element of a Media Presentation Description. Attributes
// that the merge does not touch are carried through verbatim so the merged
// document keeps whatever the segmenter declared.
type MPD struct {
	XMLName            xml.Name            `xml:"MPD"`
	Attrs              []xml.Attr          `xml:",any,attr"`
	ProgramInformation *ProgramInformation `xml:"ProgramInformation,omitempty"`
	Periods            []Period            `xml:"Period"`
}

// ProgramInformation carries the segmenter's provenance block.
type ProgramInformation struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Title string     `xml:"Title,omitempty"`
}

// Period represents a media content period.
type Period struct {
	Attrs []xml.Attr      `xml:",any,attr"`
	Sets  []AdaptationSet `xml:"AdaptationSet"`
}

// AdaptationSet groups the interchangeable representations and their
// shared segment-naming template.
type AdaptationSet struct {
	Attrs           []xml.Attr       `xml:",any,attr"`
	SegmentTemplate *SegmentTemplate `xml:"SegmentTemplate"`
	Representations []Representation `xml:"Representation"`
}

// SegmentTemplate defines the URL structure for segments.
type SegmentTemplate struct {
	Initialization string     `xml:"initialization,attr"`
	Media          string     `xml:"media,attr"`
	Attrs          []xml.Attr `xml:",any,attr"`
}

// Representation describes a specific media stream.
type Representation struct {
	ID     string     `xml:"id,attr"`
	Width  int        `xml:"width,attr"`
	Height int        `xml:"height,attr"`
	Attrs  []xml.Attr `xml:",any,attr"`
}

// adaptationSet returns the document's single adaptation set, located by
// tag rather than by position so tool-version differences in sibling
// ordering cannot misdirect the merge.
func (m *MPD) adaptationSet() *AdaptationSet {
	for pi := range m.Periods {
		if len(m.Periods[pi].Sets) > 0 {
			return &m.Periods[pi].Sets[0]
		}
	}
	return nil
}

// representations collects every representation node in the document.
func (m *MPD) representations() []*Representation {
	var reps []*Representation
	for pi := range m.Periods {
		for si := range m.Periods[pi].Sets {
			set := &m.Periods[pi].Sets[si]
			for ri := range set.Representations {
				reps = append(reps, &set.Representations[ri])
			}
		}
	}
	return reps
}
