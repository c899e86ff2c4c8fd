package manifest

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashprep/internal/config"
	"dashprep/internal/errors"
	"dashprep/internal/segment"
)

func fragmentXML(rate, width, height int) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" minBufferTime="PT1.5S" type="static" mediaPresentationDuration="PT0H1M0.0S" maxSegmentDuration="PT0H0M5.0S" profiles="urn:mpeg:dash:profile:isoff-live:2011">
 <ProgramInformation moreInformationURL="http://gpac.io">
  <Title>rep_%d.mp4</Title>
 </ProgramInformation>
 <Period duration="PT0H1M0.0S">
  <AdaptationSet segmentAlignment="true" maxWidth="%d" maxHeight="%d" maxFrameRate="24" par="16:9">
   <SegmentTemplate media="rep_%d_dash$Number$.m4s" timescale="12288" startNumber="1" duration="61440" initialization="init.mp4"/>
   <Representation id="1" mimeType="video/mp4" codecs="avc1.64001f" width="%d" height="%d" frameRate="24" sar="1:1" startWithSAP="1" bandwidth="%d">
    <Initialization sourceURL="init.mp4"/>
   </Representation>
  </AdaptationSet>
 </Period>
</MPD>
`, rate, width, height, rate, width, height, rate*1000)
}

func writeFragments(t *testing.T, cfg *config.Config, dims map[int][2]int) {
	t.Helper()
	for rate, wh := range dims {
		dir := cfg.SegmentDir(rate)
		require.NoError(t, os.MkdirAll(dir, 0755))
		frag := fragmentXML(rate, wh[0], wh[1])
		require.NoError(t, os.WriteFile(filepath.Join(dir, segment.FragmentName), []byte(frag), 0644))
	}
}

func testConfig(t *testing.T, rates []int) *config.Config {
	t.Helper()
	cfg := config.NewConfig("clip", "input.mp4")
	cfg.VideosDir = t.TempDir()
	cfg.Rates = rates
	return cfg
}

func TestMerge(t *testing.T) {
	cfg := testConfig(t, []int{300, 600})
	writeFragments(t, cfg, map[int][2]int{
		300: {640, 360},
		600: {1280, 720},
	})

	res, err := Merge(cfg)
	require.NoError(t, err)

	assert.Equal(t, Resolution{Width: 640, Height: 360}, res[300])
	assert.Equal(t, Resolution{Width: 1280, Height: 720}, res[600])

	data, err := os.ReadFile(cfg.ManifestPath())
	require.NoError(t, err)

	var merged MPD
	require.NoError(t, xml.Unmarshal(data, &merged))

	reps := merged.representations()
	require.Len(t, reps, 2)
	assert.Equal(t, "video0", reps[0].ID)
	assert.Equal(t, 640, reps[0].Width)
	assert.Equal(t, "video1", reps[1].ID)
	assert.Equal(t, 1280, reps[1].Width)

	set := merged.adaptationSet()
	require.NotNil(t, set)
	require.NotNil(t, set.SegmentTemplate)
	assert.Equal(t, "$RepresentationID$/init.mp4", set.SegmentTemplate.Initialization)
	assert.Equal(t, "$RepresentationID$/$Number$.m4s", set.SegmentTemplate.Media)
}

func TestMergeIdentifiersIndependentOfRequestOrder(t *testing.T) {
	dims := map[int][2]int{
		300:  {640, 360},
		600:  {1280, 720},
		1200: {1920, 1080},
	}

	var ids [][]string
	for _, rates := range [][]int{{1200, 300, 600}, {300, 600, 1200}} {
		cfg := testConfig(t, rates)
		writeFragments(t, cfg, dims)

		_, err := Merge(cfg)
		require.NoError(t, err)

		data, err := os.ReadFile(cfg.ManifestPath())
		require.NoError(t, err)
		var merged MPD
		require.NoError(t, xml.Unmarshal(data, &merged))

		var got []string
		for _, rep := range merged.representations() {
			got = append(got, rep.ID)
		}
		ids = append(ids, got)
	}

	assert.Equal(t, []string{"video0", "video1", "video2"}, ids[0])
	assert.Equal(t, ids[0], ids[1])
}

func TestMergeStripsInitializationLines(t *testing.T) {
	cfg := testConfig(t, []int{300})
	writeFragments(t, cfg, map[int][2]int{300: {640, 360}})

	_, err := Merge(cfg)
	require.NoError(t, err)

	frag, err := os.ReadFile(filepath.Join(cfg.SegmentDir(300), segment.FragmentName))
	require.NoError(t, err)
	assert.NotContains(t, string(frag), "Initialization")

	merged, err := os.ReadFile(cfg.ManifestPath())
	require.NoError(t, err)
	assert.NotContains(t, string(merged), "sourceURL")
}

func TestMergeOverwritesPreviousManifest(t *testing.T) {
	cfg := testConfig(t, []int{300})
	writeFragments(t, cfg, map[int][2]int{300: {640, 360}})
	require.NoError(t, os.WriteFile(cfg.ManifestPath(), []byte("stale"), 0644))

	_, err := Merge(cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.ManifestPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "<MPD")
	assert.NotContains(t, string(data), "stale")
}

func TestMergeMissingRepresentation(t *testing.T) {
	cfg := testConfig(t, []int{300})
	dir := cfg.SegmentDir(300)
	require.NoError(t, os.MkdirAll(dir, 0755))
	frag := `<?xml version="1.0"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" type="static">
 <Period>
  <AdaptationSet segmentAlignment="true">
   <SegmentTemplate media="$Number$.m4s" initialization="init.mp4"/>
  </AdaptationSet>
 </Period>
</MPD>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, segment.FragmentName), []byte(frag), 0644))

	_, err := Merge(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindManifest))
	assert.Contains(t, err.Error(), "no Representation")
}

func TestMergeMissingFragment(t *testing.T) {
	cfg := testConfig(t, []int{300})
	require.NoError(t, os.MkdirAll(cfg.TracksDir(), 0755))

	_, err := Merge(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindManifest))
}

func TestMergeMissingDimensions(t *testing.T) {
	cfg := testConfig(t, []int{300})
	writeFragments(t, cfg, map[int][2]int{300: {0, 0}})

	_, err := Merge(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame dimensions")
}
