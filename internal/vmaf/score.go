package vmaf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"dashprep/internal/errors"
)

// The quality tool's report schema is not contractually stable. Extraction
// runs an ordered list of named strategies, each matching one known report
// shape; a new schema is supported by adding one more strategy.
type strategy struct {
	name    string
	extract func(top map[string]json.RawMessage, raw []byte) (float64, bool)
}

var strategies = []strategy{
	{"aggregate", fromAggregate},
	{"pooled-metrics", fromPooledMetrics},
	{"metrics-mean", fromMetricsMean},
	{"deep-walk", fromDeepWalk},
}

// ExtractScore pulls a single scalar score out of a quality report,
// tolerating the schema variants the tool is known to emit. When no
// strategy matches, the error names the top-level keys actually present
// so a new report format can be diagnosed.
func ExtractScore(raw []byte) (float64, error) {
	top, _ := topObject(raw)
	for _, s := range strategies {
		if v, ok := s.extract(top, raw); ok {
			return v, nil
		}
	}
	return 0, errors.NewScoreSchemaError("no score found in quality report, " + describeShape(top, raw))
}

func topObject(raw []byte) (map[string]json.RawMessage, bool) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, false
	}
	return top, true
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if raw == nil {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func asNumber(raw json.RawMessage) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// fromAggregate matches {"aggregate": {"VMAF_score": ...}} and the older
// {"aggregate": {"VMAF": ...}} spelling.
func fromAggregate(top map[string]json.RawMessage, _ []byte) (float64, bool) {
	agg, ok := asObject(top["aggregate"])
	if !ok {
		return 0, false
	}
	for _, key := range []string{"VMAF_score", "VMAF"} {
		if v, ok := asNumber(agg[key]); ok {
			return v, true
		}
	}
	return 0, false
}

// fromPooledMetrics matches {"pooled_metrics": {"vmaf": {...}}}, preferring
// mean, then harmonic mean, min, max.
func fromPooledMetrics(top map[string]json.RawMessage, _ []byte) (float64, bool) {
	pm, ok := asObject(top["pooled_metrics"])
	if !ok {
		return 0, false
	}
	pooled, ok := asObject(pm["vmaf"])
	if !ok {
		return 0, false
	}
	for _, key := range []string{"mean", "harmonic_mean", "min", "max"} {
		if v, ok := asNumber(pooled[key]); ok {
			return v, true
		}
	}
	return 0, false
}

// fromMetricsMean matches {"metrics": {"vmaf": {"mean": ...}}}.
func fromMetricsMean(top map[string]json.RawMessage, _ []byte) (float64, bool) {
	metrics, ok := asObject(top["metrics"])
	if !ok {
		return 0, false
	}
	vm, ok := asObject(metrics["vmaf"])
	if !ok {
		return 0, false
	}
	return asNumber(vm["mean"])
}

// fromDeepWalk is the last resort: a depth-first walk over the whole
// report in document order, returning the first numeric value keyed by a
// known score-key spelling.
func fromDeepWalk(_ map[string]json.RawMessage, raw []byte) (float64, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return 0, false
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return 0, false
	}
	return walkContainer(dec, delim)
}

func isScoreKey(key string) bool {
	switch strings.ToLower(key) {
	case "vmaf_score", "vmaf":
		return true
	}
	return false
}

// walkContainer scans a container whose opening delimiter has already been
// consumed. Matching keys with numeric values win immediately; container
// values are descended into in order.
func walkContainer(dec *json.Decoder, open json.Delim) (float64, bool) {
	inObject := open == '{'
	for dec.More() {
		var key string
		if inObject {
			keyTok, err := dec.Token()
			if err != nil {
				return 0, false
			}
			key, _ = keyTok.(string)
		}

		valTok, err := dec.Token()
		if err != nil {
			return 0, false
		}
		switch v := valTok.(type) {
		case json.Number:
			if inObject && isScoreKey(key) {
				f, err := v.Float64()
				if err == nil {
					return f, true
				}
			}
		case json.Delim:
			if score, ok := walkContainer(dec, v); ok {
				return score, true
			}
		}
	}

	// Closing delimiter.
	if _, err := dec.Token(); err != nil {
		return 0, false
	}
	return 0, false
}

// describeShape summarizes a report that matched no strategy.
func describeShape(top map[string]json.RawMessage, raw []byte) string {
	if top == nil {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return "report is not valid JSON"
		}
		return fmt.Sprintf("report is %T, not an object", v)
	}
	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "top-level keys: [" + strings.Join(keys, ", ") + "]"
}
