// Package feedback reshapes the workflow engine's interview feedback into a
// single chart-friendly form. The producer has shipped several payload
// shapes over time (bare objects, single-element arrays, double-encoded
// JSON, scores on 0-5, 0-10 or 0-100 scales); this package absorbs all of
// them without ever failing.
package feedback

import (
	"encoding/json"
	"math"
)

type Dimension struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Report is the uniform display shape: every dimension score on a 0-100
// scale plus one aggregate score.
type Report struct {
	Overall    float64     `json:"overall"`
	Dimensions []Dimension `json:"dimensions"`
	Summary    string      `json:"summary,omitempty"`
}

// unwrap layers we tolerate: array -> first element, JSON-encoded string ->
// parsed value, payload nested under a "feedback" key. Bounded so a
// pathological self-referencing payload cannot loop.
const maxUnwrapDepth = 8

// Normalize converts a raw feedback blob into a Report. ok is false when
// the payload holds neither an overall score nor any dimension scores; the
// function never panics and never returns an error for malformed input.
func Normalize(raw []byte) (Report, bool) {
	if len(raw) == 0 {
		return Report{}, false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Report{}, false
	}

	obj, ok := unwrap(v)
	if !ok {
		return Report{}, false
	}

	dims := extractDimensions(obj)
	overall, hasOverall := extractNumber(obj, "overall_score", "overall")

	if !hasOverall && len(dims) == 0 {
		return Report{}, false
	}

	rescale(dims)

	rep := Report{Dimensions: dims}
	for _, key := range []string{"overall_feedback", "summary"} {
		if s, ok := obj[key].(string); ok && s != "" {
			rep.Summary = s
			break
		}
	}

	switch {
	case hasOverall:
		// Explicit score wins over anything computed from dimensions.
		rep.Overall = overall
	case len(dims) > 0:
		sum := 0.0
		for _, d := range dims {
			sum += d.Score
		}
		rep.Overall = math.Round(sum / float64(len(dims)))
	}
	return rep, true
}

func unwrap(v any) (map[string]any, bool) {
	for i := 0; i < maxUnwrapDepth; i++ {
		switch t := v.(type) {
		case []any:
			if len(t) == 0 {
				return nil, false
			}
			v = t[0]
		case string:
			var inner any
			if err := json.Unmarshal([]byte(t), &inner); err != nil {
				return nil, false
			}
			v = inner
		case map[string]any:
			// Some payload versions nest the real object under "feedback".
			// Only descend when the wrapper itself carries no scores.
			if inner, ok := t["feedback"]; ok && !hasScores(t) {
				v = inner
				continue
			}
			return t, true
		default:
			return nil, false
		}
	}
	return nil, false
}

func hasScores(m map[string]any) bool {
	if _, _, ok := dimensionList(m); ok {
		return true
	}
	_, ok := extractNumber(m, "overall_score", "overall")
	return ok
}

func dimensionList(m map[string]any) ([]any, string, bool) {
	for _, key := range []string{"dimension_scores", "metrics"} {
		if list, ok := m[key].([]any); ok && len(list) > 0 {
			return list, key, true
		}
	}
	return nil, "", false
}

func extractDimensions(m map[string]any) []Dimension {
	list, _, ok := dimensionList(m)
	if !ok {
		return nil
	}

	dims := make([]Dimension, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		score, ok := extractNumber(entry, "score", "value")
		if !ok {
			continue
		}
		label := ""
		for _, key := range []string{"dimension", "label", "name", "id"} {
			if s, ok := entry[key].(string); ok && s != "" {
				label = s
				break
			}
		}
		dims = append(dims, Dimension{Label: label, Score: score})
	}
	return dims
}

// rescale maps every score to a 0-100 range, inferring the input scale from
// the maximum observed value: <=5 means a 0-5 scale, <=10 a 0-10 scale,
// anything larger is taken as already 0-100.
func rescale(dims []Dimension) {
	if len(dims) == 0 {
		return
	}
	max := dims[0].Score
	for _, d := range dims[1:] {
		if d.Score > max {
			max = d.Score
		}
	}

	factor := 1.0
	switch {
	case max <= 5:
		factor = 20
	case max <= 10:
		factor = 10
	}

	for i := range dims {
		dims[i].Score = clamp(dims[i].Score*factor, 0, 100)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func extractNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if f, ok := m[key].(float64); ok {
			return f, true
		}
	}
	return 0, false
}
