package types

import "sort"

// TimedSegment is one time-bounded unit of transcript with its translation.
// Times are seconds from the start of the clip; intervals are half-open
// [StartTime, EndTime).
type TimedSegment struct {
	OriginalText   string  `json:"originalText"`
	TranslatedText string  `json:"translatedText"`
	StartTime      float64 `json:"startTime"`
	EndTime        float64 `json:"endTime"`
}

// Duration returns the segment length in seconds.
func (s TimedSegment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Contains reports whether t falls inside the segment's interval.
func (s TimedSegment) Contains(t float64) bool {
	return t >= s.StartTime && t < s.EndTime
}

// NormalizeSegments makes model-reported segments safe for subtitle
// selection: sorted by start time, starts clamped to zero, overlaps clamped
// so intervals stay disjoint half-open ranges, and segments left empty after
// clamping dropped. The upstream extractor is not trusted to do any of this.
func NormalizeSegments(in []TimedSegment) []TimedSegment {
	out := make([]TimedSegment, 0, len(in))
	for _, s := range in {
		if s.StartTime < 0 {
			s.StartTime = 0
		}
		if s.EndTime <= s.StartTime {
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})

	kept := out[:0]
	var prevEnd float64
	for _, s := range out {
		if s.StartTime < prevEnd {
			s.StartTime = prevEnd
		}
		if s.EndTime <= s.StartTime {
			continue
		}
		prevEnd = s.EndTime
		kept = append(kept, s)
	}
	return kept
}

// SegmentAt returns the segment containing time t, if any. Segments must be
// normalized first.
func SegmentAt(segments []TimedSegment, t float64) (TimedSegment, bool) {
	for _, s := range segments {
		if s.Contains(t) {
			return s, true
		}
	}
	return TimedSegment{}, false
}
