package history

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Progress thresholds on mean confidence.
const (
	excellentThreshold = 0.8
	goodThreshold      = 0.6
)

// LabelCount is one histogram bucket.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Total is the number of stored records.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// MeanConfidence is the arithmetic mean over all records, 0 when empty.
func (s *Store) MeanConfidence() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return meanConfidence(s.records)
}

func meanConfidence(records []Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Confidence
	}
	return sum / float64(len(records))
}

// PercentageForLabel is the share of records with exactly this label, in
// percent. Empty history yields 0.
func (s *Store) PercentageForLabel(label string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return 0
	}
	n := 0
	for _, r := range s.records {
		if r.Label == label {
			n++
		}
	}
	return float64(n) / float64(len(s.records)) * 100
}

// LabelHistogram counts records per label. Iteration order is by descending
// count, ties broken by label.
func (s *Store) LabelHistogram() *orderedmap.OrderedMap[string, int] {
	s.mu.RLock()
	buckets := countLabels(s.records)
	s.mu.RUnlock()

	hist := orderedmap.New[string, int]()
	for _, b := range buckets {
		hist.Set(b.Label, b.Count)
	}
	return hist
}

// TopLabels returns up to n most common labels.
func (s *Store) TopLabels(n int) []LabelCount {
	s.mu.RLock()
	buckets := countLabels(s.records)
	s.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n < len(buckets) {
		buckets = buckets[:n]
	}
	return buckets
}

// TopLabel returns the most common label, or "" when empty.
func (s *Store) TopLabel() string {
	top := s.TopLabels(1)
	if len(top) == 0 {
		return ""
	}
	return top[0].Label
}

// ProgressMessage summarises the history for display.
func (s *Store) ProgressMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return "Start practicing to see your progress!"
	}
	mean := meanConfidence(s.records)
	switch {
	case mean > excellentThreshold:
		return "Excellent form! Keep it up!"
	case mean > goodThreshold:
		return "Good progress! Focus on consistency."
	default:
		return "Keep practicing! Every putt makes you better."
	}
}

func countLabels(records []Record) []LabelCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Label]++
	}
	out := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
