package quiz

import "fmt"

// Bucket boundaries, inclusive upper bounds.
const (
	lowMax    = 11
	mediumMax = 18
)

// Tally is the derived state of an answer set.
type Tally struct {
	Total   int `json:"total"`
	Missing int `json:"missing"`
	Max     int `json:"max"`
}

// Complete reports whether every question has a value.
func (t Tally) Complete() bool { return t.Missing == 0 }

// Progress renders the running total line shown under the questions.
func (t Tally) Progress() string {
	return fmt.Sprintf("Total: %d / %d · Faltantes: %d", t.Total, t.Max, t.Missing)
}

// Score sums the recorded values over questions. Unanswered questions add
// nothing to Total and one to Missing; answers for ids outside the question
// list are ignored.
func Score(questions []Question, answers Answers) Tally {
	t := Tally{Max: MaxValue * len(questions)}
	for _, q := range questions {
		v, ok := answers[q.ID]
		if !ok {
			t.Missing++
			continue
		}
		t.Total += v
	}
	return t
}

// TierFor maps a total to its tier.
func TierFor(total int) Tier {
	switch {
	case total <= lowMax:
		return TierLow
	case total <= mediumMax:
		return TierMedium
	default:
		return TierHigh
	}
}

// Pick returns the descriptor for total.
func (b Buckets) Pick(total int) Bucket {
	var out Bucket
	tier := TierFor(total)
	switch tier {
	case TierLow:
		out = b.Low
	case TierMedium:
		out = b.Medium
	default:
		out = b.High
	}
	out.Tier = tier
	return out
}

// ValidValue reports whether v is an accepted answer value.
func ValidValue(v int) bool {
	return v >= ValueNo && v <= MaxValue
}
