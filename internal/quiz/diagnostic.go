package quiz

import (
	"fmt"
	"strings"
)

// Diagnostic is one questionnaire: its questions, the result texts and how it
// is presented. The transport and KOP diagnostics are two values of this type.
type Diagnostic struct {
	Slug         string       `json:"slug" yaml:"slug"`
	ServiceLabel string       `json:"service" yaml:"service"`
	Questions    []Question   `json:"questions" yaml:"questions"`
	Buckets      Buckets      `json:"-" yaml:"buckets"`
	Theme        Theme        `json:"theme" yaml:"theme"`
	Reveal       RevealPolicy `json:"reveal" yaml:"reveal"`
}

// Validate checks the catalog invariants: a slug and service label, question
// ids unique and numbered 1..n, non-empty texts, a known reveal policy and a
// badge for every bucket.
func (d Diagnostic) Validate() error {
	if strings.TrimSpace(d.Slug) == "" {
		return fmt.Errorf("diagnostic: slug is required")
	}
	if strings.TrimSpace(d.ServiceLabel) == "" {
		return fmt.Errorf("diagnostic %q: service label is required", d.Slug)
	}
	if len(d.Questions) == 0 {
		return fmt.Errorf("diagnostic %q: no questions", d.Slug)
	}

	seen := make(map[int]bool, len(d.Questions))
	for _, q := range d.Questions {
		if q.ID < 1 || q.ID > len(d.Questions) {
			return fmt.Errorf("diagnostic %q: question id %d out of range 1..%d", d.Slug, q.ID, len(d.Questions))
		}
		if seen[q.ID] {
			return fmt.Errorf("diagnostic %q: duplicate question id %d", d.Slug, q.ID)
		}
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("diagnostic %q: question %d has no text", d.Slug, q.ID)
		}
		seen[q.ID] = true
	}

	switch d.Reveal {
	case RevealOnRequest, RevealOnComplete:
	default:
		return fmt.Errorf("diagnostic %q: unknown reveal policy %q", d.Slug, d.Reveal)
	}

	for tier, b := range map[Tier]Bucket{TierLow: d.Buckets.Low, TierMedium: d.Buckets.Medium, TierHigh: d.Buckets.High} {
		if b.Badge == "" || b.Heading == "" {
			return fmt.Errorf("diagnostic %q: bucket %s needs a badge and a heading", d.Slug, tier)
		}
	}

	return nil
}

// Score tallies answers against this diagnostic's questions.
func (d Diagnostic) Score(answers Answers) Tally {
	return Score(d.Questions, answers)
}

// Resolve returns the descriptor for total.
func (d Diagnostic) Resolve(total int) Bucket {
	return d.Buckets.Pick(total)
}

// MaxScore is the highest reachable total.
func (d Diagnostic) MaxScore() int {
	return MaxValue * len(d.Questions)
}

// Question looks up a question by id.
func (d Diagnostic) Question(id int) (Question, bool) {
	for _, q := range d.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
