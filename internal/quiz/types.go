package quiz

// Answer values a question accepts.
const (
	ValueNo      = 0
	ValuePartial = 1
	ValueYes     = 2

	MaxValue = ValueYes
)

// Question is one statement of a diagnostic.
type Question struct {
	ID   int    `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Option is a selectable answer for every question.
type Option struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Options lists the answer choices in display order.
var Options = []Option{
	{Label: "Sí", Value: ValueYes},
	{Label: "Parcial", Value: ValuePartial},
	{Label: "No", Value: ValueNo},
}

// Answers maps a question id to the recorded value. A missing key means the
// question has not been answered.
type Answers map[int]int

// Clone returns an independent copy of the answers.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for id, v := range a {
		out[id] = v
	}
	return out
}

// Tier names the three result buckets.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Bucket is the fixed result descriptor shown for a score range.
type Bucket struct {
	Tier       Tier   `json:"tier" yaml:"-"`
	Badge      string `json:"badge" yaml:"badge"`
	Tone       string `json:"tone" yaml:"tone"`
	Background string `json:"background" yaml:"background"`
	Heading    string `json:"heading" yaml:"heading"`
	Detail     string `json:"detail" yaml:"detail"`
}

// Buckets holds the descriptor of each tier.
type Buckets struct {
	Low    Bucket `json:"low" yaml:"low"`
	Medium Bucket `json:"medium" yaml:"medium"`
	High   Bucket `json:"high" yaml:"high"`
}

// Theme carries the presentation strings of a diagnostic.
type Theme struct {
	Title      string `json:"title" yaml:"title"`
	Subtitle   string `json:"subtitle" yaml:"subtitle"`
	Logo       string `json:"logo,omitempty" yaml:"logo"`
	Background string `json:"background,omitempty" yaml:"background"`
	Accent     string `json:"accent,omitempty" yaml:"accent"`
}

// RevealPolicy decides when a completed result becomes visible.
type RevealPolicy string

const (
	// RevealOnRequest shows the result only when the user asks for it.
	RevealOnRequest RevealPolicy = "request"
	// RevealOnComplete shows the result as soon as the last question is answered.
	RevealOnComplete RevealPolicy = "complete"
)

// Result is what the presentation layer renders.
type Result struct {
	Total  int    `json:"total"`
	Max    int    `json:"max"`
	Bucket Bucket `json:"bucket"`
}
