package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uniformAnswers(questions []Question, value int) Answers {
	a := make(Answers, len(questions))
	for _, q := range questions {
		a[q.ID] = value
	}
	return a
}

func TestTierFor(t *testing.T) {
	for total := 0; total <= 24; total++ {
		var want Tier
		switch {
		case total <= 11:
			want = TierLow
		case total <= 18:
			want = TierMedium
		default:
			want = TierHigh
		}
		assert.Equal(t, want, TierFor(total), "total %d", total)
	}
}

func TestResolveBoundaries(t *testing.T) {
	d := Transport()

	tests := []struct {
		name  string
		total int
		tier  Tier
		badge string
	}{
		{name: "zero", total: 0, tier: TierLow, badge: "Muy pobre"},
		{name: "low upper bound", total: 11, tier: TierLow, badge: "Muy pobre"},
		{name: "medium lower bound", total: 12, tier: TierMedium, badge: "Regular"},
		{name: "medium upper bound", total: 18, tier: TierMedium, badge: "Regular"},
		{name: "high lower bound", total: 19, tier: TierHigh, badge: "Sólido"},
		{name: "maximum", total: 24, tier: TierHigh, badge: "Sólido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := d.Resolve(tt.total)
			assert.Equal(t, tt.tier, b.Tier)
			assert.Equal(t, tt.badge, b.Badge)
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	d := KOP()
	for total := 0; total <= d.MaxScore(); total++ {
		assert.Equal(t, d.Resolve(total), d.Resolve(total))
	}
}

func TestScore(t *testing.T) {
	questions := Transport().Questions

	tests := []struct {
		name    string
		answers Answers
		total   int
		missing int
	}{
		{
			name:    "empty answers",
			answers: Answers{},
			total:   0,
			missing: 12,
		},
		{
			name:    "all yes",
			answers: uniformAnswers(questions, ValueYes),
			total:   24,
			missing: 0,
		},
		{
			name:    "all no",
			answers: uniformAnswers(questions, ValueNo),
			total:   0,
			missing: 0,
		},
		{
			name:    "partial answers exclude unanswered",
			answers: Answers{1: 2, 2: 2, 3: 1},
			total:   5,
			missing: 9,
		},
		{
			name:    "explicit zero counts as answered",
			answers: Answers{1: 0},
			total:   0,
			missing: 11,
		},
		{
			name:    "unknown ids are ignored",
			answers: Answers{99: 2, 1: 1},
			total:   1,
			missing: 11,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := Score(questions, tt.answers)
			assert.Equal(t, tt.total, tally.Total)
			assert.Equal(t, tt.missing, tally.Missing)
			assert.Equal(t, 24, tally.Max)
			assert.Equal(t, tt.missing == 0, tally.Complete())
		})
	}
}

func TestEndToEndScenarios(t *testing.T) {
	d := Transport()

	t.Run("all answers yes reach the high bucket", func(t *testing.T) {
		tally := d.Score(uniformAnswers(d.Questions, ValueYes))
		assert.Equal(t, 24, tally.Total)
		assert.Equal(t, "Sólido", d.Resolve(tally.Total).Badge)
	})

	t.Run("all answers no reach the low bucket", func(t *testing.T) {
		tally := d.Score(uniformAnswers(d.Questions, ValueNo))
		assert.Equal(t, 0, tally.Total)
		assert.Equal(t, "Muy pobre", d.Resolve(tally.Total).Badge)
	})

	t.Run("six yes and six partial hit the medium upper bound", func(t *testing.T) {
		answers := Answers{}
		for i, q := range d.Questions {
			if i < 6 {
				answers[q.ID] = ValueYes
			} else {
				answers[q.ID] = ValuePartial
			}
		}
		tally := d.Score(answers)
		assert.Equal(t, 18, tally.Total)
		assert.Equal(t, TierMedium, d.Resolve(tally.Total).Tier)
	})
}

func TestValidValue(t *testing.T) {
	assert.True(t, ValidValue(0))
	assert.True(t, ValidValue(1))
	assert.True(t, ValidValue(2))
	assert.False(t, ValidValue(-1))
	assert.False(t, ValidValue(3))
}

func TestTallyProgress(t *testing.T) {
	tally := Score(Transport().Questions, Answers{1: ValueYes, 4: ValuePartial})
	assert.Equal(t, "Total: 3 / 24 · Faltantes: 10", tally.Progress())
}
