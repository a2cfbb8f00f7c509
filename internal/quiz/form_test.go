package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerAll(t *testing.T, f *Form, value int) {
	t.Helper()
	for _, q := range f.Diagnostic().Questions {
		_, err := f.Set(q.ID, value)
		require.NoError(t, err)
	}
}

func TestFormRejectsInvalidAnswers(t *testing.T) {
	f := NewForm(Transport())

	_, err := f.Set(13, ValueYes)
	assert.True(t, errors.Is(err, ErrUnknownQuestion))

	_, err = f.Set(1, 3)
	assert.True(t, errors.Is(err, ErrInvalidValue))

	_, err = f.Set(1, -1)
	assert.True(t, errors.Is(err, ErrInvalidValue))

	assert.Equal(t, 12, f.Tally().Missing)
}

func TestFormRequestResult(t *testing.T) {
	f := NewForm(Transport())

	_, err := f.Set(1, ValueYes)
	require.NoError(t, err)

	_, err = f.RequestResult()
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 11, incomplete.Missing)
	assert.Equal(t, "Te faltan 11 preguntas por contestar.", err.Error())
	assert.False(t, f.Visible())

	answerAll(t, f, ValueYes)
	assert.False(t, f.Visible(), "request policy never reveals on its own")

	res, err := f.RequestResult()
	require.NoError(t, err)
	assert.True(t, f.Visible())
	assert.Equal(t, 24, res.Total)
	assert.Equal(t, 24, res.Max)
	assert.Equal(t, "Sólido", res.Bucket.Badge)
}

func TestFormRevealOnComplete(t *testing.T) {
	f := NewForm(KOP())
	questions := f.Diagnostic().Questions

	for _, q := range questions[:len(questions)-1] {
		revealed, err := f.Set(q.ID, ValueYes)
		require.NoError(t, err)
		assert.False(t, revealed)
	}
	assert.False(t, f.Visible())

	revealed, err := f.Set(questions[len(questions)-1].ID, ValueNo)
	require.NoError(t, err)
	assert.True(t, revealed)
	assert.True(t, f.Visible())

	// further edits keep the result visible without reporting a new reveal
	revealed, err = f.Set(1, ValueNo)
	require.NoError(t, err)
	assert.False(t, revealed)

	res, visible := f.Result()
	assert.True(t, visible)
	assert.Equal(t, 20, res.Total)
	assert.Equal(t, TierHigh, res.Bucket.Tier)
}

func TestFormResultTracksLatestAnswers(t *testing.T) {
	f := NewForm(Transport())
	answerAll(t, f, ValuePartial)

	res, err := f.RequestResult()
	require.NoError(t, err)
	assert.Equal(t, 12, res.Total)
	assert.Equal(t, TierMedium, res.Bucket.Tier)

	_, err = f.Set(1, ValueNo)
	require.NoError(t, err)

	res, visible := f.Result()
	assert.True(t, visible)
	assert.Equal(t, 11, res.Total)
	assert.Equal(t, TierLow, res.Bucket.Tier)
}

func TestFormHideAndReset(t *testing.T) {
	f := NewForm(Transport())
	answerAll(t, f, ValueYes)
	_, err := f.RequestResult()
	require.NoError(t, err)

	f.Hide()
	assert.False(t, f.Visible())
	assert.Equal(t, 0, f.Tally().Missing)

	f.Reset()
	assert.False(t, f.Visible())
	assert.Equal(t, 12, f.Tally().Missing)
	_, ok := f.Value(1)
	assert.False(t, ok)
}

func TestFormAnswersIsACopy(t *testing.T) {
	f := NewForm(Transport())
	_, err := f.Set(1, ValueYes)
	require.NoError(t, err)

	a := f.Answers()
	a[2] = ValueYes

	_, ok := f.Value(2)
	assert.False(t, ok)
}
