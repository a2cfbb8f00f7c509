package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrInvalidValue    = errors.New("answer value must be 0, 1 or 2")
)

// IncompleteError is returned when a result is requested before every
// question has an answer.
type IncompleteError struct {
	Missing int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("Te faltan %d preguntas por contestar.", e.Missing)
}

// Form is the answer state of one questionnaire instance. It is owned by a
// single session and is not safe for concurrent use.
type Form struct {
	diag    Diagnostic
	answers Answers
	visible bool
}

// NewForm starts an empty form for d.
func NewForm(d Diagnostic) *Form {
	return &Form{diag: d, answers: make(Answers, len(d.Questions))}
}

// Diagnostic returns the questionnaire this form answers.
func (f *Form) Diagnostic() Diagnostic { return f.diag }

// Set records value for question id. Under RevealOnComplete, revealed is true
// when this answer completes the form while the result was still hidden.
func (f *Form) Set(id, value int) (revealed bool, err error) {
	if _, ok := f.diag.Question(id); !ok {
		return false, fmt.Errorf("question %d: %w", id, ErrUnknownQuestion)
	}
	if !ValidValue(value) {
		return false, fmt.Errorf("question %d: %w", id, ErrInvalidValue)
	}

	f.answers[id] = value

	if f.diag.Reveal == RevealOnComplete && !f.visible && f.Tally().Complete() {
		f.visible = true
		return true, nil
	}
	return false, nil
}

// Value returns the recorded value for id.
func (f *Form) Value(id int) (int, bool) {
	v, ok := f.answers[id]
	return v, ok
}

// Answers returns a copy of the recorded answers.
func (f *Form) Answers() Answers { return f.answers.Clone() }

// Tally recomputes total and missing count from the current answers.
func (f *Form) Tally() Tally { return f.diag.Score(f.answers) }

// RequestResult is the explicit "show result" action. It fails with an
// *IncompleteError while questions remain unanswered.
func (f *Form) RequestResult() (Result, error) {
	t := f.Tally()
	if !t.Complete() {
		return Result{}, &IncompleteError{Missing: t.Missing}
	}
	f.visible = true
	return f.result(t), nil
}

// Result returns the result for the latest answers and whether it is being
// shown. Changing an answer after reveal keeps it visible.
func (f *Form) Result() (Result, bool) {
	return f.result(f.Tally()), f.visible
}

// Visible reports whether the result is shown.
func (f *Form) Visible() bool { return f.visible }

// Hide closes the result view without touching the answers.
func (f *Form) Hide() { f.visible = false }

// Reset clears every answer and hides the result.
func (f *Form) Reset() {
	f.answers = make(Answers, len(f.diag.Questions))
	f.visible = false
}

func (f *Form) result(t Tally) Result {
	return Result{Total: t.Total, Max: t.Max, Bucket: f.diag.Resolve(t.Total)}
}
