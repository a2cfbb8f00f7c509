// Package session ties one questionnaire form to its contact submitter.
package session

import (
	"context"

	"github.com/grupoquokka/diagnostico/internal/contact"
	"github.com/grupoquokka/diagnostico/internal/quiz"
)

// AfterSuccess decides what happens to the form once a lead is sent.
type AfterSuccess int

const (
	// CloseResult hides the result view and keeps the answers.
	CloseResult AfterSuccess = iota
	// ResetForm clears the answers and hides the result.
	ResetForm
)

// Session is one user's pass through a diagnostic. Not safe for concurrent
// use apart from Submit's in-flight guard.
type Session struct {
	form      *quiz.Form
	submitter *contact.Submitter
	after     AfterSuccess
	outcome   contact.Outcome
}

// New starts a session for d posting leads through relay.
func New(d quiz.Diagnostic, relay contact.Relay, after AfterSuccess) *Session {
	return &Session{
		form:      quiz.NewForm(d),
		submitter: contact.NewSubmitter(d, relay),
		after:     after,
	}
}

// Diagnostic returns the questionnaire being answered.
func (s *Session) Diagnostic() quiz.Diagnostic { return s.form.Diagnostic() }

// Form exposes the answer state.
func (s *Session) Form() *quiz.Form { return s.form }

// Answer records value for question id.
func (s *Session) Answer(id, value int) (revealed bool, err error) {
	return s.form.Set(id, value)
}

// Restore replays a set of answers, stopping at the first invalid one.
func (s *Session) Restore(answers quiz.Answers) error {
	for _, q := range s.Diagnostic().Questions {
		v, ok := answers[q.ID]
		if !ok {
			continue
		}
		if _, err := s.form.Set(q.ID, v); err != nil {
			return err
		}
	}
	return nil
}

// ShowResult is the explicit "show result" action.
func (s *Session) ShowResult() (quiz.Result, error) {
	return s.form.RequestResult()
}

// Progress renders the running total line.
func (s *Session) Progress() string {
	return s.form.Tally().Progress()
}

// Submit sends the contact form with the current total and answers. On
// success the after-success policy is applied.
func (s *Session) Submit(ctx context.Context, fields contact.Fields) (contact.Outcome, error) {
	t := s.form.Tally()
	out, err := s.submitter.Submit(ctx, fields, t.Total, s.form.Answers())
	if out.Status != contact.StatusIgnored {
		s.outcome = out
	}
	if out.Status == contact.StatusSent {
		switch s.after {
		case ResetForm:
			s.form.Reset()
		default:
			s.form.Hide()
		}
	}
	return out, err
}

// Sending reports whether the submit action is disabled.
func (s *Session) Sending() bool { return s.submitter.Sending() }

// LastOutcome is the message of the most recent submit that was not ignored.
func (s *Session) LastOutcome() contact.Outcome { return s.outcome }

// Reset clears every answer and the last outcome.
func (s *Session) Reset() {
	s.form.Reset()
	s.outcome = contact.Outcome{}
}
