package contact

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/grupoquokka/diagnostico/internal/quiz"
)

// User-facing messages.
const (
	MessageRequired = "Nombre y correo son obligatorios."
	MessageSent     = "¡Enviado! Gracias."
	MessageFailed   = "No se pudo enviar. Intenta de nuevo."
)

// Relay delivers a payload to the mail relay.
type Relay interface {
	Send(ctx context.Context, p Payload) error
}

// Status is the result of one submit action.
type Status string

const (
	StatusSent     Status = "sent"
	StatusFailed   Status = "failed"
	StatusRejected Status = "rejected"
	StatusIgnored  Status = "ignored"
)

// Outcome is what the form shows after a submit action.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Submitter sends contact forms for one diagnostic and allows a single
// outstanding request at a time.
type Submitter struct {
	diag     quiz.Diagnostic
	relay    Relay
	inFlight atomic.Bool
}

// NewSubmitter creates a submitter posting through relay.
func NewSubmitter(d quiz.Diagnostic, relay Relay) *Submitter {
	return &Submitter{diag: d, relay: relay}
}

// Sending reports whether a submission is in flight; the submit action is
// disabled while it is true.
func (s *Submitter) Sending() bool { return s.inFlight.Load() }

// Submit validates fields and sends one payload. A call made while another is
// in flight is ignored without validating. Validation failures never reach
// the relay. The relay is never retried automatically.
func (s *Submitter) Submit(ctx context.Context, fields Fields, total int, answers quiz.Answers) (Outcome, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Outcome{Status: StatusIgnored}, nil
	}
	defer s.inFlight.Store(false)

	if err := fields.Validate(); err != nil {
		return Outcome{Status: StatusRejected, Message: MessageRequired}, err
	}

	payload := NewPayload(s.diag, fields, total, answers)
	if err := s.relay.Send(ctx, payload); err != nil {
		slog.Warn("Contact submission failed", "service", s.diag.Slug, "total", total, "error", err)
		return Outcome{Status: StatusFailed, Message: MessageFailed}, err
	}

	slog.Info("Contact submitted", "service", s.diag.Slug, "total", total)
	return Outcome{Status: StatusSent, Message: MessageSent}, nil
}
