package relay

import (
	"context"
	"log/slog"

	"github.com/grupoquokka/diagnostico/internal/contact"
	apperrors "github.com/grupoquokka/diagnostico/internal/errors"
)

// Recorder keeps a ledger of relayed leads.
type Recorder interface {
	RecordLead(ctx context.Context, p contact.Payload, deliveryErr error) error
}

// Service composes lead emails and hands them to the mailer. It implements
// contact.Relay so server-rendered forms can submit in process.
type Service struct {
	config   Config
	mailer   Mailer
	recorder Recorder
}

// NewService creates a relay service. recorder may be nil.
func NewService(config Config, mailer Mailer, recorder Recorder) *Service {
	return &Service{config: config, mailer: mailer, recorder: recorder}
}

// Send composes and delivers p. Composition failures are bad requests,
// provider failures are external API errors.
func (s *Service) Send(ctx context.Context, p contact.Payload) error {
	msg, err := Compose(s.config, p)
	if err != nil {
		return apperrors.NewBadRequestError("Bad Request", err)
	}

	sendErr := s.mailer.Send(ctx, msg)

	if s.recorder != nil {
		if err := s.recorder.RecordLead(ctx, p, sendErr); err != nil {
			slog.Warn("Failed to record lead", "service", p.Service, "error", err)
		}
	}

	if sendErr != nil {
		return apperrors.NewExternalAPIError("email", sendErr)
	}
	return nil
}

var _ contact.Relay = (*Service)(nil)
