package database

import (
	"context"
	"log/slog"

	"github.com/grupoquokka/diagnostico/internal/contact"
)

// LeadService records relayed leads and answers ledger queries.
type LeadService struct {
	repo *Repository
}

// NewLeadService creates a lead service.
func NewLeadService(repo *Repository) *LeadService {
	return &LeadService{repo: repo}
}

// RecordLead stores p with the outcome of its delivery.
func (s *LeadService) RecordLead(ctx context.Context, p contact.Payload, deliveryErr error) error {
	lead := NewLead(p, deliveryErr)
	if err := s.repo.InsertLead(ctx, lead); err != nil {
		return err
	}
	slog.Debug("Lead recorded", "id", lead.ID, "service", lead.Service, "tier", lead.Tier, "delivered", lead.Delivered)
	return nil
}

// Stats summarizes the ledger.
func (s *LeadService) Stats(ctx context.Context) (*LeadStats, error) {
	return s.repo.Stats(ctx)
}

// Recent returns the newest leads.
func (s *LeadService) Recent(ctx context.Context, limit int) ([]*Lead, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.RecentLeads(ctx, limit)
}
