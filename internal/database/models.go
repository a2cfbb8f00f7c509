package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/grupoquokka/diagnostico/internal/contact"
	"github.com/grupoquokka/diagnostico/internal/quiz"
)

// Lead is one relayed contact submission.
type Lead struct {
	ID            string                `json:"id"`
	Service       string                `json:"service"`
	Total         int                   `json:"total"`
	Tier          quiz.Tier             `json:"tier"`
	Name          string                `json:"-"`
	Role          string                `json:"-"`
	Company       string                `json:"company,omitempty"`
	Email         string                `json:"-"`
	Phone         string                `json:"-"`
	Answers       []contact.AnswerEntry `json:"answers"`
	Delivered     bool                  `json:"delivered"`
	DeliveryError string                `json:"delivery_error,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// NewLead builds a ledger row for p.
func NewLead(p contact.Payload, deliveryErr error) *Lead {
	lead := &Lead{
		ID:        uuid.New().String(),
		Service:   p.Service,
		Total:     p.Total,
		Tier:      quiz.TierFor(p.Total),
		Name:      p.Name,
		Role:      p.Role,
		Company:   p.Company,
		Email:     p.Email,
		Phone:     p.Phone,
		Answers:   p.Answers,
		Delivered: deliveryErr == nil,
		CreatedAt: time.Now().UTC(),
	}
	if deliveryErr != nil {
		lead.DeliveryError = deliveryErr.Error()
	}
	return lead
}

// ServiceStats counts leads of one service.
type ServiceStats struct {
	Service   string            `json:"service"`
	Total     int               `json:"total"`
	Delivered int               `json:"delivered"`
	Failed    int               `json:"failed"`
	ByTier    map[quiz.Tier]int `json:"by_tier"`
}

// LeadStats summarizes the ledger.
type LeadStats struct {
	Total    int            `json:"total"`
	Services []ServiceStats `json:"services"`
}
