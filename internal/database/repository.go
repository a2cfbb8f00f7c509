package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/grupoquokka/diagnostico/internal/quiz"
)

// Repository handles ledger queries.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// InsertLead stores lead.
func (r *Repository) InsertLead(ctx context.Context, lead *Lead) error {
	answers, err := json.Marshal(lead.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	stmt, err := r.db.GetPreparedStatement("insert_lead")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		lead.ID, lead.Service, lead.Total, string(lead.Tier),
		lead.Name, lead.Role, lead.Company, lead.Email, lead.Phone,
		string(answers), lead.Delivered, nullString(lead.DeliveryError), lead.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

// RecentLeads returns up to limit leads, newest first.
func (r *Repository) RecentLeads(ctx context.Context, limit int) ([]*Lead, error) {
	stmt, err := r.db.GetPreparedStatement("recent_leads")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []*Lead
	for rows.Next() {
		var (
			lead     Lead
			tier     string
			answers  string
			errorMsg sql.NullString
		)
		if err := rows.Scan(
			&lead.ID, &lead.Service, &lead.Total, &tier,
			&lead.Name, &lead.Role, &lead.Company, &lead.Email, &lead.Phone,
			&answers, &lead.Delivered, &errorMsg, &lead.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		lead.Tier = quiz.Tier(tier)
		lead.DeliveryError = errorMsg.String
		if err := json.Unmarshal([]byte(answers), &lead.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers of lead %s: %w", lead.ID, err)
		}
		leads = append(leads, &lead)
	}
	return leads, rows.Err()
}

// Stats counts leads per service, tier and delivery outcome.
func (r *Repository) Stats(ctx context.Context) (*LeadStats, error) {
	stmt, err := r.db.GetPreparedStatement("lead_stats")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query lead stats: %w", err)
	}
	defer rows.Close()

	byService := make(map[string]*ServiceStats)
	stats := &LeadStats{Services: []ServiceStats{}}

	for rows.Next() {
		var (
			service   string
			tier      string
			delivered bool
			count     int
		)
		if err := rows.Scan(&service, &tier, &delivered, &count); err != nil {
			return nil, fmt.Errorf("failed to scan lead stats: %w", err)
		}

		s, ok := byService[service]
		if !ok {
			s = &ServiceStats{Service: service, ByTier: make(map[quiz.Tier]int)}
			byService[service] = s
		}
		s.Total += count
		s.ByTier[quiz.Tier(tier)] += count
		if delivered {
			s.Delivered += count
		} else {
			s.Failed += count
		}
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, s := range byService {
		stats.Services = append(stats.Services, *s)
	}
	sort.Slice(stats.Services, func(i, j int) bool { return stats.Services[i].Service < stats.Services[j].Service })
	return stats, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
