package contact

import (
	"fmt"

	"github.com/grupoquokka/diagnostico/internal/quiz"
)

// AnswerEntry is one question echoed back to the relay.
type AnswerEntry struct {
	ID    int    `json:"id" binding:"min=1"`
	Text  string `json:"texto"`
	Value int    `json:"val" binding:"min=0,max=2"`
}

// Payload is the body posted to the mail relay.
type Payload struct {
	Service string        `json:"servicio" binding:"required"`
	Total   int           `json:"total" binding:"min=0"`
	Name    string        `json:"nombre"`
	Role    string        `json:"puesto"`
	Company string        `json:"empresa"`
	Email   string        `json:"correo"`
	Phone   string        `json:"celular"`
	Answers []AnswerEntry `json:"respuestas" binding:"required,dive"`
}

// Validate checks that the total is reachable with the listed answers.
func (p Payload) Validate() error {
	if limit := quiz.MaxValue * len(p.Answers); p.Total > limit {
		return fmt.Errorf("total %d exceeds %d for %d answers", p.Total, limit, len(p.Answers))
	}
	return nil
}

// NewPayload builds the relay body for d. Every question is listed in order;
// unanswered ones carry 0.
func NewPayload(d quiz.Diagnostic, fields Fields, total int, answers quiz.Answers) Payload {
	f := fields.Trimmed()

	entries := make([]AnswerEntry, 0, len(d.Questions))
	for _, q := range d.Questions {
		entries = append(entries, AnswerEntry{ID: q.ID, Text: q.Text, Value: answers[q.ID]})
	}

	return Payload{
		Service: d.ServiceLabel,
		Total:   total,
		Name:    f.Name,
		Role:    f.Role,
		Company: f.Company,
		Email:   f.Email,
		Phone:   f.Phone,
		Answers: entries,
	}
}
