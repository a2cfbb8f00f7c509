package contact

import (
	"strings"

	apperrors "github.com/grupoquokka/diagnostico/internal/errors"
)

// Fields are the lead details typed into the contact form.
type Fields struct {
	Name    string `json:"name" form:"nombre"`
	Role    string `json:"role" form:"puesto"`
	Company string `json:"company" form:"empresa"`
	Email   string `json:"email" form:"correo"`
	Phone   string `json:"phone" form:"celular"`
}

// Trimmed returns the fields with surrounding whitespace removed.
func (f Fields) Trimmed() Fields {
	return Fields{
		Name:    strings.TrimSpace(f.Name),
		Role:    strings.TrimSpace(f.Role),
		Company: strings.TrimSpace(f.Company),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
	}
}

// Validate requires a name and an email after trimming.
func (f Fields) Validate() error {
	t := f.Trimmed()
	missing := map[string]string{}
	if t.Name == "" {
		missing["nombre"] = "required"
	}
	if t.Email == "" {
		missing["correo"] = "required"
	}
	if len(missing) > 0 {
		return apperrors.NewValidationErrorWithMap(MessageRequired, missing)
	}
	return nil
}
