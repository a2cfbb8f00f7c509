package relay

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/grupoquokka/diagnostico/internal/contact"
)

// ScoreDenominator is printed after the total in the email.
const ScoreDenominator = 24

// Message is a composed outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

var leadTemplate = template.Must(template.New("lead").Funcs(template.FuncMap{
	"dash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}).Parse(`
<h2>{{.Service}}</h2>
<p><b>Total:</b> {{.Total}} / {{.Denominator}}</p>
<h3>Contacto</h3>
<ul>
  <li><b>Nombre:</b> {{dash .Name}}</li>
  <li><b>Puesto:</b> {{dash .Role}}</li>
  <li><b>Empresa:</b> {{dash .Company}}</li>
  <li><b>Correo:</b> {{dash .Email}}</li>
  <li><b>Celular:</b> {{dash .Phone}}</li>
</ul>
<h3>Respuestas</h3>
<table style="border-collapse:collapse;border:1px solid #eee;">
  <thead>
    <tr>
      <th style="padding:6px 8px;border:1px solid #eee;">#</th>
      <th style="padding:6px 8px;border:1px solid #eee;text-align:left;">Pregunta</th>
      <th style="padding:6px 8px;border:1px solid #eee;">Valor</th>
    </tr>
  </thead>
  <tbody>{{range .Answers}}
    <tr><td style="padding:4px 8px;border:1px solid #eee;">{{.ID}}.</td><td style="padding:4px 8px;border:1px solid #eee;">{{.Text}}</td><td style="padding:4px 8px;border:1px solid #eee;text-align:center;">{{.Value}}</td></tr>{{end}}
  </tbody>
</table>
`))

type leadView struct {
	contact.Payload
	Denominator int
}

// Subject formats the email subject for p.
func Subject(p contact.Payload) string {
	subject := fmt.Sprintf("Nuevo lead | %s | Total: %d", p.Service, p.Total)
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(subject)
}

// Compose renders the lead email. Every user-supplied string is escaped by
// html/template.
func Compose(cfg Config, p contact.Payload) (Message, error) {
	var buf bytes.Buffer
	if err := leadTemplate.Execute(&buf, leadView{Payload: p, Denominator: ScoreDenominator}); err != nil {
		return Message{}, fmt.Errorf("failed to render lead email: %w", err)
	}

	return Message{
		From:    cfg.From,
		To:      cfg.Recipients(),
		Subject: Subject(p),
		HTML:    buf.String(),
		ReplyTo: strings.TrimSpace(p.Email),
	}, nil
}
