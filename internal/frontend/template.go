package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/gin-gonic/gin"
	"github.com/grupoquokka/diagnostico/internal/contact"
	"github.com/grupoquokka/diagnostico/internal/quiz"
)

// Page names.
const (
	pageIndex         = "index.html"
	pageQuestionnaire = "questionnaire.html"
	pageResult        = "result.html"
	pageSent          = "sent.html"
)

var funcs = template.FuncMap{
	"selected": func(answers quiz.Answers, id, value int) bool {
		v, ok := answers[id]
		return ok && v == value
	},
}

// LoadTemplates parses every page together with the shared layout.
func LoadTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	pages := []string{pageIndex, pageQuestionnaire, pageResult, pageSent}
	out := make(map[string]*template.Template, len(pages))

	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(fsys, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		out[page] = tmpl
	}
	return out, nil
}

// render executes the layout of page into the response.
func render(c *gin.Context, tmpl *template.Template, status int, data pageData) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	c.Header("Cache-Control", "no-store")
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
	return nil
}

// pageData is the view model shared by all pages.
type pageData struct {
	Nonce        string
	Accent       string
	Diagnostics  []quiz.Diagnostic
	Diagnostic   quiz.Diagnostic
	Options      []quiz.Option
	Answers      quiz.Answers
	Progress     string
	Result       *quiz.Result
	Fields       contact.Fields
	Token        string
	Message      string
	MessageClass string
}
