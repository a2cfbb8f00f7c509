package frontend

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/grupoquokka/diagnostico/internal/contact"
	"github.com/grupoquokka/diagnostico/internal/quiz"
	"github.com/grupoquokka/diagnostico/internal/security"
	"github.com/grupoquokka/diagnostico/internal/session"
)

// messageSending answers a contact post that arrives while the same form is
// still being relayed.
const messageSending = "Enviando..."

// Handler renders the questionnaire pages. Form state travels in the posted
// fields, so every request rebuilds its own session. Contact posts carrying
// the same submission token share one in-flight guard.
type Handler struct {
	catalog *quiz.Catalog
	relay   contact.Relay
	after   session.AfterSuccess
	pages   map[string]*template.Template

	inflight sync.Map
}

// NewHandler creates the page handler. Leads are submitted through relay.
func NewHandler(catalog *quiz.Catalog, relay contact.Relay, after session.AfterSuccess) (*Handler, error) {
	pages, err := LoadTemplates(templateFS)
	if err != nil {
		return nil, err
	}
	return &Handler{catalog: catalog, relay: relay, after: after, pages: pages}, nil
}

// Register mounts the pages and the stylesheet on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.Index)
	r.GET("/d/:slug", h.Questionnaire)
	r.POST("/d/:slug/resultado", h.Result)
	r.POST("/d/:slug/contacto", h.Contact)
}

// Index lists the diagnostics.
func (h *Handler) Index(c *gin.Context) {
	h.render(c, pageIndex, http.StatusOK, pageData{Diagnostics: h.catalog.List()})
}

// Questionnaire renders an empty form. It doubles as the reset action.
func (h *Handler) Questionnaire(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.render(c, pageQuestionnaire, http.StatusOK, h.questionnaireData(s, ""))
}

// Result is the "show result" action.
func (h *Handler) Result(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if err := s.Restore(parseAnswers(c)); err != nil {
		h.render(c, pageQuestionnaire, http.StatusBadRequest, h.questionnaireData(s, "Respuesta no válida."))
		return
	}

	res, err := s.ShowResult()
	if err != nil {
		var incomplete *quiz.IncompleteError
		if errors.As(err, &incomplete) {
			h.render(c, pageQuestionnaire, http.StatusOK, h.questionnaireData(s, incomplete.Error()))
			return
		}
		h.fail(c, err)
		return
	}

	h.render(c, pageResult, http.StatusOK, h.resultData(s, res, contact.Fields{}, contact.Outcome{}, uuid.NewString()))
}

// Contact submits the lead form shown next to the result.
func (h *Handler) Contact(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if err := s.Restore(parseAnswers(c)); err != nil {
		h.render(c, pageQuestionnaire, http.StatusBadRequest, h.questionnaireData(s, "Respuesta no válida."))
		return
	}
	res, err := s.ShowResult()
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/d/"+s.Diagnostic().Slug)
		return
	}

	// Forms without a token fall back to one guard per client address.
	token := c.PostForm("envio")
	key := s.Diagnostic().Slug + "|" + token
	if token == "" {
		token = uuid.NewString()
		key = s.Diagnostic().Slug + "|" + c.ClientIP()
	}

	var fields contact.Fields
	if err := c.ShouldBind(&fields); err != nil {
		h.render(c, pageResult, http.StatusBadRequest, h.resultData(s, res, fields, contact.Outcome{Status: contact.StatusRejected, Message: contact.MessageRequired}, token))
		return
	}

	if _, busy := h.inflight.LoadOrStore(key, struct{}{}); busy {
		h.render(c, pageResult, http.StatusConflict, h.resultData(s, res, fields, contact.Outcome{Status: contact.StatusIgnored, Message: messageSending}, token))
		return
	}
	defer h.inflight.Delete(key)

	out, err := s.Submit(c.Request.Context(), fields)
	switch out.Status {
	case contact.StatusSent:
		h.render(c, pageSent, http.StatusOK, pageData{
			Diagnostic: s.Diagnostic(),
			Accent:     s.Diagnostic().Theme.Accent,
			Message:    out.Message,
		})
	case contact.StatusRejected:
		h.render(c, pageResult, http.StatusUnprocessableEntity, h.resultData(s, res, fields, out, token))
	default:
		slog.Warn("Lead submission failed", "slug", s.Diagnostic().Slug, "error", err)
		h.render(c, pageResult, http.StatusBadGateway, h.resultData(s, res, fields, out, token))
	}
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	slug := c.Param("slug")
	d, ok := h.catalog.Lookup(slug)
	if !ok {
		c.String(http.StatusNotFound, "Diagnóstico no encontrado")
		return nil, false
	}
	return session.New(d, h.relay, h.after), true
}

func (h *Handler) questionnaireData(s *session.Session, message string) pageData {
	d := s.Diagnostic()
	return pageData{
		Diagnostic: d,
		Accent:     d.Theme.Accent,
		Options:    quiz.Options,
		Answers:    s.Form().Answers(),
		Progress:   s.Progress(),
		Message:    message,
	}
}

func (h *Handler) resultData(s *session.Session, res quiz.Result, fields contact.Fields, out contact.Outcome, token string) pageData {
	d := s.Diagnostic()
	data := pageData{
		Diagnostic: d,
		Accent:     d.Theme.Accent,
		Answers:    s.Form().Answers(),
		Result:     &res,
		Fields:     fields,
		Message:    out.Message,
		Token:      token,
	}
	if out.Status == contact.StatusSent {
		data.MessageClass = "ok"
	} else {
		data.MessageClass = "error"
	}
	return data
}

func (h *Handler) render(c *gin.Context, page string, status int, data pageData) {
	data.Nonce = security.GetNonce(c)
	if data.Nonce == "" {
		nonce, err := security.GenerateNonce()
		if err != nil {
			h.fail(c, err)
			return
		}
		data.Nonce = nonce
	}

	if err := render(c, h.pages[page], status, data); err != nil {
		h.fail(c, err)
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	slog.Error("Failed to render page", "path", c.Request.URL.Path, "error", err)
	c.String(http.StatusInternalServerError, "Error interno")
}

// parseAnswers reads the q<id> radio fields. Unparseable values become -1
// so the form rejects them.
func parseAnswers(c *gin.Context) quiz.Answers {
	answers := quiz.Answers{}
	_ = c.Request.ParseForm()
	for key, values := range c.Request.PostForm {
		if len(key) < 2 || key[0] != 'q' || len(values) == 0 || values[0] == "" {
			continue
		}
		id, err := strconv.Atoi(key[1:])
		if err != nil {
			continue
		}
		v, err := strconv.Atoi(values[0])
		if err != nil {
			v = -1
		}
		answers[id] = v
	}
	return answers
}
