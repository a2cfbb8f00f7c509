package frontend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grupoquokka/diagnostico/internal/contact"
	"github.com/grupoquokka/diagnostico/internal/quiz"
	"github.com/grupoquokka/diagnostico/internal/security"
	"github.com/grupoquokka/diagnostico/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRelay holds every Send until release is closed.
type blockingRelay struct {
	calls   int32
	started chan struct{}
	release chan struct{}
}

func (r *blockingRelay) Send(ctx context.Context, p contact.Payload) error {
	if atomic.AddInt32(&r.calls, 1) == 1 {
		close(r.started)
	}
	<-r.release
	return nil
}

type recordingRelay struct {
	sent []contact.Payload
	err  error
}

func (r *recordingRelay) Send(ctx context.Context, p contact.Payload) error {
	r.sent = append(r.sent, p)
	return r.err
}

func setupRouter(t *testing.T, relay contact.Relay) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h, err := NewHandler(quiz.DefaultCatalog(), relay, session.CloseResult)
	require.NoError(t, err)

	r := gin.New()
	r.Use(security.CSPMiddleware())
	h.Register(r)
	return r
}

func post(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// mediumAnswers scores 15: three "Sí" and nine "Parcial".
func mediumAnswers() url.Values {
	form := url.Values{}
	for id := 1; id <= 12; id++ {
		v := quiz.ValuePartial
		if id <= 3 {
			v = quiz.ValueYes
		}
		form.Set(fmt.Sprintf("q%d", id), fmt.Sprint(v))
	}
	return form
}

func TestIndex(t *testing.T) {
	r := setupRouter(t, &recordingRelay{})
	w := get(r, "/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/d/transporte"`)
	assert.Contains(t, w.Body.String(), `href="/d/kop"`)
}

func TestQuestionnaire(t *testing.T) {
	r := setupRouter(t, &recordingRelay{})

	w := get(r, "/d/transporte")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "¿Tu proveedor garantiza al menos un 95% de cumplimiento en horarios?")
	assert.Contains(t, body, "Total: 0 / 24 · Faltantes: 12")
	assert.Equal(t, 36, strings.Count(body, `type="radio"`))
	assert.Contains(t, body, `data-reveal="request"`)
	assert.Contains(t, body, "Reiniciar")

	assert.Contains(t, get(r, "/d/kop").Body.String(), `data-reveal="complete"`)
	assert.Equal(t, http.StatusNotFound, get(r, "/d/nope").Code)
}

func TestResultIncomplete(t *testing.T) {
	r := setupRouter(t, &recordingRelay{})

	w := post(r, "/d/transporte/resultado", url.Values{"q1": {"2"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Te faltan 11 preguntas por contestar.")
	assert.Contains(t, body, "Total: 2 / 24 · Faltantes: 11")
	assert.Contains(t, body, `value="2" checked`)
}

func TestResultInvalidValue(t *testing.T) {
	r := setupRouter(t, &recordingRelay{})
	w := post(r, "/d/transporte/resultado", url.Values{"q1": {"5"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResultComplete(t *testing.T) {
	r := setupRouter(t, &recordingRelay{})

	w := post(r, "/d/transporte/resultado", mediumAnswers())
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Regular")
	assert.Contains(t, body, "Hay cosas que mejorar.")
	assert.Contains(t, body, "Total: 15 / 24")
	assert.Contains(t, body, `action="/d/transporte/contacto"`)
	assert.Equal(t, 13, strings.Count(body, `type="hidden"`))
	assert.Regexp(t, `name="envio" value="[0-9a-f-]{36}"`, body)
	assert.Equal(t, 1, strings.Count(body, `addEventListener("submit"`))
	assert.Contains(t, body, `button.textContent = "Enviando..."`)
}

func TestContact(t *testing.T) {
	t.Run("missing name is rejected locally", func(t *testing.T) {
		relay := &recordingRelay{}
		r := setupRouter(t, relay)

		form := mediumAnswers()
		form.Set("nombre", "   ")
		form.Set("correo", "a@b.com")
		w := post(r, "/d/transporte/contacto", form)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), contact.MessageRequired)
		assert.Empty(t, relay.sent)
	})

	t.Run("sent", func(t *testing.T) {
		relay := &recordingRelay{}
		r := setupRouter(t, relay)

		form := mediumAnswers()
		form.Set("nombre", "Ana")
		form.Set("correo", "a@b.com")
		w := post(r, "/d/transporte/contacto", form)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), contact.MessageSent)
		require.Len(t, relay.sent, 1)
		assert.Equal(t, 15, relay.sent[0].Total)
		assert.Len(t, relay.sent[0].Answers, 12)
		assert.Equal(t, quiz.Transport().ServiceLabel, relay.sent[0].Service)
	})

	t.Run("relay failure keeps the form", func(t *testing.T) {
		relay := &recordingRelay{err: errors.New("relay down")}
		r := setupRouter(t, relay)

		form := mediumAnswers()
		form.Set("nombre", `<script>alert(1)</script>`)
		form.Set("correo", "a@b.com")
		w := post(r, "/d/transporte/contacto", form)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, contact.MessageFailed)
		assert.NotContains(t, body, "<script>alert(1)</script>")
		assert.Contains(t, body, "Total: 15 / 24")
	})

	t.Run("incomplete answers go back to the questionnaire", func(t *testing.T) {
		relay := &recordingRelay{}
		r := setupRouter(t, relay)

		w := post(r, "/d/transporte/contacto", url.Values{"q1": {"2"}, "nombre": {"Ana"}, "correo": {"a@b.com"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/d/transporte", w.Header().Get("Location"))
		assert.Empty(t, relay.sent)
	})
}

func TestPagesCarryCSPNonce(t *testing.T) {
	r := setupRouter(t, &recordingRelay{})
	w := get(r, "/d/kop")

	csp := w.Header().Get("Content-Security-Policy")
	require.NotEmpty(t, csp)
	start := strings.Index(csp, "'nonce-") + len("'nonce-")
	nonce := csp[start : start+strings.Index(csp[start:], "'")]
	assert.Contains(t, w.Body.String(), `<script nonce="`+nonce+`">`)
}

func TestStaticFS(t *testing.T) {
	f, err := StaticFS().Open("styles.css")
	require.NoError(t, err)
	_ = f.Close()
}

func TestContactSecondPostWhileSending(t *testing.T) {
	for _, token := range []string{"3f1c9b7e-0c1a-4a53-9a57-6a2f2d7c1e11", ""} {
		name := "with token"
		if token == "" {
			name = "without token"
		}
		t.Run(name, func(t *testing.T) {
			relay := &blockingRelay{started: make(chan struct{}), release: make(chan struct{})}
			r := setupRouter(t, relay)

			form := mediumAnswers()
			form.Set("nombre", "Ana")
			form.Set("correo", "a@b.com")
			form.Set("envio", token)

			first := make(chan *httptest.ResponseRecorder, 1)
			go func() { first <- post(r, "/d/transporte/contacto", form) }()
			<-relay.started

			second := post(r, "/d/transporte/contacto", form)
			assert.Equal(t, http.StatusConflict, second.Code)
			assert.Contains(t, second.Body.String(), "Enviando...")

			close(relay.release)
			w := <-first
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, int32(1), atomic.LoadInt32(&relay.calls))

			relay.started = make(chan struct{})
			relay.calls = 0
			again := post(r, "/d/transporte/contacto", form)
			assert.Equal(t, http.StatusOK, again.Code, "guard is released once the first post finishes")
		})
	}
}

func TestContactDifferentTokensAreIndependent(t *testing.T) {
	relay := &blockingRelay{started: make(chan struct{}), release: make(chan struct{})}
	r := setupRouter(t, relay)

	form := mediumAnswers()
	form.Set("nombre", "Ana")
	form.Set("correo", "a@b.com")
	form.Set("envio", "token-a")

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- post(r, "/d/transporte/contacto", form) }()
	<-relay.started

	other := mediumAnswers()
	other.Set("nombre", "Luis")
	other.Set("correo", "l@b.com")
	other.Set("envio", "token-b")
	second := make(chan *httptest.ResponseRecorder, 1)
	go func() { second <- post(r, "/d/transporte/contacto", other) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&relay.calls) == 2 }, time.Second, 5*time.Millisecond)
	close(relay.release)
	assert.Equal(t, http.StatusOK, (<-first).Code)
	assert.Equal(t, http.StatusOK, (<-second).Code)
}
