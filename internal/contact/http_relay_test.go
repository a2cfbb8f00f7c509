package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grupoquokka/diagnostico/internal/quiz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRelaySend(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	relay := NewHTTPRelay(srv.URL, nil)
	p := NewPayload(quiz.Transport(), Fields{Name: "Ana", Email: "a@b.com"}, 15, quiz.Answers{})
	require.NoError(t, relay.Send(context.Background(), p))

	assert.Equal(t, float64(15), got["total"])
	assert.Equal(t, "Ana", got["nombre"])
	assert.Equal(t, "a@b.com", got["correo"])
	assert.Equal(t, "", got["puesto"])
	assert.Len(t, got["respuestas"], 12)
	first := got["respuestas"].([]interface{})[0].(map[string]interface{})
	assert.Contains(t, first, "texto")
	assert.Contains(t, first, "val")
}

func TestHTTPRelayErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "provider failure", status: http.StatusInternalServerError, body: "Email delivery failed"},
		{name: "bad request", status: http.StatusBadRequest, body: "Bad Request"},
		{name: "success status without ok", status: http.StatusOK, body: `{"ok":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewHTTPRelay(srv.URL, nil).Send(context.Background(), Payload{Service: "x", Answers: []AnswerEntry{}})
			var relayErr *RelayError
			require.ErrorAs(t, err, &relayErr)
			assert.Equal(t, tt.status, relayErr.StatusCode)
			assert.Equal(t, tt.body, relayErr.Body)
		})
	}
}
