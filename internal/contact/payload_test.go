package contact

import (
	"testing"

	"github.com/grupoquokka/diagnostico/internal/quiz"
	"github.com/stretchr/testify/assert"
)

func TestPayloadValidate(t *testing.T) {
	d := quiz.Transport()
	full := quiz.Answers{}
	for _, q := range d.Questions {
		full[q.ID] = quiz.ValueYes
	}

	tests := []struct {
		name    string
		payload Payload
		wantErr bool
	}{
		{name: "highest reachable total", payload: NewPayload(d, Fields{}, 24, full)},
		{name: "unanswered questions", payload: NewPayload(d, Fields{}, 0, quiz.Answers{})},
		{name: "total above twelve answers", payload: NewPayload(d, Fields{}, 25, full), wantErr: true},
		{name: "total with no answers", payload: Payload{Service: "x", Total: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
