package relay

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grupoquokka/diagnostico/internal/contact"
	apperrors "github.com/grupoquokka/diagnostico/internal/errors"
	"github.com/grupoquokka/diagnostico/internal/monitoring"
	"github.com/grupoquokka/diagnostico/internal/quiz"
)

// Plain-text bodies of the relay's failure responses.
const (
	BodyMethodNotAllowed = "Method Not Allowed"
	BodyBadRequest       = "Bad Request"
	BodyDeliveryFailed   = "Email delivery failed"
)

// Handler exposes a Service over HTTP.
type Handler struct {
	service *Service
	logger  *monitoring.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates the relay endpoint. logger and metrics may be nil.
func NewHandler(service *Service, logger *monitoring.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: metrics}
}

// Send accepts a contact payload and relays it as an email. Register it for
// every method; anything but POST gets 405.
func (h *Handler) Send(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		c.String(http.StatusMethodNotAllowed, BodyMethodNotAllowed)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			apperrors.LogError(c, apperrors.NewBadRequestError("relay panicked", fmt.Errorf("%v", r)))
			c.String(http.StatusBadRequest, BodyBadRequest)
		}
	}()

	var p contact.Payload
	err := c.ShouldBindJSON(&p)
	if err == nil {
		err = p.Validate()
	}
	if err != nil {
		apperrors.LogError(c, apperrors.NewBadRequestError("invalid relay payload", err))
		c.String(http.StatusBadRequest, BodyBadRequest)
		return
	}

	err = h.service.Send(c.Request.Context(), p)
	h.observe(p, err)
	if err != nil {
		appErr := apperrors.ToAppError(err)
		apperrors.LogError(c, appErr)
		if appErr.Category == apperrors.CategoryExternalAPI {
			c.String(http.StatusInternalServerError, BodyDeliveryFailed)
			return
		}
		c.String(http.StatusBadRequest, BodyBadRequest)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) observe(p contact.Payload, err error) {
	delivered := err == nil
	if h.metrics != nil {
		h.metrics.RecordLead(p.Service, delivered)
	}
	if h.logger != nil {
		h.logger.LeadLogger(p.Service, p.Total, string(quiz.TierFor(p.Total)), delivered)
	}
}
