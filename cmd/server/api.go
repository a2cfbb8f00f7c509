package main

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grupoquokka/diagnostico/internal/database"
	apperrors "github.com/grupoquokka/diagnostico/internal/errors"
	"github.com/grupoquokka/diagnostico/internal/monitoring"
	"github.com/grupoquokka/diagnostico/internal/quiz"
)

type diagnosticSummary struct {
	Slug      string `json:"slug"`
	Service   string `json:"service"`
	Title     string `json:"title"`
	Questions int    `json:"questions"`
}

type diagnosticDetail struct {
	quiz.Diagnostic
	Options  []quiz.Option `json:"options"`
	MaxScore int           `json:"max_score"`
}

type scoreRequest struct {
	Answers map[int]int `json:"answers" binding:"required"`
}

type scoreResponse struct {
	Total    int          `json:"total"`
	Max      int          `json:"max"`
	Missing  int          `json:"missing"`
	Complete bool         `json:"complete"`
	Progress string       `json:"progress"`
	Bucket   *quiz.Bucket `json:"bucket,omitempty"`
}

// api serves the JSON endpoints.
type api struct {
	catalog *quiz.Catalog
	leads   *database.LeadService
	metrics *monitoring.Metrics
}

func (a *api) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *api) listDiagnostics(c *gin.Context) {
	list := a.catalog.List()
	out := make([]diagnosticSummary, 0, len(list))
	for _, d := range list {
		out = append(out, diagnosticSummary{
			Slug:      d.Slug,
			Service:   d.ServiceLabel,
			Title:     d.Theme.Title,
			Questions: len(d.Questions),
		})
	}
	c.JSON(http.StatusOK, gin.H{"diagnostics": out})
}

func (a *api) lookup(c *gin.Context) (quiz.Diagnostic, bool) {
	slug := c.Param("slug")
	d, ok := a.catalog.Lookup(slug)
	if !ok {
		_ = c.Error(apperrors.NewNotFoundError("diagnostic", slug))
	}
	return d, ok
}

func (a *api) getDiagnostic(c *gin.Context) {
	d, ok := a.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, diagnosticDetail{Diagnostic: d, Options: quiz.Options, MaxScore: d.MaxScore()})
}

func (a *api) scoreDiagnostic(c *gin.Context) {
	d, ok := a.lookup(c)
	if !ok {
		return
	}

	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewBadRequestError("Invalid score request", err))
		return
	}

	ids := make([]int, 0, len(req.Answers))
	for id := range req.Answers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	form := quiz.NewForm(d)
	invalid := map[string]string{}
	for _, id := range ids {
		if _, err := form.Set(id, req.Answers[id]); err != nil {
			invalid["answers."+strconv.Itoa(id)] = err.Error()
		}
	}
	if len(invalid) > 0 {
		_ = c.Error(apperrors.NewValidationErrorWithMap("Invalid answers", invalid))
		return
	}

	t := form.Tally()
	resp := scoreResponse{
		Total:    t.Total,
		Max:      t.Max,
		Missing:  t.Missing,
		Complete: t.Complete(),
		Progress: t.Progress(),
	}
	if t.Complete() {
		b := d.Resolve(t.Total)
		resp.Bucket = &b
	}
	c.JSON(http.StatusOK, resp)
}

// leadStats reports the ledger counts, or the in-process counters when the
// ledger is disabled.
func (a *api) leadStats(c *gin.Context) {
	if a.leads == nil {
		c.JSON(http.StatusOK, gin.H{"source": "memory", "services": a.metrics.Leads()})
		return
	}

	stats, err := a.leads.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(apperrors.NewInternalError("Failed to read lead stats", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": "ledger", "total": stats.Total, "services": stats.Services})
}

// recentLeads lists the latest ledger entries without contact data.
func (a *api) recentLeads(c *gin.Context) {
	if a.leads == nil {
		_ = c.Error(apperrors.NewNotFoundError("lead ledger", "disabled"))
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		_ = c.Error(apperrors.NewBadRequestError("Invalid limit", err))
		return
	}
	leads, err := a.leads.Recent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(apperrors.NewInternalError("Failed to read leads", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

func (a *api) healthDetails(extra map[string]func() interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"metrics":   a.metrics.GetStats(),
		}
		for name, fn := range extra {
			resp[name] = fn()
		}
		c.JSON(http.StatusOK, resp)
	}
}
