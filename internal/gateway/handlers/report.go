package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	repsvc "github.com/Pankaj72885/care.xyz/internal/report/service"
)

type ReportHandler struct {
	svc *repsvc.ReportSvc
}

func NewReportHandler(svc *repsvc.ReportSvc) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// parseRange reads from/to query params, accepting RFC3339 or plain dates.
// An open "to" bound defaults to now.
func parseRange(c *gin.Context) (repsvc.Range, bool) {
	var rng repsvc.Range
	parse := func(s string) (time.Time, error) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", s)
	}
	if s := c.Query("from"); s != "" {
		t, err := parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return rng, false
		}
		rng.From = t
		rng.To = time.Now()
	}
	if s := c.Query("to"); s != "" {
		t, err := parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return rng, false
		}
		rng.To = t
	}
	return rng, true
}

// GET /v1/admin/reports/sales?from=&to=
func (h *ReportHandler) Sales(c *gin.Context) {
	rng, ok := parseRange(c)
	if !ok {
		return
	}
	rep, err := h.svc.Sales(c.Request.Context(), rng)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// GET /v1/admin/reports/services?from=&to=
func (h *ReportHandler) Services(c *gin.Context) {
	rng, ok := parseRange(c)
	if !ok {
		return
	}
	rows, err := h.svc.Services(c.Request.Context(), rng)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": rows})
}

// GET /v1/dashboard: the caller's own booking stats.
func (h *ReportHandler) Dashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard(c.Request.Context(), callerID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
