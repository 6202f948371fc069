package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"iris-api/services"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

// ExportReport handles GET /reports/export?report_type=&from_date=&to_date=.
// The CSV is buffered so a failure can still be answered with a JSON error.
func (h *ReportController) ExportReport(c *gin.Context) {
	req := services.ReportRequest{
		Type: c.Query("report_type"),
		From: c.Query("from_date"),
		To:   c.Query("to_date"),
	}
	var buf bytes.Buffer
	if err := h.reports.Export(c.Request.Context(), &buf, req); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, req.Filename()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
