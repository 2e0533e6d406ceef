package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/middleware"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/moderation"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/models"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

type ReportHandler struct {
	store       store.Store
	coordinator *moderation.Coordinator
}

func NewReportHandler(s store.Store, coordinator *moderation.Coordinator) *ReportHandler {
	return &ReportHandler{store: s, coordinator: coordinator}
}

// CreateReport files a report against a comment (PROTECTED). The comment
// must exist when the report is filed.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var input models.CreateReportRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.store.FindByID(c.Request.Context(), models.CommentsCollection, input.CommentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch comment"})
		return
	}

	report := models.Report{
		CommentID:     input.CommentID,
		ReporterEmail: c.GetString(middleware.EmailKey),
		Reason:        input.Reason,
		CreatedAt:     time.Now().UTC(),
	}

	id, err := h.store.Insert(c.Request.Context(), models.ReportsCollection, report)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to create report"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"insertedId": id})
}

// GetReports returns all open reports, newest first (ADMIN).
func (h *ReportHandler) GetReports(c *gin.Context) {
	docs, err := h.store.RunPipeline(c.Request.Context(), models.ReportsCollection, []store.Stage{
		store.Sort{Keys: []store.SortKey{{Field: "createdAt", Desc: true}}},
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch reports"})
		return
	}

	reports := make([]models.Report, 0, len(docs))
	for _, doc := range docs {
		var report models.Report
		if err := store.Decode(doc, &report); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode report"})
			return
		}
		reports = append(reports, report)
	}

	c.JSON(http.StatusOK, reports)
}

// DeleteReport resolves a report (ADMIN): the report and its target comment
// go away together or not at all.
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	result, err := h.coordinator.ResolveReport(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to resolve report"})
		return
	}

	c.JSON(http.StatusOK, result)
}
