package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/models"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

type AnnouncementHandler struct {
	store store.Store
}

func NewAnnouncementHandler(s store.Store) *AnnouncementHandler {
	return &AnnouncementHandler{store: s}
}

// GetAnnouncements returns all announcements, newest first.
func (h *AnnouncementHandler) GetAnnouncements(c *gin.Context) {
	docs, err := h.store.RunPipeline(c.Request.Context(), models.AnnouncementsCollection, []store.Stage{
		store.Sort{Keys: []store.SortKey{{Field: "createdAt", Desc: true}}},
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch announcements"})
		return
	}

	announcements := make([]models.Announcement, 0, len(docs))
	for _, doc := range docs {
		var announcement models.Announcement
		if err := store.Decode(doc, &announcement); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode announcement"})
			return
		}
		announcements = append(announcements, announcement)
	}

	c.JSON(http.StatusOK, announcements)
}

// CountAnnouncements returns the total number of announcements.
func (h *AnnouncementHandler) CountAnnouncements(c *gin.Context) {
	docs, err := h.store.FindMany(c.Request.Context(), models.AnnouncementsCollection, bson.M{})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to count announcements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(docs)})
}

// CreateAnnouncement publishes an announcement (ADMIN).
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	var input models.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	announcement := models.Announcement{
		Title:     input.Title,
		Body:      input.Body,
		CreatedAt: time.Now().UTC(),
	}

	id, err := h.store.Insert(c.Request.Context(), models.AnnouncementsCollection, announcement)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to create announcement"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"insertedId": id})
}
