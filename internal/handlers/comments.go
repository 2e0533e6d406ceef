package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/middleware"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/models"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

type CommentHandler struct {
	store store.Store
}

func NewCommentHandler(s store.Store) *CommentHandler {
	return &CommentHandler{store: s}
}

// GetComments returns all comments for a post, newest first.
func (h *CommentHandler) GetComments(c *gin.Context) {
	docs, err := h.store.RunPipeline(c.Request.Context(), models.CommentsCollection, []store.Stage{
		store.Match{Filter: bson.M{"postId": c.Param("id")}},
		store.Sort{Keys: []store.SortKey{{Field: "createdAt", Desc: true}}},
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch comments"})
		return
	}

	comments := make([]models.Comment, 0, len(docs))
	for _, doc := range docs {
		var comment models.Comment
		if err := store.Decode(doc, &comment); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode comment"})
			return
		}
		comments = append(comments, comment)
	}

	c.JSON(http.StatusOK, comments)
}

// CreateComment creates a new comment on a post (PROTECTED). The post must
// exist at insertion time.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	postID := c.Param("id")
	if _, err := h.store.FindByID(c.Request.Context(), models.PostsCollection, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch post"})
		return
	}

	comment := models.Comment{
		PostID:      postID,
		AuthorEmail: c.GetString(middleware.EmailKey),
		Body:        input.Body,
		CreatedAt:   time.Now().UTC(),
	}

	id, err := h.store.Insert(c.Request.Context(), models.CommentsCollection, comment)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"insertedId": id})
}
