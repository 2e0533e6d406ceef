package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/middleware"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/models"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/ranking"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

type PostHandler struct {
	store  store.Store
	engine *ranking.Engine
}

func NewPostHandler(s store.Store) *PostHandler {
	return &PostHandler{store: s, engine: ranking.NewEngine(s)}
}

// GetPosts returns the feed. ?sort=1 ranks by vote balance (ties broken by
// latest activity), anything else by recency. ?email= filters by author
// before ranking, ?limit= caps the result.
func (h *PostHandler) GetPosts(c *gin.Context) {
	opts := ranking.ListOptions{Mode: ranking.ModeRecent}
	if c.Query("sort") == "1" {
		opts.Mode = ranking.ModeTop
	}
	opts.AuthorEmail = c.Query("email")
	if n, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && n > 0 {
		opts.Limit = n
	}

	views, err := h.engine.ListPosts(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, views)
}

// GetLatestPosts returns the newest posts by one author, top-N.
func (h *PostHandler) GetLatestPosts(c *gin.Context) {
	opts := ranking.ListOptions{
		Mode:        ranking.ModeRecent,
		AuthorEmail: c.Query("email"),
	}
	if n, err := strconv.ParseInt(c.Query("count"), 10, 64); err == nil && n > 0 {
		opts.Limit = n
	}

	views, err := h.engine.ListPosts(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, views)
}

// GetPost returns a single post with its full body and derived fields.
func (h *PostHandler) GetPost(c *gin.Context) {
	view, err := h.engine.GetPost(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch post"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// CountPosts returns the total number of posts.
func (h *PostHandler) CountPosts(c *gin.Context) {
	count, err := h.engine.CountPosts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to count posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetTags returns every tag in use, deduplicated and sorted.
func (h *PostHandler) GetTags(c *gin.Context) {
	tags, err := h.engine.ListTags(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch tags"})
		return
	}

	c.JSON(http.StatusOK, tags)
}

// CreatePost creates a new post (PROTECTED). The author email comes from
// the verified token, not the request body.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{
		AuthorName:  input.AuthorName,
		AuthorEmail: c.GetString(middleware.EmailKey),
		AuthorImage: input.AuthorImage,
		Title:       input.Title,
		Description: input.Description,
		Tags:        dedupeTags(input.Tags),
		CreatedAt:   time.Now().UTC(),
	}

	id, err := h.store.Insert(c.Request.Context(), models.PostsCollection, post)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"insertedId": id})
}

// DeletePost removes a post (PROTECTED).
func (h *PostHandler) DeletePost(c *gin.Context) {
	n, err := h.store.DeleteByID(c.Request.Context(), models.PostsCollection, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to delete post"})
		return
	}
	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deletedCount": n})
}

// VotePost bumps a post's vote counter (PROTECTED). The increment is a
// single atomic operation at the store so concurrent votes never overwrite
// one another.
func (h *PostHandler) VotePost(c *gin.Context) {
	postID := c.Param("id")

	var field string
	switch c.Param("direction") {
	case "up":
		field = "upVoteCount"
	case "down":
		field = "downVoteCount"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote direction must be up or down"})
		return
	}

	err := h.store.AtomicIncrement(c.Request.Context(), models.PostsCollection, postID, field, 1)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to vote"})
		return
	}

	doc, err := h.store.FindByID(c.Request.Context(), models.PostsCollection, postID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch post"})
		return
	}
	var post models.Post
	if err := store.Decode(doc, &post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upVoteCount":   post.UpVoteCount,
		"downVoteCount": post.DownVoteCount,
	})
}

// dedupeTags keeps the first occurrence of each tag. Posts never store the
// same tag twice.
func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
