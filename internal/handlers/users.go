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

type UserHandler struct {
	store store.Store
}

func NewUserHandler(s store.Store) *UserHandler {
	return &UserHandler{store: s}
}

// CreateUser records a user on first sign-in. Idempotent: a duplicate email
// is a no-op that signals "already exists" instead of erroring or inserting
// a second record.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var input models.CreateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.store.FindMany(c.Request.Context(), models.UsersCollection, bson.M{"email": input.Email})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to look up user"})
		return
	}
	if len(existing) > 0 {
		c.JSON(http.StatusOK, gin.H{"message": "user already exists", "insertedId": nil})
		return
	}

	user := models.User{
		Name:      input.Name,
		Email:     input.Email,
		Image:     input.Image,
		Role:      models.RoleMember,
		CreatedAt: time.Now().UTC(),
	}

	id, err := h.store.Insert(c.Request.Context(), models.UsersCollection, user)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"insertedId": id})
}

// GetUsers returns every registered user (ADMIN).
func (h *UserHandler) GetUsers(c *gin.Context) {
	docs, err := h.store.FindMany(c.Request.Context(), models.UsersCollection, bson.M{})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch users"})
		return
	}

	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		var user models.User
		if err := store.Decode(doc, &user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode user"})
			return
		}
		users = append(users, user)
	}

	c.JSON(http.StatusOK, users)
}

// CheckAdmin reports whether the caller is an admin (PROTECTED). Callers
// can only ask about themselves; the ownership check runs before any store
// access.
func (h *UserHandler) CheckAdmin(c *gin.Context) {
	email := c.Param("email")
	if c.GetString(middleware.EmailKey) != email {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	docs, err := h.store.FindMany(c.Request.Context(), models.UsersCollection, bson.M{"email": email})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to look up user"})
		return
	}

	admin := false
	if len(docs) > 0 {
		var user models.User
		if err := store.Decode(docs[0], &user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode user"})
			return
		}
		admin = user.IsAdmin()
	}

	c.JSON(http.StatusOK, gin.H{"admin": admin})
}

// MakeAdmin promotes a member to admin (ADMIN). There is no demotion path;
// promoting an admin again is a no-op.
func (h *UserHandler) MakeAdmin(c *gin.Context) {
	userID := c.Param("id")

	if _, err := h.store.FindByID(c.Request.Context(), models.UsersCollection, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to look up user"})
		return
	}

	if _, err := h.store.UpdateByID(c.Request.Context(), models.UsersCollection, userID, bson.M{"role": models.RoleAdmin}); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User promoted to admin"})
}
