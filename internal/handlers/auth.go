package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/auth"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/models"
)

type AuthHandler struct {
	manager *auth.Manager
}

func NewAuthHandler(manager *auth.Manager) *AuthHandler {
	return &AuthHandler{manager: manager}
}

// IssueToken mints a bearer token for a client-asserted identity. The
// upstream sign-in provider has already authenticated the user; this
// endpoint only turns that identity into a credential this service can
// verify on its own.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var input models.TokenRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokenString, err := h.manager.Issue(input.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}
