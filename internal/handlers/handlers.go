package handlers

import (
	"github.com/enamahmedshahaz/peoples-forum-server/internal/auth"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/moderation"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Post         *PostHandler
	Comment      *CommentHandler
	Report       *ReportHandler
	Announcement *AnnouncementHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(s store.Store, manager *auth.Manager) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(manager),
		User:         NewUserHandler(s),
		Post:         NewPostHandler(s),
		Comment:      NewCommentHandler(s),
		Report:       NewReportHandler(s, moderation.NewCoordinator(s)),
		Announcement: NewAnnouncementHandler(s),
	}
}
