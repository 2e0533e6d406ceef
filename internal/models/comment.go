package models

import "time"

type Comment struct {
	ID          string    `bson:"_id,omitempty" json:"_id"`
	PostID      string    `bson:"postId" json:"postId"`
	AuthorEmail string    `bson:"authorEmail" json:"authorEmail"`
	Body        string    `bson:"body" json:"body"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}
