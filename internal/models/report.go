package models

import "time"

type Report struct {
	ID            string    `bson:"_id,omitempty" json:"_id"`
	CommentID     string    `bson:"commentId" json:"commentId"`
	ReporterEmail string    `bson:"reporterEmail" json:"reporterEmail"`
	Reason        string    `bson:"reason" json:"reason"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

type CreateReportRequest struct {
	CommentID string `json:"commentId" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}
