package models

import "time"

type Post struct {
	ID            string     `bson:"_id,omitempty" json:"_id"`
	AuthorName    string     `bson:"authorName" json:"authorName"`
	AuthorEmail   string     `bson:"authorEmail" json:"authorEmail"`
	AuthorImage   string     `bson:"authorImage" json:"authorImage"`
	Title         string     `bson:"title" json:"title"`
	Description   string     `bson:"description,omitempty" json:"description,omitempty"`
	Tags          []string   `bson:"tags" json:"tags"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	UpVoteCount   int        `bson:"upVoteCount" json:"upVoteCount"`
	DownVoteCount int        `bson:"downVoteCount" json:"downVoteCount"`
}

// PostView is a Post enriched with the derived fields the ranking engine
// computes per query. None of these are ever written back to the store.
type PostView struct {
	Post           `bson:",inline"`
	VoteBalance    int       `bson:"voteBalance" json:"voteBalance"`
	LatestActivity time.Time `bson:"latestActivity" json:"latestActivity"`
	CommentCount   int       `bson:"commentCount" json:"commentCount"`
}

type CreatePostRequest struct {
	AuthorName  string   `json:"authorName" binding:"required"`
	AuthorImage string   `json:"authorImage"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
