package models

// Collection names in the document store.
const (
	UsersCollection         = "users"
	PostsCollection         = "posts"
	CommentsCollection      = "comments"
	ReportsCollection       = "reports"
	AnnouncementsCollection = "announcements"
)
