package models

import "time"

// Roles a user can hold. Everyone starts as a member; promotion to admin
// is an admin-only action and there is no demotion path.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID        string    `bson:"_id,omitempty" json:"_id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Image     string    `bson:"image" json:"image"` // avatar URL
	Role      string    `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Image string `json:"image"`
}

type TokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}
