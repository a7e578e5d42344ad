package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string    `bson:"_id" json:"_id"`
	Email     string    `bson:"email" json:"email"`
	Username  string    `bson:"username" json:"username"`
	Password  string    `bson:"password" json:"-"`
	Role      string    `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (User) GetCollectionName() string {
	return "users"
}

// UserSummary is the projection of a user embedded in posts and comments.
type UserSummary struct {
	ID       string `bson:"_id" json:"_id"`
	Email    string `bson:"email" json:"email"`
	Username string `bson:"username,omitempty" json:"username,omitempty"`
	Role     string `bson:"role,omitempty" json:"role,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}

type RegisterResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}
