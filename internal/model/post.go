package model

import (
	"time"
)

// AllCategories is the category value that disables category filtering.
const AllCategories = "All Categories"

type Post struct {
	ID        string    `bson:"_id" json:"_id"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	Category  string    `bson:"category" json:"category"`
	CoverImg  string    `bson:"coverImg" json:"coverImg"`
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`
	Author    string    `bson:"author" json:"author"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (Post) GetCollectionName() string {
	return "posts"
}

// PostView is a post with its author resolved to a user summary.
type PostView struct {
	Post
	Author *UserSummary `json:"author"`
}

type PostDetail struct {
	Post     PostView      `json:"post"`
	Comments []CommentView `json:"comments"`
}

type CreatePostRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	Category string `json:"category"`
	CoverImg string `json:"coverImg"`
	Location string `json:"location"`
}

// PostPatch holds the mutable post fields. Nil fields are left untouched.
type PostPatch struct {
	Title    *string `json:"title" bson:"title,omitempty"`
	Content  *string `json:"content" bson:"content,omitempty"`
	Category *string `json:"category" bson:"category,omitempty"`
	CoverImg *string `json:"coverImg" bson:"coverImg,omitempty"`
	Location *string `json:"location" bson:"location,omitempty"`
}

func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Category == nil && p.CoverImg == nil && p.Location == nil
}

type PostFilter struct {
	Search   string `form:"search" json:"search"`
	Category string `form:"category" json:"category"`
	Location string `form:"location" json:"location"`
}

type PostResponse struct {
	Message string `json:"message"`
	Post    Post   `json:"post"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
