package model

import "time"

type Comment struct {
	ID        string    `bson:"_id" json:"_id"`
	Comment   string    `bson:"comment" json:"comment"`
	PostID    string    `bson:"postId" json:"postId"`
	User      string    `bson:"user" json:"user"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (Comment) GetCollectionName() string {
	return "comments"
}

type CommentView struct {
	Comment
	User *UserSummary `json:"user"`
}

type CreateCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
	PostID  string `json:"postId" binding:"required"`
}

type CommentResponse struct {
	Message string  `json:"message"`
	Comment Comment `json:"comment"`
}

type TotalCommentsResponse struct {
	TotalComment int64 `json:"totalComment"`
}
