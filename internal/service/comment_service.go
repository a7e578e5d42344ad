package service

import (
	"context"
	"errors"
	"time"

	"github.com/klass-lk/blogboot/internal/apperror"
	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentService struct {
	comments CommentStore
	posts    PostStore
	now      func() time.Time
}

func NewCommentService(comments CommentStore, posts PostStore) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a comment by userID on an existing post.
func (s *CommentService) Create(ctx context.Context, userID string, req model.CreateCommentRequest) (model.Comment, error) {
	_, err := s.posts.FindById(ctx, req.PostID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Comment{}, apperror.NotFound("Post not found")
	}
	if err != nil {
		return model.Comment{}, apperror.Wrap(err, "Failed to create comment")
	}

	comment := model.Comment{
		ID:        primitive.NewObjectID().Hex(),
		Comment:   req.Comment,
		PostID:    req.PostID,
		User:      userID,
		CreatedAt: s.now(),
	}
	if err := s.comments.Save(ctx, comment); err != nil {
		return model.Comment{}, apperror.Wrap(err, "Failed to create comment")
	}
	return comment, nil
}

func (s *CommentService) Total(ctx context.Context) (int64, error) {
	total, err := s.comments.Count(ctx)
	if err != nil {
		return 0, apperror.Wrap(err, "Failed to count comments")
	}
	return total, nil
}
