package service

import (
	"context"

	"github.com/klass-lk/blogboot/internal/model"
)

type PostStore interface {
	Save(ctx context.Context, post model.Post) error
	FindById(ctx context.Context, id string) (model.Post, error)
	List(ctx context.Context, filter model.PostFilter) ([]model.Post, error)
	Related(ctx context.Context, post model.Post) ([]model.Post, error)
	Patch(ctx context.Context, id string, patch model.PostPatch) (model.Post, error)
	DeleteById(ctx context.Context, id string) (model.Post, error)
}

type CommentStore interface {
	Save(ctx context.Context, comment model.Comment) error
	FindByPost(ctx context.Context, postID string) ([]model.Comment, error)
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type UserStore interface {
	Save(ctx context.Context, user model.User) error
	SaveOrUpdate(ctx context.Context, user model.User) error
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindSummaries(ctx context.Context, ids []string, fields ...string) (map[string]model.UserSummary, error)
}

type TokenIssuer interface {
	Generate(userID, role string) (string, error)
}
