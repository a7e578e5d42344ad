package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/klass-lk/blogboot/internal/apperror"
	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostService struct {
	posts    PostStore
	comments CommentStore
	users    UserStore
	now      func() time.Time
}

func NewPostService(posts PostStore, comments CommentStore, users UserStore) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *PostService) Create(ctx context.Context, authorID string, req model.CreatePostRequest) (model.Post, error) {
	now := s.now()
	post := model.Post{
		ID:        primitive.NewObjectID().Hex(),
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		CoverImg:  req.CoverImg,
		Location:  req.Location,
		Author:    authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Save(ctx, post); err != nil {
		return model.Post{}, apperror.Wrap(err, "Failed to create post")
	}
	return post, nil
}

func (s *PostService) List(ctx context.Context, filter model.PostFilter) ([]model.PostView, error) {
	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch posts")
	}

	authors, err := s.users.FindSummaries(ctx, authorIDs(posts), "email")
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch posts")
	}

	views := make([]model.PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, model.PostView{Post: post, Author: lookup(authors, post.Author)})
	}
	return views, nil
}

// Get returns the post with its author and every comment on it.
func (s *PostService) Get(ctx context.Context, id string) (model.PostDetail, error) {
	post, err := s.posts.FindById(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.PostDetail{}, apperror.NotFound("Post not found")
	}
	if err != nil {
		return model.PostDetail{}, apperror.Wrap(err, "Failed to fetch post")
	}

	comments, err := s.comments.FindByPost(ctx, id)
	if err != nil {
		return model.PostDetail{}, apperror.Wrap(err, "Failed to fetch post")
	}

	ids := []string{post.Author}
	for _, c := range comments {
		ids = append(ids, c.User)
	}
	users, err := s.users.FindSummaries(ctx, unique(ids), "email", "username")
	if err != nil {
		return model.PostDetail{}, apperror.Wrap(err, "Failed to fetch post")
	}

	views := make([]model.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, model.CommentView{Comment: c, User: lookup(users, c.User)})
	}
	return model.PostDetail{
		Post:     model.PostView{Post: post, Author: lookup(users, post.Author)},
		Comments: views,
	}, nil
}

// Update sets the fields present in patch. An empty patch returns the post unchanged.
func (s *PostService) Update(ctx context.Context, id string, patch model.PostPatch) (model.Post, error) {
	var (
		post model.Post
		err  error
	)
	if patch.IsEmpty() {
		post, err = s.posts.FindById(ctx, id)
	} else {
		post, err = s.posts.Patch(ctx, id, patch)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return model.Post{}, apperror.NotFound("Post not found")
	}
	if err != nil {
		return model.Post{}, apperror.Wrap(err, "Failed to update post")
	}
	return post, nil
}

// Delete removes the post and then its comments. The two writes are
// independent; a failure between them leaves the comments behind.
func (s *PostService) Delete(ctx context.Context, id string) (model.Post, int64, error) {
	post, err := s.posts.DeleteById(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Post{}, 0, apperror.NotFound("Post not found")
	}
	if err != nil {
		return model.Post{}, 0, apperror.Wrap(err, "Failed to delete post")
	}

	removed, err := s.comments.DeleteByPost(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "post deleted but its comments were not", "post_id", id, "error", err)
		return post, 0, apperror.Wrap(err, "Failed to delete post")
	}
	return post, removed, nil
}

// Related returns the other posts whose titles share a word with the post's title.
func (s *PostService) Related(ctx context.Context, id string) ([]model.Post, error) {
	if id == "" {
		return nil, apperror.BadRequest("Blog ID is required")
	}

	post, err := s.posts.FindById(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("Blog post not found")
	}
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch related posts")
	}

	related, err := s.posts.Related(ctx, post)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch related posts")
	}
	return related, nil
}

func authorIDs(posts []model.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.Author)
	}
	return unique(ids)
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func lookup(users map[string]model.UserSummary, id string) *model.UserSummary {
	u, ok := users[id]
	if !ok {
		return nil
	}
	return &u
}
