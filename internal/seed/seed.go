package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/klass-lk/blogboot/internal/model"
)

type UserRegistrar interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
}

type PostCreator interface {
	Create(ctx context.Context, authorID string, req model.CreatePostRequest) (model.Post, error)
}

type CommentCreator interface {
	Create(ctx context.Context, userID string, req model.CreateCommentRequest) (model.Comment, error)
}

type Result struct {
	Users    int
	Posts    int
	Comments int
}

// Seeder writes fixtures through the services so that stored documents
// look exactly like ones created over the API.
type Seeder struct {
	users    UserRegistrar
	posts    PostCreator
	comments CommentCreator
	known    map[string]string
}

func NewSeeder(users UserRegistrar, posts PostCreator, comments CommentCreator) *Seeder {
	return &Seeder{
		users:    users,
		posts:    posts,
		comments: comments,
		known:    make(map[string]string),
	}
}

// Know makes an existing account, such as the admin, usable as an author
// or commenter in fixtures.
func (s *Seeder) Know(email, userID string) {
	s.known[normalize(email)] = userID
}

func (s *Seeder) Apply(ctx context.Context, fixtures Fixtures) (Result, error) {
	var result Result

	for _, fixture := range fixtures.Users {
		user, err := s.users.Register(ctx, model.RegisterRequest{
			Email:    fixture.Email,
			Username: fixture.Username,
			Password: fixture.Password,
		})
		if err != nil {
			return result, fmt.Errorf("register %s: %w", fixture.Email, err)
		}
		s.Know(user.Email, user.ID)
		result.Users++
	}

	for _, fixture := range fixtures.Posts {
		authorID, err := s.userID(fixture.Author)
		if err != nil {
			return result, fmt.Errorf("post %q: %w", fixture.Title, err)
		}
		post, err := s.posts.Create(ctx, authorID, model.CreatePostRequest{
			Title:    fixture.Title,
			Content:  fixture.Content,
			Category: fixture.Category,
			CoverImg: fixture.CoverImg,
			Location: fixture.Location,
		})
		if err != nil {
			return result, fmt.Errorf("create post %q: %w", fixture.Title, err)
		}
		result.Posts++

		for _, c := range fixture.Comments {
			userID, err := s.userID(c.User)
			if err != nil {
				return result, fmt.Errorf("comment on %q: %w", fixture.Title, err)
			}
			if _, err := s.comments.Create(ctx, userID, model.CreateCommentRequest{Comment: c.Comment, PostID: post.ID}); err != nil {
				return result, fmt.Errorf("comment on %q: %w", fixture.Title, err)
			}
			result.Comments++
		}
	}

	slog.Info("Seeded database", "users", result.Users, "posts", result.Posts, "comments", result.Comments)
	return result, nil
}

func (s *Seeder) userID(email string) (string, error) {
	id, ok := s.known[normalize(email)]
	if !ok {
		return "", fmt.Errorf("unknown user %s", email)
	}
	return id, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
