package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/klass-lk/blogboot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	users    []model.User
	posts    []model.Post
	comments []model.Comment
	failPost string
}

func (f *fakeStore) Register(_ context.Context, req model.RegisterRequest) (model.User, error) {
	user := model.User{
		ID:       fmt.Sprintf("u%d", len(f.users)+1),
		Email:    strings.ToLower(req.Email),
		Username: req.Username,
		Role:     model.RoleUser,
	}
	f.users = append(f.users, user)
	return user, nil
}

type postCreator struct{ *fakeStore }

func (p postCreator) Create(_ context.Context, authorID string, req model.CreatePostRequest) (model.Post, error) {
	if req.Title == p.failPost {
		return model.Post{}, errors.New("insert failed")
	}
	post := model.Post{
		ID:       fmt.Sprintf("p%d", len(p.posts)+1),
		Title:    req.Title,
		Category: req.Category,
		Location: req.Location,
		Author:   authorID,
	}
	p.posts = append(p.posts, post)
	return post, nil
}

type commentCreator struct{ *fakeStore }

func (c commentCreator) Create(_ context.Context, userID string, req model.CreateCommentRequest) (model.Comment, error) {
	comment := model.Comment{ID: fmt.Sprintf("c%d", len(c.comments)+1), Comment: req.Comment, PostID: req.PostID, User: userID}
	c.comments = append(c.comments, comment)
	return comment, nil
}

func newSeeder(store *fakeStore) *Seeder {
	return NewSeeder(store, postCreator{store}, commentCreator{store})
}

func TestLoadFile(t *testing.T) {
	fixtures, err := LoadFile("testdata/fixtures.yml")
	require.NoError(t, err)

	require.Len(t, fixtures.Users, 2)
	require.Len(t, fixtures.Posts, 2)
	assert.Equal(t, "Hiking to Ella", fixtures.Posts[0].Title)
	assert.Equal(t, "Ella", fixtures.Posts[0].Location)
	require.Len(t, fixtures.Posts[0].Comments, 2)
	assert.Equal(t, "kavya@blog.test", fixtures.Posts[0].Comments[1].User)
	assert.Empty(t, fixtures.Posts[1].Comments)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "missing title", yaml: "posts:\n  - author: a@b.c\n", want: "title is required"},
		{name: "missing author", yaml: "posts:\n  - title: Ella\n", want: "author is required"},
		{name: "not yaml", yaml: "posts: [", want: "parse fixtures"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSeeder_Apply(t *testing.T) {
	fixtures, err := LoadFile("testdata/fixtures.yml")
	require.NoError(t, err)

	store := &fakeStore{}
	seeder := newSeeder(store)
	seeder.Know("Admin@blog.test", "admin-id")

	result, err := seeder.Apply(context.Background(), fixtures)
	require.NoError(t, err)

	assert.Equal(t, Result{Users: 2, Posts: 2, Comments: 2}, result)
	assert.Equal(t, "admin-id", store.posts[0].Author)
	assert.Equal(t, "u1", store.posts[1].Author)
	assert.Equal(t, "p1", store.comments[0].PostID)
	assert.Equal(t, "u1", store.comments[0].User)
	assert.Equal(t, "u2", store.comments[1].User, "emails match case-insensitively")
}

func TestSeeder_Apply_Errors(t *testing.T) {
	t.Run("unknown author", func(t *testing.T) {
		_, err := newSeeder(&fakeStore{}).Apply(context.Background(), Fixtures{
			Posts: []PostFixture{{Title: "Ella", Author: "ghost@blog.test"}},
		})
		assert.ErrorContains(t, err, "unknown user ghost@blog.test")
	})

	t.Run("unknown commenter", func(t *testing.T) {
		seeder := newSeeder(&fakeStore{})
		seeder.Know("admin@blog.test", "admin-id")
		result, err := seeder.Apply(context.Background(), Fixtures{
			Posts: []PostFixture{{Title: "Ella", Author: "admin@blog.test", Comments: []CommentFixture{{User: "ghost@blog.test", Comment: "hi"}}}},
		})
		assert.ErrorContains(t, err, "unknown user ghost@blog.test")
		assert.Equal(t, 1, result.Posts)
	})

	t.Run("store failure", func(t *testing.T) {
		seeder := newSeeder(&fakeStore{failPost: "Ella"})
		seeder.Know("admin@blog.test", "admin-id")
		_, err := seeder.Apply(context.Background(), Fixtures{
			Posts: []PostFixture{{Title: "Ella", Author: "admin@blog.test"}},
		})
		assert.ErrorContains(t, err, "insert failed")
	})
}

func TestGenerate(t *testing.T) {
	opts := GeneratorOptions{Users: 3, Posts: 5, CommentsPerPost: 2, Seed: 42}

	fixtures := Generate(opts)

	require.Len(t, fixtures.Users, 3)
	require.Len(t, fixtures.Posts, 5)
	emails := map[string]bool{}
	for _, user := range fixtures.Users {
		emails[user.Email] = true
	}
	assert.Len(t, emails, 3, "generated emails are unique")
	for _, post := range fixtures.Posts {
		assert.NotEmpty(t, post.Title)
		assert.Contains(t, post.Title, post.Location)
		assert.Contains(t, categories, post.Category)
		assert.True(t, emails[post.Author])
		require.Len(t, post.Comments, 2)
		for _, c := range post.Comments {
			assert.True(t, emails[c.User])
		}
	}

	assert.Equal(t, fixtures, Generate(opts), "same seed gives the same fixtures")
}

func TestGenerate_FixedAuthor(t *testing.T) {
	fixtures := Generate(GeneratorOptions{Posts: 2, CommentsPerPost: 1, Seed: 7, Author: "admin@blog.test"})

	assert.Empty(t, fixtures.Users)
	require.Len(t, fixtures.Posts, 2)
	for _, post := range fixtures.Posts {
		assert.Equal(t, "admin@blog.test", post.Author)
		assert.Equal(t, "admin@blog.test", post.Comments[0].User)
	}

	_, err := newSeeder(&fakeStore{}).Apply(context.Background(), Generate(GeneratorOptions{Users: 2, Posts: 3, CommentsPerPost: 2, Seed: 1}))
	assert.NoError(t, err)
}

func TestGenerate_NoPeople(t *testing.T) {
	assert.Empty(t, Generate(GeneratorOptions{Posts: 3}).Posts)
}
