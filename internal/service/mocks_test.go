package service

import (
	"context"

	"github.com/klass-lk/blogboot/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockPostStore struct {
	mock.Mock
}

func (m *MockPostStore) Save(ctx context.Context, post model.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostStore) FindById(ctx context.Context, id string) (model.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostStore) List(ctx context.Context, filter model.PostFilter) ([]model.Post, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostStore) Related(ctx context.Context, post model.Post) ([]model.Post, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostStore) Patch(ctx context.Context, id string, patch model.PostPatch) (model.Post, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostStore) DeleteById(ctx context.Context, id string) (model.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Post), args.Error(1)
}

type MockCommentStore struct {
	mock.Mock
}

func (m *MockCommentStore) Save(ctx context.Context, comment model.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *MockCommentStore) FindByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockCommentStore) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Save(ctx context.Context, user model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) SaveOrUpdate(ctx context.Context, user model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) FindSummaries(ctx context.Context, ids []string, fields ...string) (map[string]model.UserSummary, error) {
	args := m.Called(ctx, ids, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.UserSummary), args.Error(1)
}

type stubTokens struct {
	token string
	err   error
}

func (s stubTokens) Generate(userID, role string) (string, error) {
	return s.token, s.err
}
