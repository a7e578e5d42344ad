package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/repository"
	"github.com/klass-lk/blogboot/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testEncoder() security.PasswordEncoder {
	return &security.BcryptEncoder{Cost: bcrypt.MinCost}
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	req := model.RegisterRequest{Email: " Ann@Example.com ", Username: "ann", Password: "secret1"}

	t.Run("hashes password and normalizes email", func(t *testing.T) {
		users := new(MockUserStore)
		users.On("FindByEmail", ctx, "ann@example.com").Return(model.User{}, repository.ErrNotFound)
		users.On("Save", ctx, mock.Anything).Return(nil)

		user, err := NewUserService(users, testEncoder(), stubTokens{}).Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", user.Email)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.NotEqual(t, "secret1", user.Password)
		assert.True(t, testEncoder().IsMatching(user.Password, "secret1"))
	})

	t.Run("email taken", func(t *testing.T) {
		users := new(MockUserStore)
		users.On("FindByEmail", ctx, "ann@example.com").Return(model.User{ID: "u1"}, nil)

		_, err := NewUserService(users, testEncoder(), stubTokens{}).Register(ctx, req)
		assertStatus(t, err, http.StatusBadRequest, "Email already registered")
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := testEncoder().GetPasswordHash("secret1")
	require.NoError(t, err)
	stored := model.User{ID: "u1", Email: "ann@example.com", Password: hash, Role: model.RoleAdmin}

	t.Run("valid credentials", func(t *testing.T) {
		users := new(MockUserStore)
		users.On("FindByEmail", ctx, "ann@example.com").Return(stored, nil)

		token, user, err := NewUserService(users, testEncoder(), stubTokens{token: "jwt"}).
			Login(ctx, model.LoginRequest{Email: "ann@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "jwt", token)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(MockUserStore)
		users.On("FindByEmail", ctx, "ann@example.com").Return(stored, nil)

		_, _, err := NewUserService(users, testEncoder(), stubTokens{token: "jwt"}).
			Login(ctx, model.LoginRequest{Email: "ann@example.com", Password: "nope"})
		assertStatus(t, err, http.StatusUnauthorized, "Invalid email or password")
	})

	t.Run("unknown email", func(t *testing.T) {
		users := new(MockUserStore)
		users.On("FindByEmail", ctx, "who@example.com").Return(model.User{}, repository.ErrNotFound)

		_, _, err := NewUserService(users, testEncoder(), stubTokens{}).
			Login(ctx, model.LoginRequest{Email: "who@example.com", Password: "secret1"})
		assertStatus(t, err, http.StatusUnauthorized, "Invalid email or password")
	})
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	users := new(MockUserStore)
	users.On("FindByEmail", ctx, "admin@example.com").Return(model.User{ID: "a1", Email: "admin@example.com", Role: model.RoleUser}, nil)
	users.On("SaveOrUpdate", ctx, mock.MatchedBy(func(u model.User) bool {
		return u.ID == "a1" && u.Role == model.RoleAdmin
	})).Return(nil)

	user, err := NewUserService(users, testEncoder(), stubTokens{}).EnsureAdmin(ctx, "admin@example.com", "admin", "changeme")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
	users.AssertExpectations(t)
}
