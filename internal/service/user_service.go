package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/klass-lk/blogboot/internal/apperror"
	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/repository"
	"github.com/klass-lk/blogboot/internal/security"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserService struct {
	users   UserStore
	encoder security.PasswordEncoder
	tokens  TokenIssuer
	now     func() time.Time
}

func NewUserService(users UserStore, encoder security.PasswordEncoder, tokens TokenIssuer) *UserService {
	return &UserService{
		users:   users,
		encoder: encoder,
		tokens:  tokens,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	email := normalizeEmail(req.Email)
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return model.User{}, apperror.BadRequest("Email already registered")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, apperror.Wrap(err, "Failed to register user")
	}

	hash, err := s.encoder.GetPasswordHash(req.Password)
	if err != nil {
		return model.User{}, apperror.Wrap(err, "Failed to register user")
	}

	user := model.User{
		ID:        primitive.NewObjectID().Hex(),
		Email:     email,
		Username:  req.Username,
		Password:  hash,
		Role:      model.RoleUser,
		CreatedAt: s.now(),
	}
	if err := s.users.Save(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.User{}, apperror.BadRequest("Email already registered")
		}
		return model.User{}, apperror.Wrap(err, "Failed to register user")
	}
	return user, nil
}

// Login checks the credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (string, model.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", model.User{}, apperror.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return "", model.User{}, apperror.Wrap(err, "Failed to login")
	}
	if !s.encoder.IsMatching(user.Password, req.Password) {
		return "", model.User{}, apperror.Unauthorized("Invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return "", model.User{}, apperror.Wrap(err, "Failed to login")
	}
	return token, user, nil
}

// EnsureAdmin creates or resets the admin account with the given credentials.
func (s *UserService) EnsureAdmin(ctx context.Context, email, username, password string) (model.User, error) {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = model.User{
			ID:        primitive.NewObjectID().Hex(),
			Email:     email,
			CreatedAt: s.now(),
		}
	case err != nil:
		return model.User{}, err
	}

	hash, err := s.encoder.GetPasswordHash(password)
	if err != nil {
		return model.User{}, err
	}
	user.Username = username
	user.Password = hash
	user.Role = model.RoleAdmin
	if err := s.users.SaveOrUpdate(ctx, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
