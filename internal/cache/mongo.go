package cache

import (
	"context"
	"errors"
	"time"

	"github.com/klass-lk/blogboot/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoService struct {
	repo *repository.MongoRepository[Entry]
}

func NewMongoService(db *mongo.Database) *MongoService {
	return &MongoService{repo: repository.NewMongoRepository[Entry](db)}
}

// EnsureIndexes lets MongoDB expire entries and index the tag array.
func (s *MongoService) EnsureIndexes(ctx context.Context) error {
	_, err := s.repo.Collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})
	return err
}

func (s *MongoService) Set(ctx context.Context, key string, data []byte, tags []string, duration time.Duration) error {
	now := time.Now()
	expires := now.Add(duration)
	return s.repo.SaveOrUpdate(ctx, Entry{
		PK:        key,
		Data:      data,
		Tags:      tags,
		TTL:       expires.Unix(),
		CreatedAt: now.Unix(),
		ExpiresAt: expires,
	})
}

func (s *MongoService) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.repo.FindById(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if entry.IsExpired() {
		_, _ = s.repo.DeleteById(ctx, key)
		return nil, nil
	}
	return entry.Data, nil
}

func (s *MongoService) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := s.repo.Collection().DeleteMany(ctx, bson.M{"tags": bson.M{"$in": tags}})
	return err
}
