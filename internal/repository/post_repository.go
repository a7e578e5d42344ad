package repository

import (
	"context"

	"github.com/klass-lk/blogboot/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostRepository struct {
	*MongoRepository[model.Post]
}

func NewPostRepository(database *mongo.Database) *PostRepository {
	return &PostRepository{
		MongoRepository: NewMongoRepository[model.Post](database),
	}
}

func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: 1}}},
	})
	return err
}

// List returns the posts matching filter, newest first.
func (r *PostRepository) List(ctx context.Context, filter model.PostFilter) ([]model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.FindByFilters(ctx, PostListFilter(filter), opts)
}

func (r *PostRepository) Related(ctx context.Context, post model.Post) ([]model.Post, error) {
	filter, ok := RelatedPostsFilter(post.ID, post.Title)
	if !ok {
		return []model.Post{}, nil
	}
	return r.FindByFilters(ctx, filter)
}

// Patch sets the non-nil fields of patch and stamps updatedAt.
func (r *PostRepository) Patch(ctx context.Context, id string, patch model.PostPatch) (model.Post, error) {
	set, err := toSetDocument(patch)
	if err != nil {
		return model.Post{}, err
	}
	set = append(set, bson.E{Key: "updatedAt", Value: now()})
	return r.UpdateById(ctx, id, bson.D{{Key: "$set", Value: set}})
}
