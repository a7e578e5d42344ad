package repository

import (
	"context"

	"github.com/klass-lk/blogboot/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentRepository struct {
	*MongoRepository[model.Comment]
}

func NewCommentRepository(database *mongo.Database) *CommentRepository {
	return &CommentRepository{
		MongoRepository: NewMongoRepository[model.Comment](database),
	}
}

func (r *CommentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}

func (r *CommentRepository) FindByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.FindBy(ctx, "postId", postID, opts)
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	return r.DeleteBy(ctx, "postId", postID)
}

func (r *CommentRepository) Count(ctx context.Context) (int64, error) {
	return r.CountByFilters(ctx, bson.M{})
}
