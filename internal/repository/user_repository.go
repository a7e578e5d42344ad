package repository

import (
	"context"

	"github.com/klass-lk/blogboot/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	*MongoRepository[model.User]
}

func NewUserRepository(database *mongo.Database) *UserRepository {
	return &UserRepository{
		MongoRepository: NewMongoRepository[model.User](database),
	}
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.FindOneBy(ctx, "email", email)
}

// FindSummaries loads the given fields of the users in ids, keyed by id.
// Unknown ids are absent from the result.
func (r *UserRepository) FindSummaries(ctx context.Context, ids []string, fields ...string) (map[string]model.UserSummary, error) {
	summaries := make(map[string]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	projection := bson.D{{Key: "_id", Value: 1}}
	for _, field := range fields {
		projection = append(projection, bson.E{Key: field, Value: 1})
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.Collection().Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []model.UserSummary
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		summaries[u.ID] = u
	}
	return summaries, nil
}
