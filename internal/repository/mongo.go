package repository

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	readTimeout  = 5 * time.Second
	queryTimeout = 10 * time.Second
)

// ErrNotFound is returned when no document matches.
var ErrNotFound = errors.New("document not found")

type Document interface {
	GetCollectionName() string
}

type MongoRepository[T Document] struct {
	collection *mongo.Collection
}

func NewMongoRepository[T Document](db *mongo.Database) *MongoRepository[T] {
	var doc T
	return &MongoRepository[T]{
		collection: db.Collection(doc.GetCollectionName()),
	}
}

func (r *MongoRepository[T]) Collection() *mongo.Collection {
	return r.collection
}

func (r *MongoRepository[T]) FindById(ctx context.Context, id string) (T, error) {
	return r.FindOneBy(ctx, "_id", id)
}

func (r *MongoRepository[T]) FindAllById(ctx context.Context, ids []string, opts ...*options.FindOptions) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	return r.FindByFilters(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts...)
}

func (r *MongoRepository[T]) Save(ctx context.Context, doc T) error {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

func (r *MongoRepository[T]) SaveOrUpdate(ctx context.Context, doc T) error {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": documentID(doc)}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoRepository[T]) SaveAll(ctx context.Context, docs []T) error {
	if len(docs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	operations := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		operations = append(operations, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": documentID(doc)}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	_, err := r.collection.BulkWrite(ctx, operations)
	return err
}

// UpdateById applies update and returns the document as it is afterwards.
func (r *MongoRepository[T]) UpdateById(ctx context.Context, id string, update interface{}) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var result T
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&result)
	return result, notFound(err)
}

// DeleteById removes the document and returns it.
func (r *MongoRepository[T]) DeleteById(ctx context.Context, id string) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var result T
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&result)
	return result, notFound(err)
}

func (r *MongoRepository[T]) DeleteBy(ctx context.Context, field string, value interface{}) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	res, err := r.collection.DeleteMany(ctx, bson.M{field: value})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoRepository[T]) FindOneBy(ctx context.Context, field string, value interface{}) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var result T
	err := r.collection.FindOne(ctx, bson.M{field: value}).Decode(&result)
	return result, notFound(err)
}

func (r *MongoRepository[T]) FindBy(ctx context.Context, field string, value interface{}, opts ...*options.FindOptions) ([]T, error) {
	return r.FindByFilters(ctx, bson.M{field: value}, opts...)
}

func (r *MongoRepository[T]) FindByFilters(ctx context.Context, filters interface{}, opts ...*options.FindOptions) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filters, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *MongoRepository[T]) CountByFilters(ctx context.Context, filters interface{}) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	return r.collection.CountDocuments(ctx, filters)
}

func (r *MongoRepository[T]) ExistsBy(ctx context.Context, field string, value interface{}) (bool, error) {
	count, err := r.CountByFilters(ctx, bson.M{field: value})
	return count > 0, err
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// documentID reads the field tagged bson:"_id".
func documentID(doc interface{}) string {
	val := reflect.ValueOf(doc)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		name, _, _ := strings.Cut(typ.Field(i).Tag.Get("bson"), ",")
		if name == "_id" {
			return val.Field(i).String()
		}
	}
	if idField := val.FieldByName("ID"); idField.IsValid() {
		return idField.String()
	}
	return ""
}
