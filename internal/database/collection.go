// server/internal/database/collection.go
package database

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fruit-store-api-server/internal/apperr"
)

// ErrNotFound is returned by FindOne when no document matches.
var ErrNotFound = errors.New("document not found")

// Collection is the storage contract for one entity collection. Filters and
// updates use plain bson so they read the same as the queries in the shell.
type Collection[T any] interface {
	// Find returns up to limit documents after skipping skip. limit <= 0
	// means no limit.
	Find(ctx context.Context, filter bson.M, skip, limit int64) ([]T, error)
	// FindRaw is Find without decoding, for callers that must survive a
	// malformed document.
	FindRaw(ctx context.Context, filter bson.M, skip, limit int64) ([]bson.Raw, error)
	FindOne(ctx context.Context, filter bson.M) (*T, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	InsertOne(ctx context.Context, doc *T) (primitive.ObjectID, error)
	// UpdateOne applies $set to the first match and returns the match count.
	UpdateOne(ctx context.Context, filter bson.M, set bson.M) (int64, error)
	// DeleteOne removes the first match and returns the deleted count.
	DeleteOne(ctx context.Context, filter bson.M) (int64, error)
}

// MongoCollection implements Collection over a *mongo.Collection.
type MongoCollection[T any] struct {
	coll *mongo.Collection
}

func NewMongoCollection[T any](coll *mongo.Collection) *MongoCollection[T] {
	return &MongoCollection[T]{coll: coll}
}

func findOptions(skip, limit int64) *options.FindOptions {
	opts := options.Find()
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return opts
}

func (c *MongoCollection[T]) Find(ctx context.Context, filter bson.M, skip, limit int64) ([]T, error) {
	cursor, err := c.coll.Find(ctx, filter, findOptions(skip, limit))
	if err != nil {
		return nil, errors.Wrapf(err, "find %s", c.coll.Name())
	}
	defer cursor.Close(ctx)

	var docs []T
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decode %s", c.coll.Name())
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}

func (c *MongoCollection[T]) FindRaw(ctx context.Context, filter bson.M, skip, limit int64) ([]bson.Raw, error) {
	cursor, err := c.coll.Find(ctx, filter, findOptions(skip, limit))
	if err != nil {
		return nil, errors.Wrapf(err, "find %s", c.coll.Name())
	}
	defer cursor.Close(ctx)

	docs := []bson.Raw{}
	for cursor.Next(ctx) {
		// cursor.Current is reused by the driver, so copy it.
		docs = append(docs, append(bson.Raw(nil), cursor.Current...))
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate %s", c.coll.Name())
	}
	return docs, nil
}

func (c *MongoCollection[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := c.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "find one %s", c.coll.Name())
	}
	return &doc, nil
}

func (c *MongoCollection[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", c.coll.Name())
	}
	return n, nil
}

func (c *MongoCollection[T]) InsertOne(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	result, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(err, "insert %s", c.coll.Name())
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.Errorf("insert %s: unexpected id type %T", c.coll.Name(), result.InsertedID)
	}
	return oid, nil
}

func (c *MongoCollection[T]) UpdateOne(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	result, err := c.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, errors.Wrapf(err, "update %s", c.coll.Name())
	}
	return result.MatchedCount, nil
}

func (c *MongoCollection[T]) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	result, err := c.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "delete %s", c.coll.Name())
	}
	return result.DeletedCount, nil
}

// ParseID parses a hex ObjectID from a path or form value.
func ParseID(hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidInputf("Invalid identifier: %q", hex)
	}
	return oid, nil
}

// ByID is the filter for a document's system identifier.
func ByID(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id}
}
