// Package dbtest provides an in-memory database.Store for tests. It supports
// the subset of MongoDB filter semantics the application uses: top-level
// equality with numeric cross-type comparison, and the $gt/$gte/$lt/$lte/$in
// operators.
package dbtest

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/models"
)

// Collection is an in-memory database.Collection.
type Collection[T any] struct {
	mu   sync.Mutex
	docs []bson.Raw

	// Err, when set, is returned by every operation.
	Err error
}

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{}
}

// Memory exposes the typed collections behind a store built by NewStore.
type Memory struct {
	Customers *Collection[models.Customer]
	Fruits    *Collection[models.Fruit]
	Suppliers *Collection[models.Supplier]
	Orders    *Collection[models.Order]
}

// NewStore returns a store backed by empty in-memory collections.
func NewStore() (*database.Store, *Memory) {
	mem := &Memory{
		Customers: NewCollection[models.Customer](),
		Fruits:    NewCollection[models.Fruit](),
		Suppliers: NewCollection[models.Supplier](),
		Orders:    NewCollection[models.Order](),
	}
	store := &database.Store{
		Customers: mem.Customers,
		Fruits:    mem.Fruits,
		Suppliers: mem.Suppliers,
		Orders:    mem.Orders,
	}
	return store, mem
}

// Seed inserts documents of any shape (bson.D, bson.M or a struct), which
// lets tests store legacy or malformed documents. It returns their ids.
func (c *Collection[T]) Seed(docs ...any) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		id, err := c.insert(d)
		if err != nil {
			panic(err)
		}
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of stored documents.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// Raw returns a copy of the stored document with the given id.
func (c *Collection[T]) Raw(id primitive.ObjectID) (bson.Raw, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.docs {
		if matches(d, bson.M{"_id": id}) {
			return append(bson.Raw(nil), d...), true
		}
	}
	return nil, false
}

func (c *Collection[T]) insert(doc any) (primitive.ObjectID, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return primitive.NilObjectID, err
	}

	id := primitive.NewObjectID()
	if v, err := bson.Raw(raw).LookupErr("_id"); err == nil {
		if oid, ok := v.ObjectIDOK(); ok {
			id = oid
		}
	} else {
		d = append(bson.D{{Key: "_id", Value: id}}, d...)
		if raw, err = bson.Marshal(d); err != nil {
			return primitive.NilObjectID, err
		}
	}

	c.mu.Lock()
	c.docs = append(c.docs, raw)
	c.mu.Unlock()
	return id, nil
}

func (c *Collection[T]) selectRaw(filter bson.M, skip, limit int64) []bson.Raw {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []bson.Raw
	var skipped int64
	for _, d := range c.docs {
		if !matches(d, filter) {
			continue
		}
		if skipped < skip {
			skipped++
			continue
		}
		out = append(out, append(bson.Raw(nil), d...))
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out
}

func (c *Collection[T]) Find(_ context.Context, filter bson.M, skip, limit int64) ([]T, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	out := []T{}
	for _, raw := range c.selectRaw(filter, skip, limit) {
		var doc T
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (c *Collection[T]) FindRaw(_ context.Context, filter bson.M, skip, limit int64) ([]bson.Raw, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	out := c.selectRaw(filter, skip, limit)
	if out == nil {
		out = []bson.Raw{}
	}
	return out, nil
}

func (c *Collection[T]) FindOne(_ context.Context, filter bson.M) (*T, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	found := c.selectRaw(filter, 0, 1)
	if len(found) == 0 {
		return nil, database.ErrNotFound
	}
	var doc T
	if err := bson.Unmarshal(found[0], &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Collection[T]) Count(_ context.Context, filter bson.M) (int64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	return int64(len(c.selectRaw(filter, 0, 0))), nil
}

func (c *Collection[T]) InsertOne(_ context.Context, doc *T) (primitive.ObjectID, error) {
	if c.Err != nil {
		return primitive.NilObjectID, c.Err
	}
	return c.insert(doc)
}

func (c *Collection[T]) UpdateOne(_ context.Context, filter bson.M, set bson.M) (int64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, raw := range c.docs {
		if !matches(raw, filter) {
			continue
		}
		var d bson.D
		if err := bson.Unmarshal(raw, &d); err != nil {
			return 0, err
		}
		for k, v := range set {
			d = setField(d, k, v)
		}
		updated, err := bson.Marshal(d)
		if err != nil {
			return 0, err
		}
		c.docs[i] = updated
		return 1, nil
	}
	return 0, nil
}

func (c *Collection[T]) DeleteOne(_ context.Context, filter bson.M) (int64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, raw := range c.docs {
		if matches(raw, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func setField(d bson.D, key string, value any) bson.D {
	for i := range d {
		if d[i].Key == key {
			d[i].Value = value
			return d
		}
	}
	return append(d, bson.E{Key: key, Value: value})
}
