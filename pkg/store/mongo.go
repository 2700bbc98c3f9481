package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/okanele/orrery/pkg/drawing"
	"github.com/okanele/orrery/pkg/errors"
)

// MongoStore persists drawings in a MongoDB collection. Drawings are
// stored as BSON documents with the drawing ID as _id.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB and pings the primary once to fail
// fast on misconfiguration.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Put inserts or replaces the drawing under its ID.
func (s *MongoStore) Put(ctx context.Context, d drawing.Drawing) error {
	if d.ID == "" {
		return errors.New(errors.ErrCodeInvalidArgument, "drawing has no id")
	}
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": d.ID}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store drawing %s", d.ID)
	}
	return nil
}

// Get returns the drawing with the given ID.
func (s *MongoStore) Get(ctx context.Context, id string) (drawing.Drawing, error) {
	var d drawing.Drawing
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return drawing.Drawing{}, errors.New(errors.ErrCodeDrawingNotFound, "drawing %s not found", id)
	}
	if err != nil {
		return drawing.Drawing{}, errors.Wrap(errors.ErrCodeInternal, err, "load drawing %s", id)
	}
	return d, nil
}

// List returns up to limit drawings, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]drawing.Drawing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cur, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list drawings")
	}
	defer cur.Close(ctx)

	var out []drawing.Drawing
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode drawings")
	}
	return out, nil
}

// Delete removes the drawing with the given ID.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete drawing %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeDrawingNotFound, "drawing %s not found", id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
