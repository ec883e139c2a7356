package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/gridboard/pkg/cache"
	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// MongoCollection is the collection layouts are stored in.
const MongoCollection = "layouts"

// MongoStore keeps one document per layout, keyed by the layout id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, verifies the connection and ensures the
// updated_at index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeInvalidConfig, err, "mongo uri")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, gberr.Wrap(gberr.ErrCodeNetwork, err, "connect mongo")
	}

	s := &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(MongoCollection),
	}
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "create index")
	}
	return s, nil
}

// Get returns the document with the given id.
func (s *MongoStore) Get(ctx context.Context, id string) (*layout.Record, error) {
	var rec layout.Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "get layout %s", id)
	}
	return &rec, nil
}

// List returns all layouts sorted by updated_at descending.
func (s *MongoStore) List(ctx context.Context) ([]*layout.Record, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "list layouts")
	}

	var recs []*layout.Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "list layouts")
	}
	return recs, nil
}

// Save validates rec and upserts it by id.
func (s *MongoStore) Save(ctx context.Context, rec *layout.Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return gberr.Wrap(gberr.ErrCodeStorage, err, "save layout %s", rec.ID)
	}
	return nil
}

// Delete removes the document with the given id, if any.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return gberr.Wrap(gberr.ErrCodeStorage, err, "delete layout %s", id)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
