// Package mongo stores layouts in a MongoDB collection, one document per run
// with the run id as _id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	gnerrors "github.com/matzehuels/gitnetwork/pkg/errors"
	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/store"
)

// Defaults.
const (
	DefaultDatabase   = "gitnetwork"
	Collection        = "layouts"
	connectTimeout    = 10 * time.Second
	createdAtIndexKey = "created_at"
)

// Config holds connection settings.
type Config struct {
	URI      string
	Database string // defaults to DefaultDatabase
}

// Store is a MongoDB-backed store.Store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// New connects to MongoDB, verifies the connection and ensures the
// created_at index exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := gnerrors.ValidateURL(cfg.URI); err != nil {
		return nil, err
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, gnerrors.Wrap(gnerrors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, gnerrors.Wrap(gnerrors.ErrCodeNetwork, err, "ping mongodb")
	}

	s := &Store{client: client, coll: client.Database(cfg.Database).Collection(Collection)}
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: createdAtIndexKey, Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

func (s *Store) Save(ctx context.Context, l *graph.Layout) (string, error) {
	store.Prepare(l)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": l.RunID}, l, options.Replace().SetUpsert(true))
	if err != nil {
		return "", gnerrors.Wrap(gnerrors.ErrCodeNetwork, err, "save layout %s", l.RunID)
	}
	return l.RunID, nil
}

func (s *Store) Load(ctx context.Context, id string) (*graph.Layout, error) {
	var l graph.Layout
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, gnerrors.Wrap(gnerrors.ErrCodeNetwork, err, "load layout %s", id)
	}
	return &l, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]graph.Meta, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: createdAtIndexKey, Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"nodes": 0, "timeline": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, gnerrors.Wrap(gnerrors.ErrCodeNetwork, err, "list layouts")
	}
	defer cur.Close(ctx)

	var metas []graph.Meta
	for cur.Next(ctx) {
		var l graph.Layout
		if err := cur.Decode(&l); err != nil {
			return nil, fmt.Errorf("decode layout: %w", err)
		}
		metas = append(metas, l.Meta)
	}
	if err := cur.Err(); err != nil {
		return nil, gnerrors.Wrap(gnerrors.ErrCodeNetwork, err, "list layouts")
	}
	return metas, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return gnerrors.Wrap(gnerrors.ErrCodeNetwork, err, "delete layout %s", id)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}
