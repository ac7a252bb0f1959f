package archive

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoDatabase   = "topolab"
	mongoCollection = "snapshots"
)

// MongoStore keeps snapshots in a MongoDB collection so several operators
// can share one archive. Documents land in topolab.snapshots, indexed on
// fetched_at for the newest-first listing.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and prepares the snapshot collection.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(mongoDatabase).Collection(mongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "fetched_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ensure snapshot index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, snap *Snapshot) error {
	if _, err := s.coll.InsertOne(ctx, snap); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Snapshot, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "fetched_at", Value: -1}}).
		SetProjection(bson.D{{Key: "raw", Value: 0}})

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var snaps []Snapshot
	if err := cur.All(ctx, &snaps); err != nil {
		return nil, fmt.Errorf("decode snapshots: %w", err)
	}
	return snaps, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var snap Snapshot
	err := s.coll.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return &snap, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
