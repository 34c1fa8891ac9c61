package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB defaults.
const (
	DefaultMongoDatabase   = "pluginrelease"
	DefaultMongoCollection = "snapshots"
	DefaultMongoSnapshot   = "registry"
)

// MongoStore keeps the snapshot as one document of a collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	id         string
}

type snapshotDoc struct {
	ID        string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoTarget struct {
	uri      string
	database string
	id       string
}

// NewMongoStore connects to the deployment named by uri. The database is
// taken from the URI path (default "pluginrelease") and the document id
// from the snapshot parameter (default "registry").
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	target, err := parseMongoURI(uri)
	if err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(target.uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(target.database).Collection(DefaultMongoCollection),
		id:         target.id,
	}, nil
}

func parseMongoURI(uri string) (mongoTarget, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return mongoTarget{}, fmt.Errorf("parse mongodb uri: %w", err)
	}
	q := u.Query()
	id := q.Get("snapshot")
	if id == "" {
		id = DefaultMongoSnapshot
	}
	q.Del("snapshot")
	u.RawQuery = q.Encode()

	db := strings.Trim(u.Path, "/")
	if db == "" {
		db = DefaultMongoDatabase
	}
	return mongoTarget{uri: u.String(), database: db, id: id}, nil
}

// Load implements Source.
func (s *MongoStore) Load(ctx context.Context) ([]byte, bool, error) {
	var doc snapshotDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": s.id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find snapshot %s: %w", s.id, err)
	}
	return doc.Data, true, nil
}

// Save implements Sink.
func (s *MongoStore) Save(ctx context.Context, data []byte) error {
	doc := snapshotDoc{ID: s.id, Data: data, UpdatedAt: time.Now().UTC()}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": s.id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace snapshot %s: %w", s.id, err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
