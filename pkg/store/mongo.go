package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/graphdoc"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "splice"
	DefaultMongoCollection = "documents"
)

// MongoStore stores documents in a MongoDB collection, keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// record is the stored shape. The document body is its JSON text.
type record struct {
	Name      string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses database.collection. Empty names
// fall back to the defaults.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongo")
	}
	return NewMongoStoreFromClient(client, database, collection), nil
}

// NewMongoStoreFromClient creates a store over an existing client.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}
}

// Get loads the document stored under name.
func (s *MongoStore) Get(ctx context.Context, name string) (*graphdoc.Document, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}
	var rec record
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "get %s from mongo", name)
	}
	return graphdoc.Unmarshal([]byte(rec.Body))
}

// Put upserts the document.
func (s *MongoStore) Put(ctx context.Context, name string, doc *graphdoc.Document) error {
	data, err := encode(name, doc)
	if err != nil {
		return err
	}
	rec := record{Name: name, Body: string(data), UpdatedAt: time.Now().UTC()}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": name}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save %s to mongo", name)
	}
	return nil
}

// Delete removes the record for name.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete %s from mongo", name)
	}
	return nil
}

// List returns the stored names sorted by name.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list documents")
	}
	var recs []record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list documents")
	}
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	return names, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
