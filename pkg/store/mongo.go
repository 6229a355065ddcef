package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/cellgraph/pkg/codec"
	"github.com/matzehuels/cellgraph/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "cellgraph"
	DefaultMongoCollection = "documents"
	mongoTimeout           = 10 * time.Second
)

// MongoStore keeps documents in a MongoDB collection, one BSON document
// per record keyed by its ID.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// OpenMongo connects to uri and uses the documents collection of database,
// or of [DefaultMongoDatabase] when database is empty.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if err := errors.ValidateURI(uri, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if database == "" {
		database = DefaultMongoDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, backendError(err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, backendError(err, "ping mongodb")
	}
	return NewMongoStore(client, database), nil
}

// NewMongoStore uses an existing client.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(DefaultMongoCollection),
	}
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	return load(ctx, BackendMongo, id, func() (*Record, error) {
		return s.find(ctx, id)
	})
}

func (s *MongoStore) find(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, backendError(err, "find document %q", id)
	}
	return &rec, nil
}

func (s *MongoStore) Put(ctx context.Context, id string, doc codec.Document) (*Record, error) {
	return save(ctx, BackendMongo, id, func() (*Record, int, error) {
		prev, err := s.find(ctx, id)
		if err != nil && !isNotFound(err) {
			return nil, 0, err
		}
		rec := next(id, prev, doc, time.Now().UTC().Truncate(time.Millisecond))
		data, err := bson.Marshal(rec)
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeInvalidDocument, err, "document %q", id)
		}

		// Replace only the revision that was read.
		filter := bson.M{"_id": id}
		if prev != nil {
			filter["revision"] = prev.Revision
		}
		res, err := s.collection.ReplaceOne(ctx, filter, rec, options.Replace().SetUpsert(prev == nil))
		if err != nil {
			return nil, 0, backendError(err, "store document %q", id)
		}
		if prev != nil && res.MatchedCount == 0 {
			return nil, 0, errors.New(errors.ErrCodeBackend, "document %q changed concurrently", id)
		}
		return rec, len(data), nil
	})
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return backendError(err, "delete document %q", id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1})
	cur, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, backendError(err, "list documents")
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, backendError(err, "decode document id")
		}
		ids = append(ids, row.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, backendError(err, "list documents")
	}
	return ids, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
