package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/shoplist/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const backendMongo = "mongo"

// Default MongoDB settings.
const (
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "shopping-list"
	DefaultMongoCollection = "items"
	defaultConnectTimeout  = 10 * time.Second
)

// itemDocument is the persisted shape of an Item.
type itemDocument struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

func (d itemDocument) toModel() model.Item {
	return model.Item{ID: d.ID.Hex(), Name: d.Name}
}

type mongoOptions struct {
	uri            string
	database       string
	collection     string
	connectTimeout time.Duration
	client         *mongo.Client
}

// MongoOption applies a configuration option to NewMongoStore.
type MongoOption func(*mongoOptions)

// WithURI sets the connection string.
func WithURI(uri string) MongoOption {
	return func(o *mongoOptions) {
		if uri != "" {
			o.uri = uri
		}
	}
}

// WithDatabase sets the database name.
func WithDatabase(name string) MongoOption {
	return func(o *mongoOptions) {
		if name != "" {
			o.database = name
		}
	}
}

// WithCollection sets the collection name.
func WithCollection(name string) MongoOption {
	return func(o *mongoOptions) {
		if name != "" {
			o.collection = name
		}
	}
}

// WithConnectTimeout bounds the initial connect and ping.
func WithConnectTimeout(d time.Duration) MongoOption {
	return func(o *mongoOptions) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithClient reuses an existing client. The store will not disconnect it on Close.
func WithClient(client *mongo.Client) MongoOption {
	return func(o *mongoOptions) {
		o.client = client
	}
}

// MongoStore is a Store backed by a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	coll       *mongo.Collection
	ownsClient bool
}

// NewMongoStore connects to MongoDB (unless WithClient is given), verifies the
// connection with a ping and returns a store bound to the configured collection.
func NewMongoStore(ctx context.Context, opts ...MongoOption) (*MongoStore, error) {
	o := mongoOptions{
		uri:            DefaultMongoURI,
		database:       DefaultMongoDatabase,
		collection:     DefaultMongoCollection,
		connectTimeout: defaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	client := o.client
	owns := false
	if client == nil {
		cctx, cancel := context.WithTimeout(ctx, o.connectTimeout)
		defer cancel()

		c, err := mongo.Connect(cctx, options.Client().
			ApplyURI(o.uri).
			SetConnectTimeout(o.connectTimeout).
			SetServerSelectionTimeout(o.connectTimeout))
		if err != nil {
			return nil, fmt.Errorf("%w: connect: %w", ErrUnavailable, err)
		}
		if err := c.Ping(cctx, readpref.Primary()); err != nil {
			_ = c.Disconnect(ctx)
			return nil, fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
		}
		client = c
		owns = true
	}

	return &MongoStore{
		client:     client,
		coll:       client.Database(o.database).Collection(o.collection),
		ownsClient: owns,
	}, nil
}

// Backend implements Store.
func (s *MongoStore) Backend() string { return backendMongo }

// Create implements Store.
func (s *MongoStore) Create(ctx context.Context, item model.Item) (_ model.Item, err error) {
	defer observe(backendMongo, "create", time.Now(), &err)

	if !model.ValidName(item.Name) {
		return model.Item{}, fmt.Errorf("%w: name is required", ErrInvalidDocument)
	}

	doc := itemDocument{ID: primitive.NewObjectID(), Name: item.Name}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return model.Item{}, s.wrap("insert", err)
	}
	return doc.toModel(), nil
}

// Find implements Store.
func (s *MongoStore) Find(ctx context.Context) (_ []model.Item, err error) {
	defer observe(backendMongo, "find", time.Now(), &err)

	// ObjectIDs grow with creation time, so _id order is insertion order.
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, s.wrap("find", err)
	}
	var docs []itemDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, s.wrap("decode", err)
	}

	out := make([]model.Item, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// FindByIDAndUpdate implements Store.
func (s *MongoStore) FindByIDAndUpdate(ctx context.Context, id string, patch model.ItemPatch) (_ model.Item, err error) {
	defer observe(backendMongo, "update", time.Now(), &err)

	oid, err := ParseID(id)
	if err != nil {
		return model.Item{}, err
	}
	if patch.Empty() {
		return model.Item{}, fmt.Errorf("%w: empty patch", ErrInvalidDocument)
	}
	if !model.ValidName(*patch.Name) {
		return model.Item{}, fmt.Errorf("%w: name is required", ErrInvalidDocument)
	}

	var doc itemDocument
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"name": *patch.Name}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return model.Item{}, s.lookupErr(id, err)
	}
	return doc.toModel(), nil
}

// FindByIDAndRemove implements Store.
func (s *MongoStore) FindByIDAndRemove(ctx context.Context, id string) (_ model.Item, err error) {
	defer observe(backendMongo, "remove", time.Now(), &err)

	oid, err := ParseID(id)
	if err != nil {
		return model.Item{}, err
	}

	var doc itemDocument
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return model.Item{}, s.lookupErr(id, err)
	}
	return doc.toModel(), nil
}

// Count implements Store.
func (s *MongoStore) Count(ctx context.Context) (_ int, err error) {
	defer observe(backendMongo, "count", time.Now(), &err)
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, s.wrap("count", err)
	}
	return int(n), nil
}

// Drop removes the whole collection. Tests use it for teardown.
func (s *MongoStore) Drop(ctx context.Context) error {
	if err := s.coll.Drop(ctx); err != nil {
		return s.wrap("drop", err)
	}
	return nil
}

// Close implements Store. The client is disconnected only if the store created it.
func (s *MongoStore) Close(ctx context.Context) error {
	if !s.ownsClient {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		if errors.Is(err, mongo.ErrClientDisconnected) {
			return nil
		}
		return s.wrap("disconnect", err)
	}
	return nil
}

func (s *MongoStore) lookupErr(id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.wrap("lookup", err)
}

func (s *MongoStore) wrap(op string, err error) error {
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %s: %w", ErrClosed, op, err)
	}
	return fmt.Errorf("mongo %s: %w", op, err)
}
