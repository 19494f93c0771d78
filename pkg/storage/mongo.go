package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection  = "users"
	GraphsCollection = "graphs"
)

// MongoStore persists users and graphs in MongoDB.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	graphs *mongo.Collection
}

// graphDoc stores nodes and edges as JSON text so the editor payload is
// kept byte for byte.
type graphDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Name      string    `bson:"graph_name"`
	NodesJSON string    `bson:"nodes_json"`
	EdgesJSON string    `bson:"edges_json"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri, pings the server and ensures the unique
// indexes on users.email and graphs.user_id exist.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client: client,
		users:  db.Collection(UsersCollection),
		graphs: db.Collection(GraphsCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	if _, err := s.graphs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("create graphs index: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u *User) error {
	u.Email = NormalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.findUser(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (s *MongoStore) UserByID(ctx context.Context, id string) (*User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) SaveGraph(ctx context.Context, g *StoredGraph) (*StoredGraph, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"graph_name": g.Name,
			"nodes_json": string(g.Nodes),
			"edges_json": string(g.Edges),
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc graphDoc
	if err := s.graphs.FindOneAndUpdate(ctx, bson.M{"user_id": g.UserID}, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("save graph: %w", err)
	}
	return doc.toStored(), nil
}

func (s *MongoStore) LoadGraph(ctx context.Context, userID string) (*StoredGraph, error) {
	var doc graphDoc
	if err := s.graphs.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load graph: %w", err)
	}
	return doc.toStored(), nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (d graphDoc) toStored() *StoredGraph {
	return &StoredGraph{
		ID:        d.ID,
		UserID:    d.UserID,
		Name:      d.Name,
		Nodes:     []byte(d.NodesJSON),
		Edges:     []byte(d.EdgesJSON),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

var _ Store = (*MongoStore)(nil)
