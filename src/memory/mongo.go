package memory

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHistory keeps one document per session with an ordered turns array.
// $push is atomic per document, so per-session append ordering is enforced
// by the server.
type MongoHistory struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoHistory(ctx context.Context, uri, database, collection string) (*MongoHistory, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		database = "agent_host"
	}
	if collection == "" {
		collection = "sessions"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoHistory{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

type mongoSession struct {
	ID        string    `bson:"_id"`
	Turns     []Turn    `bson:"turns"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (s *MongoHistory) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	update := bson.M{
		"$push": bson.M{"turns": bson.M{"$each": turns}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := s.collection.UpdateByID(ctx, sessionID, update, options.Update().SetUpsert(true))
	return err
}

func (s *MongoHistory) History(ctx context.Context, sessionID string) ([]Turn, error) {
	var doc mongoSession
	err := s.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Turns, nil
}

// Close disconnects from the mongo deployment.
func (s *MongoHistory) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ HistoryStore = (*MongoHistory)(nil)
