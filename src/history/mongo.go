// Package history persists finished conversation turns for audit and
// later inspection. Archiving is best-effort: the agent never blocks a
// reply on it.
package history

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/productstack/assistant"
)

const mongoCloseTimeout = 5 * time.Second

// MongoArchiver appends conversation turns to a MongoDB collection, one
// document per turn.
type MongoArchiver struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoArchiver(ctx context.Context, uri, database, collection string) (*MongoArchiver, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		return nil, errors.New("mongo collection name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoArchiver{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// SaveTurns inserts one document per turn, preserving their order.
func (a *MongoArchiver) SaveTurns(ctx context.Context, sessionID string, turns []assistant.Turn) error {
	if a == nil || a.collection == nil || len(turns) == 0 {
		return nil
	}
	docs := make([]any, 0, len(turns))
	for _, turn := range turns {
		doc := bson.M{
			"session_id": sessionID,
			"kind":       string(turn.Kind),
			"text":       turn.Text,
			"at":         turn.At,
		}
		if turn.CallID != "" {
			doc["call_id"] = turn.CallID
		}
		if turn.ToolName != "" {
			doc["tool_name"] = turn.ToolName
		}
		if len(turn.Arguments) > 0 {
			doc["arguments"] = turn.Arguments
		}
		if turn.Result != nil {
			doc["result"] = bson.M{"ok": turn.Result.OK, "text": turn.Result.Text}
		}
		docs = append(docs, doc)
	}
	_, err := a.collection.InsertMany(ctx, docs)
	return err
}

// Load returns up to limit archived turns for a session in chronological
// order. limit <= 0 means all.
func (a *MongoArchiver) Load(ctx context.Context, sessionID string, limit int) ([]assistant.Turn, error) {
	if a == nil || a.collection == nil {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := a.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var turns []assistant.Turn
	for cursor.Next(ctx) {
		var doc struct {
			Kind      string         `bson:"kind"`
			Text      string         `bson:"text"`
			CallID    string         `bson:"call_id"`
			ToolName  string         `bson:"tool_name"`
			Arguments map[string]any `bson:"arguments"`
			Result    *struct {
				OK   bool   `bson:"ok"`
				Text string `bson:"text"`
			} `bson:"result"`
			At time.Time `bson:"at"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		turn := assistant.Turn{
			Kind:      assistant.TurnKind(doc.Kind),
			Text:      doc.Text,
			CallID:    doc.CallID,
			ToolName:  doc.ToolName,
			Arguments: doc.Arguments,
			At:        doc.At,
		}
		if doc.Result != nil {
			turn.Result = &assistant.ToolResult{OK: doc.Result.OK, Text: doc.Result.Text}
		}
		turns = append(turns, turn)
	}
	return turns, cursor.Err()
}

// CreateSchema ensures the collection is indexed for per-session reads.
func (a *MongoArchiver) CreateSchema(ctx context.Context) error {
	if a == nil || a.collection == nil {
		return nil
	}
	_, err := a.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "at", Value: 1}},
		Options: options.Index().SetName("session_at"),
	})
	return err
}

// Close releases the underlying MongoDB client.
func (a *MongoArchiver) Close() error {
	if a == nil || a.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return a.client.Disconnect(ctx)
}
