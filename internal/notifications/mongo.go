package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores every user's notifications in one collection keyed by
// userId, which stands in for a per-user sub-collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, n *Notification) (string, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if _, err := m.col.InsertOne(ctx, n); err != nil {
		return "", err
	}
	return n.ID, nil
}

func (m *MongoRepo) ListByUser(ctx context.Context, uid string) ([]*Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"userId": uid}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Notification{}
	for cur.Next(ctx) {
		var n Notification
		if err := cur.Decode(&n); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, cur.Err()
}

// MarkRead flips one entry to read. Re-marking an already-read entry is a
// successful no-op.
func (m *MongoRepo) MarkRead(ctx context.Context, uid, id string) error {
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": id, "userId": uid}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead flips every unread entry in one batched write, never a loop of
// independent updates.
func (m *MongoRepo) MarkAllRead(ctx context.Context, uid string) (int64, error) {
	res, err := m.col.UpdateMany(ctx, bson.M{"userId": uid, "read": false}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
