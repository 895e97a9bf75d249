package repository

import (
	"context"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/document"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on two collections: documents and their
// versions. Version records reference their parent by docId, which stands in
// for a sub-collection.
type MongoRepo struct {
	docs     *mongo.Collection
	versions *mongo.Collection
}

func NewMongoRepo(docs, versions *mongo.Collection) *MongoRepo {
	ctx := context.Background()
	docs.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "ownerId", Value: 1}}})
	versions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "docId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return &MongoRepo{docs: docs, versions: versions}
}

func (m *MongoRepo) Create(ctx context.Context, doc *document.Document) (string, error) {
	now := time.Now().UTC()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Collaborators == nil {
		doc.Collaborators = map[string]document.Collaborator{}
	}
	if _, err := m.docs.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	var d document.Document
	err := m.docs.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) ListOwned(ctx context.Context, uid string) ([]*document.Document, error) {
	return m.list(ctx, bson.M{"ownerId": uid})
}

func (m *MongoRepo) ListShared(ctx context.Context, uid string) ([]*document.Document, error) {
	filter := bson.M{
		"collaborators." + uid: bson.M{"$exists": true},
		"ownerId":              bson.M{"$ne": uid},
	}
	return m.list(ctx, filter)
}

func (m *MongoRepo) list(ctx context.Context, filter bson.M) ([]*document.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := m.docs.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (m *MongoRepo) UpdateContent(ctx context.Context, id, content string) error {
	return m.set(ctx, id, bson.M{"content": content, "updatedAt": time.Now().UTC()})
}

func (m *MongoRepo) UpdateTitle(ctx context.Context, id, title string) error {
	return m.set(ctx, id, bson.M{"title": title, "updatedAt": time.Now().UTC()})
}

// SetCollaborator writes a single collaborators.<uid> entry as a field merge,
// leaving other entries untouched.
func (m *MongoRepo) SetCollaborator(ctx context.Context, docID, uid string, c document.Collaborator) error {
	return m.set(ctx, docID, bson.M{"collaborators." + uid: c})
}

// UpdateCollaboratorRole overwrites only the role field of an existing entry.
func (m *MongoRepo) UpdateCollaboratorRole(ctx context.Context, docID, uid, role string) error {
	filter := bson.M{"_id": docID, "collaborators." + uid: bson.M{"$exists": true}}
	res, err := m.docs.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"collaborators." + uid + ".role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) RemoveCollaborator(ctx context.Context, docID, uid string) error {
	res, err := m.docs.UpdateOne(ctx, bson.M{"_id": docID}, bson.M{"$unset": bson.M{"collaborators." + uid: ""}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.docs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) AddVersion(ctx context.Context, v *document.Version) (string, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now().UTC()
	}
	if _, err := m.versions.InsertOne(ctx, v); err != nil {
		return "", err
	}
	return v.ID, nil
}

func (m *MongoRepo) ListVersions(ctx context.Context, docID string) ([]*document.Version, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := m.versions.Find(ctx, bson.M{"docId": docID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Version{}
	for cur.Next(ctx) {
		var v document.Version
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func (m *MongoRepo) GetVersion(ctx context.Context, docID, versionID string) (*document.Version, error) {
	var v document.Version
	err := m.versions.FindOne(ctx, bson.M{"_id": versionID, "docId": docID}).Decode(&v)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (m *MongoRepo) DeleteVersions(ctx context.Context, docID string) error {
	_, err := m.versions.DeleteMany(ctx, bson.M{"docId": docID})
	return err
}

func (m *MongoRepo) set(ctx context.Context, id string, fields bson.M) error {
	res, err := m.docs.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
