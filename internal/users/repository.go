package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Repository defines persistence operations for user profiles.
type Repository interface {
	// Upsert merges the profile fields on every sign-in. createdAt is set
	// only on first sight; passwordHash is never touched by Upsert.
	Upsert(ctx context.Context, u *models.User) (*models.User, error)
	// Create inserts a brand-new account and fails with ErrEmailTaken when
	// the email is already in use.
	Create(ctx context.Context, u *models.User) error
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	// FindByEmail is an exact match on the normalized (trimmed, lowercased)
	// email. Returns ErrNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SetDisplayName(ctx context.Context, uid, displayName string) error
	SetPhotoURL(ctx context.Context, uid, photoURL string) error
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MongoRepository implements Repository using MongoDB.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Upsert(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	set := bson.M{
		"email":     NormalizeEmail(u.Email),
		"lastLogin": now,
	}
	// keep an existing profile field rather than blanking it when the
	// incoming claims omit it
	if u.DisplayName != "" {
		set["displayName"] = u.DisplayName
	}
	if u.PhotoURL != "" {
		set["photoURL"] = u.PhotoURL
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": u.UID}, update, opts).Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoRepository) Create(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *MongoRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": uid}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoRepository) SetDisplayName(ctx context.Context, uid, displayName string) error {
	return r.setField(ctx, uid, "displayName", displayName)
}

func (r *MongoRepository) SetPhotoURL(ctx context.Context, uid, photoURL string) error {
	return r.setField(ctx, uid, "photoURL", photoURL)
}

func (r *MongoRepository) setField(ctx context.Context, uid, field, value string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
