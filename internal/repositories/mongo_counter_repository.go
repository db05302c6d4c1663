package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/folio/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCounterRepository implements CounterRepository for MongoDB.
// Posts use the slug as _id; likes live in their own collection.
type MongoCounterRepository struct {
	posts *mongo.Collection
	likes *mongo.Collection
}

// NewMongoCounterRepository creates a new MongoCounterRepository
func NewMongoCounterRepository(db *mongo.Database) *MongoCounterRepository {
	return &MongoCounterRepository{
		posts: db.Collection("posts"),
		likes: db.Collection("likes"),
	}
}

// Migrate creates the index used by both like counts
func (r *MongoCounterRepository) Migrate(ctx context.Context) error {
	_, err := r.likes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_slug", Value: 1}, {Key: "user_ip", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create likes index: %w", err)
	}
	return nil
}

// IncrementViews upserts the post document with $inc
func (r *MongoCounterRepository) IncrementViews(ctx context.Context, slug string) (*models.Post, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$inc":         bson.M{"views": 1},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var post models.Post
	if err := r.posts.FindOneAndUpdate(ctx, bson.M{"_id": slug}, update, opts).Decode(&post); err != nil {
		return nil, fmt.Errorf("increment views for %q: %w", slug, err)
	}
	return &post, nil
}

// GetPost retrieves a post by slug from MongoDB
func (r *MongoCounterRepository) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.posts.FindOne(ctx, bson.M{"_id": slug}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post %q: %w", slug, err)
	}
	return &post, nil
}

// EnsurePost inserts an empty post document unless one exists
func (r *MongoCounterRepository) EnsurePost(ctx context.Context, slug string) error {
	now := time.Now().UTC()
	update := bson.M{"$setOnInsert": bson.M{"views": int64(0), "created_at": now, "updated_at": now}}
	if _, err := r.posts.UpdateOne(ctx, bson.M{"_id": slug}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("ensure post %q: %w", slug, err)
	}
	return nil
}

// CreateLike inserts a new like document
func (r *MongoCounterRepository) CreateLike(ctx context.Context, like *models.Like) error {
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now().UTC()
	}
	if _, err := r.likes.InsertOne(ctx, like); err != nil {
		return fmt.Errorf("create like on %q: %w", like.PostSlug, err)
	}
	return nil
}

// CountLikes counts like documents for a post
func (r *MongoCounterRepository) CountLikes(ctx context.Context, slug string) (int64, error) {
	count, err := r.likes.CountDocuments(ctx, bson.M{"post_slug": slug})
	if err != nil {
		return 0, fmt.Errorf("count likes on %q: %w", slug, err)
	}
	return count, nil
}

// CountLikesByIP counts like documents a visitor address left on a post
func (r *MongoCounterRepository) CountLikesByIP(ctx context.Context, slug, ip string) (int64, error) {
	count, err := r.likes.CountDocuments(ctx, bson.M{"post_slug": slug, "user_ip": ip})
	if err != nil {
		return 0, fmt.Errorf("count likes on %q from %s: %w", slug, ip, err)
	}
	return count, nil
}

// ListPostStats retrieves the most viewed posts with their like counts
func (r *MongoCounterRepository) ListPostStats(ctx context.Context, skip, limit int) ([]models.PostStats, error) {
	findOptions := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "views", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.posts.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list post stats: %w", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode post stats: %w", err)
	}

	stats := make([]models.PostStats, 0, len(posts))
	for _, p := range posts {
		likes, err := r.CountLikes(ctx, p.Slug)
		if err != nil {
			return nil, err
		}
		stats = append(stats, models.PostStats{Slug: p.Slug, Views: p.Views, Likes: likes})
	}
	return stats, nil
}
