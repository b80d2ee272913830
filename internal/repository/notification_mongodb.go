package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"classifieds-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBNotificationRepository implements NotificationRepository using MongoDB.
type MongoDBNotificationRepository struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoDBNotificationRepository creates a new MongoDB notification repository.
func NewMongoDBNotificationRepository(uri, database, collection string) (*MongoDBNotificationRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	coll := db.Collection(collection)

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Printf("[MongoDB] Warning: failed to create index: %v", err)
	}

	log.Printf("[MongoDB] Connected to %s/%s", database, collection)
	return &MongoDBNotificationRepository{
		client:     client,
		db:         db,
		collection: coll,
	}, nil
}

// notificationDocument represents a notification document in MongoDB.
type notificationDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Type      string    `bson:"type"`
	Title     string    `bson:"title"`
	Body      string    `bson:"body"`
	TargetID  string    `bson:"target_id,omitempty"`
	IsRead    bool      `bson:"is_read"`
	CreatedAt time.Time `bson:"created_at"`
}

// Insert stores a notification.
func (r *MongoDBNotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	doc := notificationDocument{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		TargetID:  n.TargetID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListForUser returns the user's notifications, newest first.
func (r *MongoDBNotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []model.Notification{}
	for cursor.Next(ctx) {
		var doc notificationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		notifications = append(notifications, model.Notification{
			ID:        doc.ID,
			UserID:    doc.UserID,
			Type:      doc.Type,
			Title:     doc.Title,
			Body:      doc.Body,
			TargetID:  doc.TargetID,
			IsRead:    doc.IsRead,
			CreatedAt: doc.CreatedAt,
		})
	}
	return notifications, cursor.Err()
}

// UnreadCount returns how many notifications the user has not read.
func (r *MongoDBNotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return int(count), nil
}

// MarkRead marks a single notification read.
func (r *MongoDBNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkAllRead marks every notification of the user read.
func (r *MongoDBNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark all read: %w", err)
	}
	return nil
}

// Close disconnects the MongoDB client.
func (r *MongoDBNotificationRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
