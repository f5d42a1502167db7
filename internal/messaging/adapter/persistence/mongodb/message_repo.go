package mongodb

import (
	"context"
	"time"

	"quickchat/internal/messaging/domain/model"
	"quickchat/internal/messaging/usecase"
	apperrors "quickchat/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMessageRepository implements MessageRepository using MongoDB
type MongoMessageRepository struct {
	db                 *mongo.Database
	messagesCollection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoDB message repository
func NewMongoMessageRepository(db *mongo.Database) (*MongoMessageRepository, error) {
	repo := &MongoMessageRepository{
		db:                 db,
		messagesCollection: db.Collection("messages"),
	}

	ctx := context.Background()

	// Compound index covering conversation queries in both directions.
	convIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "senderId", Value: 1},
			{Key: "receiverId", Value: 1},
			{Key: "created_at", Value: 1},
		},
	}
	if _, err := repo.messagesCollection.Indexes().CreateOne(ctx, convIndex); err != nil {
		return nil, apperrors.NewInternalError("Failed to create conversation index").WithCause(err).WithComponent("message_repository")
	}

	idIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetSparse(true),
	}
	if _, err := repo.messagesCollection.Indexes().CreateOne(ctx, idIndex); err != nil {
		return nil, apperrors.NewInternalError("Failed to create id index").WithCause(err).WithComponent("message_repository")
	}

	return repo, nil
}

// Insert stores a new message.
func (r *MongoMessageRepository) Insert(ctx context.Context, message *model.Message) error {
	if message.ID == "" {
		message.ID = primitive.NewObjectID().Hex()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	doc := bson.M{
		"id":         message.ID,
		"senderId":   message.SenderID,
		"receiverId": message.ReceiverID,
		"seen":       message.Seen,
		"created_at": message.CreatedAt,
	}
	if message.Text != "" {
		doc["text"] = message.Text
	}
	if message.Image != "" {
		doc["image"] = message.Image
	}

	if _, err := r.messagesCollection.InsertOne(ctx, doc); err != nil {
		return apperrors.NewInternalError("Failed to store message").WithCause(err).WithComponent("message_repository")
	}
	return nil
}

// Conversation returns all messages between two users, oldest first.
func (r *MongoMessageRepository) Conversation(ctx context.Context, userID, otherID string) ([]*model.Message, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"senderId": userID, "receiverId": otherID},
			bson.M{"senderId": otherID, "receiverId": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.messagesCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load conversation").WithCause(err).WithComponent("message_repository")
	}
	defer cursor.Close(ctx)

	var messages []*model.Message
	for cursor.Next(ctx) {
		var message model.Message
		if err := cursor.Decode(&message); err != nil {
			return nil, err
		}
		messages = append(messages, &message)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkSeen marks a single message as seen.
func (r *MongoMessageRepository) MarkSeen(ctx context.Context, messageID string) error {
	result, err := r.messagesCollection.UpdateOne(ctx,
		bson.M{"id": messageID},
		bson.M{"$set": bson.M{"seen": true}},
	)
	if err != nil {
		return apperrors.NewInternalError("Failed to mark message seen").WithCause(err).WithComponent("message_repository")
	}
	if result.MatchedCount == 0 {
		return usecase.ErrMessageNotFound
	}
	return nil
}

// MarkConversationSeen marks every message from senderID to receiverID as seen.
func (r *MongoMessageRepository) MarkConversationSeen(ctx context.Context, senderID, receiverID string) error {
	_, err := r.messagesCollection.UpdateMany(ctx,
		bson.M{"senderId": senderID, "receiverId": receiverID, "seen": false},
		bson.M{"$set": bson.M{"seen": true}},
	)
	return err
}

// CountUnseen counts unseen messages from senderID to receiverID.
func (r *MongoMessageRepository) CountUnseen(ctx context.Context, senderID, receiverID string) (int64, error) {
	return r.messagesCollection.CountDocuments(ctx, bson.M{
		"senderId":   senderID,
		"receiverId": receiverID,
		"seen":       false,
	})
}
