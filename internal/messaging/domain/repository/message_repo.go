package repository

import (
	"context"

	"quickchat/internal/messaging/domain/model"
)

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Insert(ctx context.Context, message *model.Message) error
	// Conversation returns all messages between the two users, oldest first.
	Conversation(ctx context.Context, userID, otherID string) ([]*model.Message, error)
	// MarkSeen marks a single message as seen.
	MarkSeen(ctx context.Context, messageID string) error
	// MarkConversationSeen marks every message from senderID to receiverID as seen.
	MarkConversationSeen(ctx context.Context, senderID, receiverID string) error
	// CountUnseen counts unseen messages from senderID to receiverID.
	CountUnseen(ctx context.Context, senderID, receiverID string) (int64, error)
}
