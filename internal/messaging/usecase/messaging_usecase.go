package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	authmodel "quickchat/internal/auth/domain/model"
	authrepo "quickchat/internal/auth/domain/repository"
	"quickchat/internal/media"
	"quickchat/internal/messaging/domain/model"
	"quickchat/internal/messaging/domain/repository"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage     = errors.New("message has no text or image")
	ErrSelfConversation = errors.New("cannot message yourself")
	ErrUserNotFound     = errors.New("user not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrUploadFailed     = errors.New("image upload failed")
)

// Notifier pushes realtime events to a single user's connection. Satisfied
// by the presence hub.
type Notifier interface {
	SendToUser(userID string, event string, data interface{}) bool
}

// SidebarUser is a chat partner plus the count of their messages the
// caller has not seen yet.
type SidebarUser struct {
	User        *authmodel.User `json:"user"`
	UnseenCount int64           `json:"unseenCount"`
}

// SendMessageRequest carries a new outbound message. Image is the raw
// payload to upload, not a URL.
type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// MessagingUsecaseInterface defines the contract for messaging use cases.
type MessagingUsecaseInterface interface {
	UsersForSidebar(ctx context.Context, userID string) ([]SidebarUser, error)
	Conversation(ctx context.Context, userID, otherID string) ([]*model.Message, error)
	MarkMessageSeen(ctx context.Context, messageID string) error
	SendMessage(ctx context.Context, senderID, receiverID string, req SendMessageRequest) (*model.Message, error)
}

// MessagingUsecase implements direct-message operations.
type MessagingUsecase struct {
	messages repository.MessageRepository
	users    authrepo.UserRepository
	uploader media.Uploader
	notifier Notifier
}

// NewMessagingUsecase creates a new messaging usecase.
func NewMessagingUsecase(
	messages repository.MessageRepository,
	users authrepo.UserRepository,
	uploader media.Uploader,
	notifier Notifier,
) *MessagingUsecase {
	return &MessagingUsecase{
		messages: messages,
		users:    users,
		uploader: uploader,
		notifier: notifier,
	}
}

// UsersForSidebar returns every other user with the count of their unseen
// messages to the caller.
func (uc *MessagingUsecase) UsersForSidebar(ctx context.Context, userID string) ([]SidebarUser, error) {
	users, err := uc.users.ListUsersExcept(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	sidebar := make([]SidebarUser, 0, len(users))
	for _, user := range users {
		count, err := uc.messages.CountUnseen(ctx, user.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count unseen messages: %w", err)
		}
		user.PasswordHash = ""
		sidebar = append(sidebar, SidebarUser{User: user, UnseenCount: count})
	}

	return sidebar, nil
}

// Conversation returns the full exchange with the other user and marks
// their messages to the caller as seen.
func (uc *MessagingUsecase) Conversation(ctx context.Context, userID, otherID string) ([]*model.Message, error) {
	if userID == otherID {
		return nil, ErrSelfConversation
	}

	messages, err := uc.messages.Conversation(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	if err := uc.messages.MarkConversationSeen(ctx, otherID, userID); err != nil {
		return nil, fmt.Errorf("failed to mark conversation seen: %w", err)
	}

	return messages, nil
}

// MarkMessageSeen marks a single message as seen.
func (uc *MessagingUsecase) MarkMessageSeen(ctx context.Context, messageID string) error {
	if err := uc.messages.MarkSeen(ctx, messageID); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to mark message seen: %w", err)
	}
	return nil
}

// SendMessage stores an outbound message, uploading the image payload to
// the external host first when present, then pushes the stored message to
// the receiver's realtime connection if they are online.
func (uc *MessagingUsecase) SendMessage(ctx context.Context, senderID, receiverID string, req SendMessageRequest) (*model.Message, error) {
	if senderID == receiverID {
		return nil, ErrSelfConversation
	}
	if req.Text == "" && req.Image == "" {
		return nil, ErrEmptyMessage
	}

	if _, err := uc.users.GetUserByID(ctx, receiverID); err != nil {
		return nil, ErrUserNotFound
	}

	message := &model.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       req.Text,
		CreatedAt:  time.Now(),
	}

	if req.Image != "" {
		url, err := uc.uploader.Upload(ctx, req.Image)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		message.Image = url
	}

	if err := uc.messages.Insert(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	if uc.notifier != nil {
		uc.notifier.SendToUser(receiverID, "newMessage", message)
	}

	return message, nil
}

// Ensure MessagingUsecase implements MessagingUsecaseInterface
var _ MessagingUsecaseInterface = (*MessagingUsecase)(nil)
