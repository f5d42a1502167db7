package usecase

import (
	"context"
	"errors"
	"testing"

	authmodel "quickchat/internal/auth/domain/model"
	"quickchat/internal/messaging/domain/model"
	"quickchat/internal/messaging/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Insert(ctx context.Context, message *model.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockMessageRepo) Conversation(ctx context.Context, userID, otherID string) ([]*model.Message, error) {
	args := m.Called(ctx, userID, otherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Message), args.Error(1)
}

func (m *mockMessageRepo) MarkSeen(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *mockMessageRepo) MarkConversationSeen(ctx context.Context, senderID, receiverID string) error {
	args := m.Called(ctx, senderID, receiverID)
	return args.Error(0)
}

func (m *mockMessageRepo) CountUnseen(ctx context.Context, senderID, receiverID string) (int64, error) {
	args := m.Called(ctx, senderID, receiverID)
	return args.Get(0).(int64), args.Error(1)
}

var _ repository.MessageRepository = (*mockMessageRepo)(nil)

type mockUserLister struct {
	mock.Mock
}

func (m *mockUserLister) CreateUser(ctx context.Context, user *authmodel.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserLister) GetUserByEmail(ctx context.Context, email string) (*authmodel.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authmodel.User), args.Error(1)
}

func (m *mockUserLister) GetUserByID(ctx context.Context, id string) (*authmodel.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authmodel.User), args.Error(1)
}

func (m *mockUserLister) UpdateProfile(ctx context.Context, id string, update authmodel.ProfileUpdate) (*authmodel.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authmodel.User), args.Error(1)
}

func (m *mockUserLister) ListUsersExcept(ctx context.Context, id string) ([]*authmodel.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authmodel.User), args.Error(1)
}

type mockMediaUploader struct {
	mock.Mock
}

func (m *mockMediaUploader) Upload(ctx context.Context, payload string) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

type recordingNotifier struct {
	userID string
	event  string
	data   interface{}
	called bool
}

func (n *recordingNotifier) SendToUser(userID string, event string, data interface{}) bool {
	n.userID = userID
	n.event = event
	n.data = data
	n.called = true
	return true
}

func newTestMessaging() (*MessagingUsecase, *mockMessageRepo, *mockUserLister, *mockMediaUploader, *recordingNotifier) {
	messages := &mockMessageRepo{}
	users := &mockUserLister{}
	uploader := &mockMediaUploader{}
	notifier := &recordingNotifier{}
	return NewMessagingUsecase(messages, users, uploader, notifier), messages, users, uploader, notifier
}

func TestUsersForSidebar(t *testing.T) {
	uc, messages, users, _, _ := newTestMessaging()
	ctx := context.Background()

	users.On("ListUsersExcept", ctx, "me").Return([]*authmodel.User{
		{ID: "alice", PasswordHash: "hash"},
		{ID: "bob"},
	}, nil)
	messages.On("CountUnseen", ctx, "alice", "me").Return(int64(3), nil)
	messages.On("CountUnseen", ctx, "bob", "me").Return(int64(0), nil)

	sidebar, err := uc.UsersForSidebar(ctx, "me")
	require.NoError(t, err)
	require.Len(t, sidebar, 2)
	assert.Equal(t, "alice", sidebar[0].User.ID)
	assert.Equal(t, int64(3), sidebar[0].UnseenCount)
	assert.Empty(t, sidebar[0].User.PasswordHash)
	assert.Equal(t, int64(0), sidebar[1].UnseenCount)
}

func TestConversation_MarksIncomingSeen(t *testing.T) {
	uc, messages, _, _, _ := newTestMessaging()
	ctx := context.Background()

	exchange := []*model.Message{
		{ID: "m1", SenderID: "alice", ReceiverID: "me", Text: "hi"},
		{ID: "m2", SenderID: "me", ReceiverID: "alice", Text: "hello"},
	}
	messages.On("Conversation", ctx, "me", "alice").Return(exchange, nil)
	messages.On("MarkConversationSeen", ctx, "alice", "me").Return(nil)

	got, err := uc.Conversation(ctx, "me", "alice")
	require.NoError(t, err)
	assert.Equal(t, exchange, got)
	messages.AssertExpectations(t)
}

func TestConversation_WithSelf(t *testing.T) {
	uc, messages, _, _, _ := newTestMessaging()

	_, err := uc.Conversation(context.Background(), "me", "me")
	assert.ErrorIs(t, err, ErrSelfConversation)
	messages.AssertNotCalled(t, "Conversation")
}

func TestMarkMessageSeen_NotFound(t *testing.T) {
	uc, messages, _, _, _ := newTestMessaging()
	ctx := context.Background()

	messages.On("MarkSeen", ctx, "missing").Return(ErrMessageNotFound)

	err := uc.MarkMessageSeen(ctx, "missing")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestSendMessage_TextOnly(t *testing.T) {
	uc, messages, users, uploader, notifier := newTestMessaging()
	ctx := context.Background()

	users.On("GetUserByID", ctx, "alice").Return(&authmodel.User{ID: "alice"}, nil)
	messages.On("Insert", ctx, mock.AnythingOfType("*model.Message")).Return(nil)

	message, err := uc.SendMessage(ctx, "me", "alice", SendMessageRequest{Text: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, message.ID)
	assert.Equal(t, "me", message.SenderID)
	assert.Equal(t, "alice", message.ReceiverID)
	assert.Equal(t, "hi", message.Text)
	assert.False(t, message.Seen)

	// The stored message is pushed to the receiver's realtime connection.
	assert.True(t, notifier.called)
	assert.Equal(t, "alice", notifier.userID)
	assert.Equal(t, "newMessage", notifier.event)
	assert.Equal(t, message, notifier.data)

	uploader.AssertNotCalled(t, "Upload")
}

func TestSendMessage_WithImage(t *testing.T) {
	uc, messages, users, uploader, _ := newTestMessaging()
	ctx := context.Background()

	users.On("GetUserByID", ctx, "alice").Return(&authmodel.User{ID: "alice"}, nil)
	uploader.On("Upload", ctx, "data:image/png;base64,AAA").
		Return("https://img.example.com/m.png", nil)
	messages.On("Insert", ctx, mock.AnythingOfType("*model.Message")).Return(nil)

	message, err := uc.SendMessage(ctx, "me", "alice", SendMessageRequest{
		Image: "data:image/png;base64,AAA",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/m.png", message.Image)
}

func TestSendMessage_UploadFailure(t *testing.T) {
	uc, messages, users, uploader, notifier := newTestMessaging()
	ctx := context.Background()

	users.On("GetUserByID", ctx, "alice").Return(&authmodel.User{ID: "alice"}, nil)
	uploader.On("Upload", ctx, mock.Anything).Return("", errors.New("host down"))

	message, err := uc.SendMessage(ctx, "me", "alice", SendMessageRequest{Image: "payload"})
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Nil(t, message)
	messages.AssertNotCalled(t, "Insert")
	assert.False(t, notifier.called)
}

func TestSendMessage_Validation(t *testing.T) {
	uc, _, users, _, _ := newTestMessaging()
	ctx := context.Background()

	_, err := uc.SendMessage(ctx, "me", "me", SendMessageRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrSelfConversation)

	_, err = uc.SendMessage(ctx, "me", "alice", SendMessageRequest{})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	users.On("GetUserByID", ctx, "ghost").Return(nil, errors.New("no documents"))
	_, err = uc.SendMessage(ctx, "me", "ghost", SendMessageRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
