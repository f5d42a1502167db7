package messaging

import (
	"fmt"

	authhttp "quickchat/internal/auth/adapter/http"
	authrepo "quickchat/internal/auth/domain/repository"
	"quickchat/internal/media"
	msghttp "quickchat/internal/messaging/adapter/http"
	"quickchat/internal/messaging/adapter/persistence/mongodb"
	"quickchat/internal/messaging/domain/repository"
	"quickchat/internal/messaging/usecase"
	"quickchat/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// MessagingModule represents the complete direct-messaging module
type MessagingModule struct {
	repository repository.MessageRepository
	usecase    usecase.MessagingUsecaseInterface
	handler    *msghttp.MessageHTTPHandler
	middleware *authhttp.AuthMiddleware
}

// NewMessagingModule creates a new messaging module instance
func NewMessagingModule(
	db *mongo.Database,
	users authrepo.UserRepository,
	uploader media.Uploader,
	notifier usecase.Notifier,
	middleware *authhttp.AuthMiddleware,
	log logger.Logger,
) (*MessagingModule, error) {
	messageRepo, err := mongodb.NewMongoMessageRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create message repository: %w", err)
	}

	messagingUsecase := usecase.NewMessagingUsecase(messageRepo, users, uploader, notifier)
	handler := msghttp.NewMessageHTTPHandler(messagingUsecase, log)

	return &MessagingModule{
		repository: messageRepo,
		usecase:    messagingUsecase,
		handler:    handler,
		middleware: middleware,
	}, nil
}

// RegisterRoutes registers messaging routes with the provided router
func (mm *MessagingModule) RegisterRoutes(router fiber.Router) {
	mm.handler.SetupRoutes(router, mm.middleware)
}

// GetUsecase returns the messaging usecase for external access
func (mm *MessagingModule) GetUsecase() usecase.MessagingUsecaseInterface {
	return mm.usecase
}
