package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"quickchat/internal/auth"
	"quickchat/internal/auth/config"
	"quickchat/internal/media"
	"quickchat/internal/messaging"
	"quickchat/internal/presence"
	"quickchat/internal/shared/logger"
)

// Container is a dependency injection container with lifecycle management
// for the auth, presence and messaging modules.
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]func() (interface{}, error)
	// Module instances
	AuthModule      *auth.AuthModule
	MessagingModule *messaging.MessagingModule
	PresenceHub     *presence.Hub
	PresenceHandler *presence.WSHandler
	// External connections
	MongoDB *mongo.Database
	Redis   *redis.Client
	// Configuration
	AuthConfig *config.Config
	// Logger
	Logger logger.Logger
}

// NewContainer creates an empty DI container.
func NewContainer() *Container {
	return &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]func() (interface{}, error)),
	}
}

// InitializeAuth initializes the authentication module and the shared
// media uploader it depends on.
func (c *Container) InitializeAuth(mongoDB *mongo.Database, authConfig *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.MongoDB = mongoDB
	c.AuthConfig = authConfig

	if c.Logger == nil {
		c.Logger = logger.NewLogger()
	}

	uploader := media.NewHTTPUploader(authConfig.UploadURL)

	authModule, err := auth.NewAuthModule(mongoDB, authConfig, uploader, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}

	c.AuthModule = authModule
	c.services[reflect.TypeOf(uploader).Elem()] = uploader
	return nil
}

// InitializePresence wires the presence hub. The Redis client is
// optional; when nil the online set lives only in process memory.
func (c *Container) InitializePresence(redisClient *redis.Client) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Logger == nil {
		c.Logger = logger.NewLogger()
	}

	var store presence.Store
	if redisClient != nil {
		c.Redis = redisClient
		store = presence.NewRedisStore(redisClient, c.Logger)
	}

	c.PresenceHub = presence.NewHub(store, c.Logger)
	c.PresenceHandler = presence.NewWSHandler(c.PresenceHub, c.Logger)
	return nil
}

// InitializeMessaging initializes the messaging module. Auth and
// presence must be initialized first: messaging reuses the auth
// middleware and user repository, and delivers realtime events through
// the presence hub.
func (c *Container) InitializeMessaging() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before messaging module")
	}
	if c.PresenceHub == nil {
		return fmt.Errorf("presence hub must be initialized before messaging module")
	}
	if c.MongoDB == nil {
		return fmt.Errorf("MongoDB must be initialized before messaging module")
	}

	uploader := media.NewHTTPUploader(c.AuthConfig.UploadURL)

	messagingModule, err := messaging.NewMessagingModule(
		c.MongoDB,
		c.AuthModule.GetUserRepository(),
		uploader,
		c.PresenceHub,
		c.AuthModule.GetMiddleware(),
		c.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create messaging module: %w", err)
	}

	c.MessagingModule = messagingModule
	return nil
}

// Register registers a service instance.
func (c *Container) Register(service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}

	c.services[serviceType] = service
	return nil
}

// RegisterFactory registers a factory function for a service.
func (c *Container) RegisterFactory(serviceType reflect.Type, factory func() (interface{}, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[serviceType] = factory
	return nil
}

// Resolve resolves a service by type, invoking its factory on first use.
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()

	if service, exists := c.services[serviceType]; exists {
		c.mu.RUnlock()
		return service, nil
	}

	if factory, exists := c.factories[serviceType]; exists {
		c.mu.RUnlock()

		service, err := factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create service: %w", err)
		}

		c.mu.Lock()
		c.services[serviceType] = service
		c.mu.Unlock()

		return service, nil
	}

	c.mu.RUnlock()
	return nil, fmt.Errorf("service of type %v not registered", serviceType)
}

// GetService is a generic helper for resolving services.
func GetService[T any](c *Container) (T, error) {
	var zero T
	serviceType := reflect.TypeOf(zero)

	service, err := c.Resolve(serviceType)
	if err != nil {
		return zero, err
	}

	if typedService, ok := service.(T); ok {
		return typedService, nil
	}

	return zero, fmt.Errorf("service is not of expected type %T", zero)
}

// GetAuthModule returns the auth module instance.
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// GetMessagingModule returns the messaging module instance.
func (c *Container) GetMessagingModule() *messaging.MessagingModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.MessagingModule
}

// GetPresenceHandler returns the websocket presence handler.
func (c *Container) GetPresenceHandler() *presence.WSHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.PresenceHandler
}

// HealthCheck pings the external connections.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}

	return nil
}

// Cleanup shuts down modules in reverse order of initialization.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.MessagingModule != nil {
		c.MessagingModule = nil
	}

	if c.PresenceHub != nil {
		c.PresenceHub.Close()
		c.PresenceHub = nil
		c.PresenceHandler = nil
	}

	if c.AuthModule != nil {
		if err := c.AuthModule.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop auth module: %w", err))
		}
		c.AuthModule = nil
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
		c.Redis = nil
	}

	for _, service := range c.services {
		if cleaner, ok := service.(interface{ Cleanup(context.Context) error }); ok {
			if err := cleaner.Cleanup(ctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup service: %w", err))
			}
		}
	}

	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]func() (interface{}, error))

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}

	return nil
}

// Close gracefully shuts down all services in the container with timeout.
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		if c.Logger != nil {
			c.Logger.Warnf("cleanup errors occurred: %v", err)
		}
	}

	return nil
}
