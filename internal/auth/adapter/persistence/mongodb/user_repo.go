package mongodb

import (
	"context"
	"time"

	"quickchat/internal/auth/domain/model"
	"quickchat/internal/auth/usecase"
	apperrors "quickchat/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements the UserRepository interface using MongoDB
type MongoUserRepository struct {
	db              *mongo.Database
	usersCollection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB user repository
func NewMongoUserRepository(db *mongo.Database) (*MongoUserRepository, error) {
	repo := &MongoUserRepository{
		db:              db,
		usersCollection: db.Collection("users"),
	}

	ctx := context.Background()

	// Email index for users (unique)
	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.usersCollection.Indexes().CreateOne(ctx, emailIndex); err != nil {
		return nil, apperrors.NewInternalError("Failed to create email index").WithCause(err).WithComponent("user_repository")
	}

	// ID index for UUID lookups. Sparse because legacy documents may only
	// carry an ObjectID.
	idIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetSparse(true),
	}
	if _, err := repo.usersCollection.Indexes().CreateOne(ctx, idIndex); err != nil {
		return nil, apperrors.NewInternalError("Failed to create id index").WithCause(err).WithComponent("user_repository")
	}

	return repo, nil
}

// CreateUser creates a new user in the database
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}

	doc := bson.M{
		"id":            user.ID,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"fullName":      user.FullName,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}
	if user.Bio != "" {
		doc["bio"] = user.Bio
	}
	if user.ProfilePic != "" {
		doc["profilePic"] = user.ProfilePic
	}

	if _, err := r.usersCollection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrEmailTaken
		}
		return apperrors.NewInternalError("Failed to create user").WithCause(err).WithComponent("user_repository")
	}

	return nil
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.usersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrUserNotFound
		}
		return nil, apperrors.NewInternalError("Failed to get user by email").WithCause(err).WithComponent("user_repository")
	}

	ensureID(&user)
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.usersCollection.FindOne(ctx, idFilter(id)).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrUserNotFound
		}
		return nil, apperrors.NewInternalError("Failed to get user by id").WithCause(err).WithComponent("user_repository")
	}

	ensureID(&user)
	return &user, nil
}

// UpdateProfile applies a partial $set and returns the post-update document.
// Empty update fields are not written, so omitted fields keep prior values.
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if update.FullName != "" {
		set["fullName"] = update.FullName
	}
	if update.Bio != "" {
		set["bio"] = update.Bio
	}
	if update.ProfilePic != "" {
		set["profilePic"] = update.ProfilePic
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user model.User
	err := r.usersCollection.FindOneAndUpdate(ctx, idFilter(id), bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrUserNotFound
		}
		return nil, apperrors.NewInternalError("Failed to update profile").WithCause(err).WithComponent("user_repository")
	}

	ensureID(&user)
	return &user, nil
}

// ListUsersExcept returns all users except the given one, without password hashes.
func (r *MongoUserRepository) ListUsersExcept(ctx context.Context, id string) ([]*model.User, error) {
	filter := bson.M{"id": bson.M{"$ne": id}}
	opts := options.Find().SetProjection(bson.M{"password_hash": 0})

	cursor, err := r.usersCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to list users").WithCause(err).WithComponent("user_repository")
	}
	defer cursor.Close(ctx)

	var users []*model.User
	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		ensureID(&user)
		users = append(users, &user)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// idFilter matches either the string id field (UUIDs) or the raw ObjectID
// for documents created before string IDs were introduced.
func idFilter(id string) bson.M {
	if objectID, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$or": bson.A{bson.M{"id": id}, bson.M{"_id": objectID}}}
	}
	return bson.M{"id": id}
}

// ensureID populates the string ID from the ObjectID when absent.
func ensureID(user *model.User) {
	if user.ID == "" && !user.ObjectID.IsZero() {
		user.ID = user.ObjectID.Hex()
	}
}
