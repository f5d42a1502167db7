package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account. The password hash is never
// serialized to JSON, so no response envelope can carry it.
type User struct {
	ID           string             `json:"_id" bson:"id,omitempty"`
	ObjectID     primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	FullName     string             `json:"fullName" bson:"fullName"`
	Bio          string             `json:"bio,omitempty" bson:"bio,omitempty"`
	ProfilePic   string             `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}

// ProfileUpdate carries a partial profile mutation. Empty fields are
// left untouched in the stored record.
type ProfileUpdate struct {
	FullName   string
	Bio        string
	ProfilePic string
}

// IsEmpty reports whether the update would change nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.FullName == "" && p.Bio == "" && p.ProfilePic == ""
}
