package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Allows reports whether a caller holding r satisfies the required role.
// Admin satisfies every requirement; anything else must match exactly.
func (r Role) Allows(required Role) bool {
	return r == required || r == RoleAdmin
}

type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName    string             `json:"first_name" bson:"first_name"`
	LastName     string             `json:"last_name" bson:"last_name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password"`
	Role         Role               `json:"role" bson:"role"`
	CartID       primitive.ObjectID `json:"cart,omitempty" bson:"cart,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}
