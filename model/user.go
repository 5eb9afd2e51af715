package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCitizen = "citizen"
	RoleOfficer = "officer"
	RoleAdmin   = "admin"
)

type User struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name"`
	Email          string              `bson:"email" json:"email"`
	HashedPassword string              `bson:"hashedPassword" json:"-"`
	Role           string              `bson:"role" json:"role"`
	Phone          string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Department     *primitive.ObjectID `bson:"department,omitempty" json:"department,omitempty"`
	Region         *primitive.ObjectID `bson:"region,omitempty" json:"region,omitempty"`
	FCMToken       string              `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
}

type AccessClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
