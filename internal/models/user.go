package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus string
type UserRole string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"

	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

type User struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	FirstName      string              `json:"first_name" bson:"first_name" validate:"required,min=2,max=50"`
	LastName       string              `json:"last_name" bson:"last_name" validate:"required,min=2,max=50"`
	Email          string              `json:"email" bson:"email" validate:"required,email"`
	Phone          string              `json:"phone" bson:"phone"`
	Password       string              `json:"-" bson:"password"`
	Role           UserRole            `json:"role" bson:"role" default:"customer"`
	Status         UserStatus          `json:"status" bson:"status" default:"active"`
	OrganizationID *primitive.ObjectID `json:"organization_id" bson:"organization_id"`
	LastLoginAt    *time.Time          `json:"last_login_at" bson:"last_login_at"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
	DeletedAt      *time.Time          `json:"deleted_at" bson:"deleted_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
