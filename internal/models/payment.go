package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string
type PaymentProvider string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"

	PaymentProviderStripe   PaymentProvider = "stripe"
	PaymentProviderRazorpay PaymentProvider = "razorpay"
)

type Payment struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	ReservationID primitive.ObjectID `json:"reservation_id" bson:"reservation_id" validate:"required"`
	Amount        float64            `json:"amount" bson:"amount" validate:"required"`
	Currency      string             `json:"currency" bson:"currency" default:"USD"`
	Provider      PaymentProvider    `json:"provider" bson:"provider"`
	TransactionID string             `json:"transaction_id" bson:"transaction_id"`
	Status        PaymentStatus      `json:"status" bson:"status" default:"pending"`
	FailureReason string             `json:"failure_reason" bson:"failure_reason"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
