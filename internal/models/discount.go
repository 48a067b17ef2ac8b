package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

type Discount struct {
	ID                     primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Code                   string              `json:"code" bson:"code" validate:"required"`
	Description            string              `json:"description" bson:"description"`
	Type                   DiscountType        `json:"type" bson:"type" validate:"required"`
	Percentage             float64             `json:"percentage" bson:"percentage"`
	FixedAmount            float64             `json:"fixed_amount" bson:"fixed_amount"`
	ValidUntil             time.Time           `json:"valid_until" bson:"valid_until" validate:"required"`
	MaxUsageCount          *int                `json:"max_usage_count" bson:"max_usage_count"`
	CurrentUsageCount      int                 `json:"current_usage_count" bson:"current_usage_count" default:"0"`
	IsActive               bool                `json:"is_active" bson:"is_active" default:"true"`
	UserID                 *primitive.ObjectID `json:"user_id" bson:"user_id"`
	OrganizationID         *primitive.ObjectID `json:"organization_id" bson:"organization_id"`
	ParkingLotID           *primitive.ObjectID `json:"parking_lot_id" bson:"parking_lot_id"`
	MinReservationDuration *time.Duration      `json:"min_reservation_duration" bson:"min_reservation_duration"`
	MaxReservationDuration *time.Duration      `json:"max_reservation_duration" bson:"max_reservation_duration"`
	CreatedAt              time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at" bson:"updated_at"`
	CreatedBy              primitive.ObjectID  `json:"created_by" bson:"created_by"`
}

// HasUsageLeft reports whether the usage cap (if any) still allows a redemption.
func (d *Discount) HasUsageLeft() bool {
	return d.MaxUsageCount == nil || d.CurrentUsageCount < *d.MaxUsageCount
}

// DiscountUsage is an append-only ledger row recorded once per redemption.
type DiscountUsage struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DiscountID     primitive.ObjectID `json:"discount_id" bson:"discount_id" validate:"required"`
	Code           string             `json:"code" bson:"code"`
	ReservationID  primitive.ObjectID `json:"reservation_id" bson:"reservation_id" validate:"required"`
	UserID         primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	OriginalAmount float64            `json:"original_amount" bson:"original_amount"`
	DiscountAmount float64            `json:"discount_amount" bson:"discount_amount"`
	FinalAmount    float64            `json:"final_amount" bson:"final_amount"`
	UsedAt         time.Time          `json:"used_at" bson:"used_at"`
}
