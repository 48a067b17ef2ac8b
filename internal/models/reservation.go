package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ReservationNumber string             `json:"reservation_number" bson:"reservation_number"`
	UserID            primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	VehicleID         primitive.ObjectID `json:"vehicle_id" bson:"vehicle_id" validate:"required"`
	ParkingLotID      primitive.ObjectID `json:"parking_lot_id" bson:"parking_lot_id" validate:"required"`
	StartTime         time.Time          `json:"start_time" bson:"start_time" validate:"required"`
	EndTime           time.Time          `json:"end_time" bson:"end_time" validate:"required"`
	Status            ReservationStatus  `json:"status" bson:"status" default:"confirmed"`
	OriginalCost      float64            `json:"original_cost" bson:"original_cost"`
	DiscountCode      string             `json:"discount_code" bson:"discount_code"`
	DiscountAmount    float64            `json:"discount_amount" bson:"discount_amount" default:"0"`
	Cost              float64            `json:"cost" bson:"cost"`
	BilledHours       int                `json:"billed_hours" bson:"billed_hours"`
	BilledDays        int                `json:"billed_days" bson:"billed_days"`
	CancelledAt       *time.Time         `json:"cancelled_at" bson:"cancelled_at"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

// Overlaps reports whether the half-open windows [r.StartTime, r.EndTime)
// and [start, end) intersect.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}
