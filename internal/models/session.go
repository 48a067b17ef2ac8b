package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

// Session tracks a vehicle physically occupying a lot, either against a
// reservation or as a walk-in billed on exit.
type Session struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	VehicleID     primitive.ObjectID  `json:"vehicle_id" bson:"vehicle_id" validate:"required"`
	ParkingLotID  primitive.ObjectID  `json:"parking_lot_id" bson:"parking_lot_id" validate:"required"`
	ReservationID *primitive.ObjectID `json:"reservation_id" bson:"reservation_id"`
	Status        SessionStatus       `json:"status" bson:"status" default:"active"`
	EnteredAt     time.Time           `json:"entered_at" bson:"entered_at"`
	ExitedAt      *time.Time          `json:"exited_at" bson:"exited_at"`
	Cost          float64             `json:"cost" bson:"cost"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" bson:"updated_at"`
}
