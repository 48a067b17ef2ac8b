package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ParkingLot struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name           string              `json:"name" bson:"name" validate:"required"`
	Address        string              `json:"address" bson:"address"`
	Capacity       int                 `json:"capacity" bson:"capacity" validate:"required"`
	Tariff         float64             `json:"tariff" bson:"tariff" validate:"required"`
	DayTariff      *float64            `json:"day_tariff" bson:"day_tariff"`
	OrganizationID *primitive.ObjectID `json:"organization_id" bson:"organization_id"`
	IsActive       bool                `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}
