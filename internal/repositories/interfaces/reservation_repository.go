package interfaces

import (
	"context"
	"time"

	"parkhub/internal/models"
	"parkhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Listing
	ListByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Reservation, int64, error)
	ListByParkingLot(ctx context.Context, lotID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Reservation, int64, error)

	// FindOverlapping returns non-cancelled reservations for the vehicle
	// whose half-open window [start_time, end_time) intersects [start, end).
	FindOverlapping(ctx context.Context, vehicleID primitive.ObjectID, start, end time.Time) ([]*models.Reservation, error)

	// Status operations
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ReservationStatus) error

	// Billing aggregation
	SumCostsByUser(ctx context.Context, userID primitive.ObjectID) (map[string]interface{}, error)
}
