package interfaces

import (
	"context"

	"parkhub/internal/models"
	"parkhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error)
	GetActiveByVehicle(ctx context.Context, vehicleID primitive.ObjectID) (*models.Session, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	ListByParkingLot(ctx context.Context, lotID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error)
	CountActiveByParkingLot(ctx context.Context, lotID primitive.ObjectID) (int64, error)
}
