package interfaces

import (
	"context"

	"parkhub/internal/models"
	"parkhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Organization, int64, error)
}
