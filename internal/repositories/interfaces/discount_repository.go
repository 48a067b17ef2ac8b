package interfaces

import (
	"context"

	"parkhub/internal/models"
	"parkhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, discount *models.Discount) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Discount, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error

	// Code operations; GetActiveByCode canonicalizes the code and only
	// returns discounts with is_active == true.
	GetByCode(ctx context.Context, code string) (*models.Discount, error)
	GetActiveByCode(ctx context.Context, code string) (*models.Discount, error)

	// Listing
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Discount, int64, error)
	ListActive(ctx context.Context, params *utils.PaginationParams) ([]*models.Discount, int64, error)

	// Usage recording. RecordUsage appends the ledger row and increments
	// current_usage_count in one transaction; the increment re-asserts the
	// usage cap so concurrent redemptions cannot exceed max_usage_count.
	RecordUsage(ctx context.Context, discount *models.Discount, usage *models.DiscountUsage) error
	ListUsages(ctx context.Context, discountID primitive.ObjectID, params *utils.PaginationParams) ([]*models.DiscountUsage, int64, error)
	GetUsageStats(ctx context.Context, discountID primitive.ObjectID) (map[string]interface{}, error)
}
