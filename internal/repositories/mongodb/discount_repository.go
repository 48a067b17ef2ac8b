package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parkhub/internal/models"
	"parkhub/internal/repositories/interfaces"
	"parkhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type discountRepository struct {
	collection *mongo.Collection
	usages     *mongo.Collection
	cache      CacheService
}

func NewDiscountRepository(db *mongo.Database, cache CacheService) interfaces.DiscountRepository {
	return &discountRepository{
		collection: db.Collection("discounts"),
		usages:     db.Collection("discount_usages"),
		cache:      cache,
	}
}

// CanonicalCode normalizes a discount code the way it is stored: trimmed
// and uppercased.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *discountRepository) Create(ctx context.Context, discount *models.Discount) error {
	discount.ID = primitive.NewObjectID()
	discount.Code = CanonicalCode(discount.Code)
	discount.CreatedAt = time.Now()
	discount.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, discount)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("discount code %s: %w", discount.Code, interfaces.ErrDuplicate)
		}
		return fmt.Errorf("failed to create discount: %w", err)
	}

	r.cacheDiscount(ctx, discount)

	return nil
}

func (r *discountRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Discount, error) {
	var discount models.Discount
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&discount)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("discount %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get discount: %w", err)
	}

	return &discount, nil
}

func (r *discountRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	if code, exists := updates["code"]; exists {
		if codeStr, ok := code.(string); ok {
			updates["code"] = CanonicalCode(codeStr)
		}
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update discount: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("discount %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	r.invalidateDiscountCache(ctx, id)

	return nil
}

// Deactivate is the only delete: discounts are never removed, the
// kill-switch just flips off.
func (r *discountRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, map[string]interface{}{"is_active": false})
}

func (r *discountRepository) GetByCode(ctx context.Context, code string) (*models.Discount, error) {
	code = CanonicalCode(code)

	var discount models.Discount
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&discount)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("discount code %s: %w", code, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get discount by code: %w", err)
	}

	return &discount, nil
}

func (r *discountRepository) GetActiveByCode(ctx context.Context, code string) (*models.Discount, error) {
	code = CanonicalCode(code)

	cacheKey := fmt.Sprintf("discount_code_%s", code)
	if r.cache != nil {
		var discount models.Discount
		if err := r.cache.Get(ctx, cacheKey, &discount); err == nil && discount.IsActive {
			return &discount, nil
		}
	}

	var discount models.Discount
	err := r.collection.FindOne(ctx, bson.M{"code": code, "is_active": true}).Decode(&discount)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("active discount code %s: %w", code, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get discount by code: %w", err)
	}

	r.cacheDiscount(ctx, &discount)

	return &discount, nil
}

func (r *discountRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Discount, int64, error) {
	return r.findDiscountsWithFilter(ctx, bson.M{}, params)
}

func (r *discountRepository) ListActive(ctx context.Context, params *utils.PaginationParams) ([]*models.Discount, int64, error) {
	filter := bson.M{
		"is_active":   true,
		"valid_until": bson.M{"$gte": time.Now()},
	}
	return r.findDiscountsWithFilter(ctx, filter, params)
}

// RecordUsage appends a ledger row and increments the usage counter inside
// a single transaction. The increment filter re-asserts the usage cap, so
// two concurrent redemptions of a limited code cannot both succeed: the
// loser sees ModifiedCount == 0 and gets ErrUsageLimitExceeded.
func (r *discountRepository) RecordUsage(ctx context.Context, discount *models.Discount, usage *models.DiscountUsage) error {
	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		filter := bson.M{
			"_id":       discount.ID,
			"is_active": true,
		}
		if discount.MaxUsageCount != nil {
			filter["current_usage_count"] = bson.M{"$lt": *discount.MaxUsageCount}
		}

		result, err := r.collection.UpdateOne(
			sessCtx,
			filter,
			bson.M{
				"$inc": bson.M{"current_usage_count": 1},
				"$set": bson.M{"updated_at": time.Now()},
			},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to increment discount usage: %w", err)
		}
		if result.ModifiedCount == 0 {
			return nil, fmt.Errorf("discount %s: %w", discount.Code, interfaces.ErrUsageLimitExceeded)
		}

		usage.ID = primitive.NewObjectID()
		usage.DiscountID = discount.ID
		usage.Code = discount.Code
		usage.UsedAt = time.Now()

		if _, err := r.usages.InsertOne(sessCtx, usage); err != nil {
			return nil, fmt.Errorf("failed to insert discount usage: %w", err)
		}

		return nil, nil
	})
	if err != nil {
		return err
	}

	// Mirror the committed increment on the caller's copy.
	discount.CurrentUsageCount++

	r.invalidateDiscountCache(ctx, discount.ID)
	if r.cache != nil {
		r.cache.Delete(ctx, fmt.Sprintf("discount_code_%s", discount.Code))
	}

	return nil
}

func (r *discountRepository) ListUsages(ctx context.Context, discountID primitive.ObjectID, params *utils.PaginationParams) ([]*models.DiscountUsage, int64, error) {
	filter := bson.M{"discount_id": discountID}

	total, err := r.usages.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count discount usages: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.usages.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find discount usages: %w", err)
	}
	defer cursor.Close(ctx)

	var usages []*models.DiscountUsage
	for cursor.Next(ctx) {
		var usage models.DiscountUsage
		if err := cursor.Decode(&usage); err != nil {
			return nil, 0, fmt.Errorf("failed to decode discount usage: %w", err)
		}
		usages = append(usages, &usage)
	}

	return usages, total, nil
}

func (r *discountRepository) GetUsageStats(ctx context.Context, discountID primitive.ObjectID) (map[string]interface{}, error) {
	discount, err := r.GetByID(ctx, discountID)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"discount_id": discountID}}},
		{{Key: "$group", Value: bson.M{
			"_id":             nil,
			"total_usages":    bson.M{"$sum": 1},
			"total_original":  bson.M{"$sum": "$original_amount"},
			"total_discount":  bson.M{"$sum": "$discount_amount"},
			"total_final":     bson.M{"$sum": "$final_amount"},
			"first_used_at":   bson.M{"$min": "$used_at"},
			"last_used_at":    bson.M{"$max": "$used_at"},
			"unique_users":    bson.M{"$addToSet": "$user_id"},
		}}},
	}

	cursor, err := r.usages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate discount usages: %w", err)
	}
	defer cursor.Close(ctx)

	stats := map[string]interface{}{
		"discount_id":         discountID.Hex(),
		"code":                discount.Code,
		"is_active":           discount.IsActive,
		"current_usage_count": discount.CurrentUsageCount,
		"max_usage_count":     discount.MaxUsageCount,
		"total_usages":        int32(0),
		"total_original":      float64(0),
		"total_discount":      float64(0),
		"total_final":         float64(0),
	}

	if cursor.Next(ctx) {
		var result struct {
			TotalUsages   int32                `bson:"total_usages"`
			TotalOriginal float64              `bson:"total_original"`
			TotalDiscount float64              `bson:"total_discount"`
			TotalFinal    float64              `bson:"total_final"`
			FirstUsedAt   time.Time            `bson:"first_used_at"`
			LastUsedAt    time.Time            `bson:"last_used_at"`
			UniqueUsers   []primitive.ObjectID `bson:"unique_users"`
		}
		if err := cursor.Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode usage stats: %w", err)
		}

		stats["total_usages"] = result.TotalUsages
		stats["total_original"] = result.TotalOriginal
		stats["total_discount"] = result.TotalDiscount
		stats["total_final"] = result.TotalFinal
		stats["first_used_at"] = result.FirstUsedAt
		stats["last_used_at"] = result.LastUsedAt
		stats["unique_users"] = len(result.UniqueUsers)
	}

	return stats, nil
}

// Helper methods
func (r *discountRepository) findDiscountsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Discount, int64, error) {
	if params.Search != "" {
		searchFields := []string{"code", "description"}
		searchFilter := params.GetSearchFilter(searchFields)
		if len(searchFilter) > 0 {
			filter = bson.M{
				"$and": []bson.M{filter, searchFilter},
			}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count discounts: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find discounts: %w", err)
	}
	defer cursor.Close(ctx)

	var discounts []*models.Discount
	for cursor.Next(ctx) {
		var discount models.Discount
		if err := cursor.Decode(&discount); err != nil {
			return nil, 0, fmt.Errorf("failed to decode discount: %w", err)
		}
		discounts = append(discounts, &discount)
	}

	return discounts, total, nil
}

// Cache operations
func (r *discountRepository) cacheDiscount(ctx context.Context, discount *models.Discount) {
	if r.cache != nil && discount.IsActive {
		codeKey := fmt.Sprintf("discount_code_%s", discount.Code)
		r.cache.Set(ctx, codeKey, discount, 10*time.Minute)
	}
}

func (r *discountRepository) invalidateDiscountCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}

	// Look the code up so the code-keyed entry goes too; a stale active
	// flag on an eligibility check would let a deactivated code validate.
	discount, err := r.GetByID(ctx, id)
	if err == nil {
		r.cache.Delete(ctx, fmt.Sprintf("discount_code_%s", discount.Code))
	}
}
