package mongodb

import (
	"context"
	"fmt"
	"time"

	"parkhub/internal/models"
	"parkhub/internal/repositories/interfaces"
	"parkhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type parkingLotRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewParkingLotRepository(db *mongo.Database, cache CacheService) interfaces.ParkingLotRepository {
	return &parkingLotRepository{
		collection: db.Collection("parking_lots"),
		cache:      cache,
	}
}

func (r *parkingLotRepository) Create(ctx context.Context, lot *models.ParkingLot) error {
	lot.ID = primitive.NewObjectID()
	lot.CreatedAt = time.Now()
	lot.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lot)
	if err != nil {
		return fmt.Errorf("failed to create parking lot: %w", err)
	}

	r.cacheLot(ctx, lot)

	return nil
}

func (r *parkingLotRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ParkingLot, error) {
	if r.cache != nil {
		var lot models.ParkingLot
		if err := r.cache.Get(ctx, lotCacheKey(id), &lot); err == nil {
			return &lot, nil
		}
	}

	var lot models.ParkingLot
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&lot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("parking lot %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get parking lot: %w", err)
	}

	r.cacheLot(ctx, &lot)

	return &lot, nil
}

func (r *parkingLotRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update parking lot: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("parking lot %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	if r.cache != nil {
		r.cache.Delete(ctx, lotCacheKey(id))
	}

	return nil
}

func (r *parkingLotRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, map[string]interface{}{"is_active": false})
}

func (r *parkingLotRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.ParkingLot, int64, error) {
	filter := bson.M{}

	if params.Search != "" {
		searchFields := []string{"name", "address"}
		searchFilter := params.GetSearchFilter(searchFields)
		if len(searchFilter) > 0 {
			filter = searchFilter
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count parking lots: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find parking lots: %w", err)
	}
	defer cursor.Close(ctx)

	var lots []*models.ParkingLot
	for cursor.Next(ctx) {
		var lot models.ParkingLot
		if err := cursor.Decode(&lot); err != nil {
			return nil, 0, fmt.Errorf("failed to decode parking lot: %w", err)
		}
		lots = append(lots, &lot)
	}

	return lots, total, nil
}

func lotCacheKey(id primitive.ObjectID) string {
	return fmt.Sprintf("parking_lot:%s", id.Hex())
}

func (r *parkingLotRepository) cacheLot(ctx context.Context, lot *models.ParkingLot) {
	if r.cache != nil && lot.IsActive {
		r.cache.Set(ctx, lotCacheKey(lot.ID), lot, 30*time.Minute)
	}
}
