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

type reservationRepository struct {
	collection *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) interfaces.ReservationRepository {
	return &reservationRepository{
		collection: db.Collection("reservations"),
	}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	reservation.ID = primitive.NewObjectID()
	reservation.CreatedAt = time.Now()
	reservation.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("reservation %s: %w", reservation.ReservationNumber, interfaces.ErrDuplicate)
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("reservation %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return &reservation, nil
}

func (r *reservationRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("reservation %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}

func (r *reservationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Reservation, int64, error) {
	return r.findReservationsWithFilter(ctx, bson.M{"user_id": userID}, params)
}

func (r *reservationRepository) ListByParkingLot(ctx context.Context, lotID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Reservation, int64, error) {
	return r.findReservationsWithFilter(ctx, bson.M{"parking_lot_id": lotID}, params)
}

// FindOverlapping uses half-open interval semantics: [a, b) and [c, d)
// intersect iff a < d && c < b. Cancelled reservations never conflict.
func (r *reservationRepository) FindOverlapping(ctx context.Context, vehicleID primitive.ObjectID, start, end time.Time) ([]*models.Reservation, error) {
	filter := bson.M{
		"vehicle_id": vehicleID,
		"status":     bson.M{"$ne": models.ReservationStatusCancelled},
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*models.Reservation
	for cursor.Next(ctx) {
		var reservation models.Reservation
		if err := cursor.Decode(&reservation); err != nil {
			return nil, fmt.Errorf("failed to decode reservation: %w", err)
		}
		reservations = append(reservations, &reservation)
	}

	return reservations, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ReservationStatus) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if status == models.ReservationStatusCancelled {
		updates["cancelled_at"] = time.Now()
	}
	return r.Update(ctx, id, updates)
}

func (r *reservationRepository) SumCostsByUser(ctx context.Context, userID primitive.ObjectID) (map[string]interface{}, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id": userID,
			"status":  bson.M{"$ne": models.ReservationStatusCancelled},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"count":          bson.M{"$sum": 1},
			"total_original": bson.M{"$sum": "$original_cost"},
			"total_discount": bson.M{"$sum": "$discount_amount"},
			"total_cost":     bson.M{"$sum": "$cost"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reservation costs: %w", err)
	}
	defer cursor.Close(ctx)

	summary := map[string]interface{}{
		"count":          int32(0),
		"total_original": float64(0),
		"total_discount": float64(0),
		"total_cost":     float64(0),
	}

	if cursor.Next(ctx) {
		var result struct {
			Count         int32   `bson:"count"`
			TotalOriginal float64 `bson:"total_original"`
			TotalDiscount float64 `bson:"total_discount"`
			TotalCost     float64 `bson:"total_cost"`
		}
		if err := cursor.Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode cost summary: %w", err)
		}

		summary["count"] = result.Count
		summary["total_original"] = result.TotalOriginal
		summary["total_discount"] = result.TotalDiscount
		summary["total_cost"] = result.TotalCost
	}

	return summary, nil
}

func (r *reservationRepository) findReservationsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Reservation, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*models.Reservation
	for cursor.Next(ctx) {
		var reservation models.Reservation
		if err := cursor.Decode(&reservation); err != nil {
			return nil, 0, fmt.Errorf("failed to decode reservation: %w", err)
		}
		reservations = append(reservations, &reservation)
	}

	return reservations, total, nil
}
