package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories depend on. Safe to run
// on every startup; CreateMany is a no-op for indexes that already exist.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"vehicles": {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "license_plate", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"discounts": {
			{
				Keys:    bson.D{{Key: "code", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "valid_until", Value: 1}},
			},
		},
		"discount_usages": {
			{
				Keys: bson.D{{Key: "discount_id", Value: 1}, {Key: "used_at", Value: -1}},
			},
			{
				Keys:    bson.D{{Key: "reservation_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"reservations": {
			{
				Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "status", Value: 1}, {Key: "start_time", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
			{
				Keys:    bson.D{{Key: "reservation_number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"sessions": {
			{
				Keys: bson.D{{Key: "parking_lot_id", Value: 1}, {Key: "status", Value: 1}},
			},
		},
		"payments": {
			{
				Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
		},
	}

	for collection, models := range indexes {
		_, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
	}

	return nil
}
