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

type organizationRepository struct {
	collection *mongo.Collection
}

func NewOrganizationRepository(db *mongo.Database) interfaces.OrganizationRepository {
	return &organizationRepository{
		collection: db.Collection("organizations"),
	}
}

func (r *organizationRepository) Create(ctx context.Context, org *models.Organization) error {
	org.ID = primitive.NewObjectID()
	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, org)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	var org models.Organization
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("organization %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &org, nil
}

func (r *organizationRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("organization %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}

func (r *organizationRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Organization, int64, error) {
	filter := bson.M{}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find organizations: %w", err)
	}
	defer cursor.Close(ctx)

	var orgs []*models.Organization
	for cursor.Next(ctx) {
		var org models.Organization
		if err := cursor.Decode(&org); err != nil {
			return nil, 0, fmt.Errorf("failed to decode organization: %w", err)
		}
		orgs = append(orgs, &org)
	}

	return orgs, total, nil
}
