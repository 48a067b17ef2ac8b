package services

import (
	"context"
	"fmt"

	"parkhub/internal/models"
	"parkhub/internal/repositories/interfaces"
	"parkhub/internal/utils"
	"parkhub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrganizationService interface {
	CreateOrganization(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error)
	GetOrganization(ctx context.Context, id primitive.ObjectID) (*models.Organization, error)
	UpdateOrganization(ctx context.Context, id primitive.ObjectID, req *UpdateOrganizationRequest) (*models.Organization, error)
	ListOrganizations(ctx context.Context, params *utils.PaginationParams) ([]*models.Organization, int64, error)
}

type CreateOrganizationRequest struct {
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

type UpdateOrganizationRequest struct {
	Name         *string `json:"name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
}

type organizationService struct {
	orgRepo interfaces.OrganizationRepository
	logger  *logger.Logger
}

func NewOrganizationService(orgRepo interfaces.OrganizationRepository, logger *logger.Logger) OrganizationService {
	return &organizationService{orgRepo: orgRepo, logger: logger}
}

func (s *organizationService) CreateOrganization(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error) {
	org := &models.Organization{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}

	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.logger.WithField("organization_id", org.ID.Hex()).Info("organization created")

	return org, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	return s.orgRepo.GetByID(ctx, id)
}

func (s *organizationService) UpdateOrganization(ctx context.Context, id primitive.ObjectID, req *UpdateOrganizationRequest) (*models.Organization, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ContactEmail != nil {
		updates["contact_email"] = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		updates["contact_phone"] = *req.ContactPhone
	}

	if len(updates) > 0 {
		if err := s.orgRepo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("failed to update organization: %w", err)
		}
	}

	return s.orgRepo.GetByID(ctx, id)
}

func (s *organizationService) ListOrganizations(ctx context.Context, params *utils.PaginationParams) ([]*models.Organization, int64, error) {
	return s.orgRepo.List(ctx, params)
}
