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

type UserService interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, req *UpdateProfileRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	ListUsers(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error)
	AssignOrganization(ctx context.Context, userID, orgID primitive.ObjectID) (*models.User, error)
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

type userService struct {
	userRepo interfaces.UserRepository
	orgRepo  interfaces.OrganizationRepository
	logger   *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, orgRepo interfaces.OrganizationRepository, logger *logger.Logger) UserService {
	return &userService{userRepo: userRepo, orgRepo: orgRepo, logger: logger}
}

func (s *userService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, id primitive.ObjectID, req *UpdateProfileRequest) (*models.User, error) {
	updates := make(map[string]interface{})
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) > 0 {
		if err := s.userRepo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithUserID(id).Info("user deleted")
	return nil
}

func (s *userService) ListUsers(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, params)
}

func (s *userService) AssignOrganization(ctx context.Context, userID, orgID primitive.ObjectID) (*models.User, error) {
	if _, err := s.orgRepo.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"organization_id": orgID}); err != nil {
		return nil, fmt.Errorf("failed to assign organization: %w", err)
	}
	return s.userRepo.GetByID(ctx, userID)
}
