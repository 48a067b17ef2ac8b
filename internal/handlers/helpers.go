package handlers

import (
	"errors"
	"net/http"

	"parkhub/internal/repositories/interfaces"
	"parkhub/internal/services"
	"parkhub/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondServiceError maps the closed set of service and repository
// sentinels onto HTTP responses. Anything unrecognized is a 500 with no
// internal detail leaked.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		utils.ErrorResponse(c, http.StatusBadRequest, utils.CodeValidationError, err.Error())
	case errors.Is(err, services.ErrInvalidDiscount):
		utils.ErrorResponse(c, http.StatusBadRequest, utils.CodeInvalidDiscount, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c)
	case errors.Is(err, services.ErrVehicleOwnership):
		utils.ForbiddenResponse(c)
	case errors.Is(err, services.ErrBookingConflict):
		utils.ErrorResponse(c, http.StatusConflict, utils.CodeConflict, "Vehicle already has a reservation overlapping this window")
	case errors.Is(err, services.ErrReservationClosed):
		utils.ErrorResponse(c, http.StatusConflict, utils.CodeConflict, err.Error())
	case errors.Is(err, interfaces.ErrUsageLimitExceeded):
		utils.ErrorResponse(c, http.StatusConflict, utils.CodeConflict, err.Error())
	case errors.Is(err, interfaces.ErrDuplicate):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, interfaces.ErrNotFound):
		utils.NotFoundResponse(c, "Resource")
	default:
		utils.InternalServerErrorResponse(c)
	}
}

func parseIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

func listMeta(params *utils.PaginationParams, total int64, count int) *utils.Meta {
	return &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      count,
	}
}
