package handlers

import (
	"errors"
	"net/http"
	"strings"

	"parkhub/internal/middleware"
	"parkhub/internal/repositories/interfaces"
	"parkhub/internal/services"
	"parkhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	reservationService services.ReservationService
}

func NewReservationHandler(reservationService services.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req services.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	reservation, err := h.reservationService.CreateReservation(c.Request.Context(), userID, &req)
	if err != nil {
		// A missing vehicle gets its own code so clients can prompt the
		// user to register one.
		if errors.Is(err, interfaces.ErrNotFound) && strings.Contains(err.Error(), "vehicle") {
			utils.ErrorResponse(c, http.StatusNotFound, utils.CodeVehicleNotFound, "Vehicle not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Reservation created", reservation)
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := h.reservationService.GetReservation(c.Request.Context(), userID, id, middleware.IsAdmin(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Reservation retrieved", reservation)
}

func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	reservation, err := h.reservationService.UpdateReservation(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Reservation updated", reservation)
}

func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := h.reservationService.CancelReservation(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Reservation cancelled", reservation)
}

func (h *ReservationHandler) ListMyReservations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	params := utils.GetPaginationParams(c)

	reservations, total, err := h.reservationService.ListUserReservations(c.Request.Context(), userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reservations retrieved", reservations, listMeta(params, total, len(reservations)))
}

func (h *ReservationHandler) ListLotReservations(c *gin.Context) {
	lotID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	reservations, total, err := h.reservationService.ListLotReservations(c.Request.Context(), lotID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reservations retrieved", reservations, listMeta(params, total, len(reservations)))
}
