package handlers

import (
	"parkhub/internal/services"
	"parkhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type ParkingLotHandler struct {
	lotService     services.ParkingLotService
	sessionService services.SessionService
}

func NewParkingLotHandler(lotService services.ParkingLotService, sessionService services.SessionService) *ParkingLotHandler {
	return &ParkingLotHandler{lotService: lotService, sessionService: sessionService}
}

func (h *ParkingLotHandler) CreateParkingLot(c *gin.Context) {
	var req services.CreateParkingLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	lot, err := h.lotService.CreateParkingLot(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Parking lot created", lot)
}

func (h *ParkingLotHandler) GetParkingLot(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lot, err := h.lotService.GetParkingLot(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Parking lot retrieved", lot)
}

func (h *ParkingLotHandler) UpdateParkingLot(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateParkingLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	lot, err := h.lotService.UpdateParkingLot(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Parking lot updated", lot)
}

func (h *ParkingLotHandler) DeactivateParkingLot(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.lotService.DeactivateParkingLot(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func (h *ParkingLotHandler) ListParkingLots(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	lots, total, err := h.lotService.ListParkingLots(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Parking lots retrieved", lots, listMeta(params, total, len(lots)))
}

func (h *ParkingLotHandler) GetOccupancy(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	report, err := h.sessionService.GetLotOccupancy(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Occupancy retrieved", report)
}
