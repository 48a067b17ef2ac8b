package handlers

import (
	"parkhub/internal/middleware"
	"parkhub/internal/services"
	"parkhub/internal/utils"

	"github.com/gin-gonic/gin"
)

// DiscountHandler exposes two surfaces: the admin CRUD and analytics
// endpoints, and the authenticated user's code validation endpoint.
type DiscountHandler struct {
	discountService services.DiscountService
}

func NewDiscountHandler(discountService services.DiscountService) *DiscountHandler {
	return &DiscountHandler{discountService: discountService}
}

func (h *DiscountHandler) CreateDiscount(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req services.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	discount, err := h.discountService.CreateDiscount(c.Request.Context(), &req, adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Discount created", discount)
}

func (h *DiscountHandler) GetDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	discount, err := h.discountService.GetDiscount(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Discount retrieved", discount)
}

func (h *DiscountHandler) UpdateDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	discount, err := h.discountService.UpdateDiscount(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Discount updated", discount)
}

func (h *DiscountHandler) DeactivateDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.discountService.DeactivateDiscount(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func (h *DiscountHandler) ListDiscounts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	activeOnly := c.Query("active") == "true"

	discounts, total, err := h.discountService.ListDiscounts(c.Request.Context(), params, activeOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Discounts retrieved", discounts, listMeta(params, total, len(discounts)))
}

func (h *DiscountHandler) ListUsages(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	usages, total, err := h.discountService.ListUsages(c.Request.Context(), id, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Discount usages retrieved", usages, listMeta(params, total, len(usages)))
}

func (h *DiscountHandler) GetUsageStats(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.discountService.GetUsageStats(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Discount stats retrieved", stats)
}

// ValidateDiscount lets an authenticated user check a code before
// booking. The response always succeeds; eligibility is in the payload.
func (h *DiscountHandler) ValidateDiscount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req struct {
		Code   string  `json:"code" binding:"required"`
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	estimate, err := h.discountService.EstimateDiscount(c.Request.Context(), req.Code, userID, req.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, estimate.Reason, estimate)
}
