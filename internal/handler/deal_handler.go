package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/splicerhq/groupbuy_api/internal/repository"
	"github.com/splicerhq/groupbuy_api/internal/service"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

// DealHandler handles group deal HTTP endpoints.
type DealHandler struct {
	dealService *service.DealService
}

func NewDealHandler(dealService *service.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

// CreateDeal handles POST /v1/deals
func (h *DealHandler) CreateDeal(c *gin.Context) {
	var req service.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	deal, err := h.dealService.CreateDeal(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.Success(c, 201, "Deal created", deal)
}

// GetDeal handles GET /v1/deals/:dealId
func (h *DealHandler) GetDeal(c *gin.Context) {
	deal, err := h.dealService.GetDeal(c.Request.Context(), c.Param("dealId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Deal retrieved", deal)
}

// SearchDeals handles GET /v1/deals
func (h *DealHandler) SearchDeals(c *gin.Context) {
	filter := &repository.DealFilter{
		Query:      c.Query("q"),
		CategoryID: c.Query("category_id"),
		Status:     c.Query("status"),
		Sort:       c.Query("sort"),
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", 20),
	}
	if raw := c.Query("min_discount"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinDiscount = &v
		}
	}

	result, err := h.dealService.Search(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessWithPagination(c, 200, "Deals retrieved", result.Deals, result.Page, result.Limit, result.TotalItems)
}

// JoinDeal handles POST /v1/deals/:dealId/join
func (h *DealHandler) JoinDeal(c *gin.Context) {
	var req service.JoinDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	err := h.dealService.JoinDeal(c.Request.Context(), c.Param("dealId"), c.GetString("user_id"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.Success(c, 200, "Joined deal", nil)
}

type leaveDealRequest struct {
	UserID string `json:"user_id"`
}

// LeaveDeal handles POST /v1/deals/:dealId/leave. An empty body leaves the
// caller's own participation; a user_id lets the deal creator or an admin
// remove another participant.
func (h *DealHandler) LeaveDeal(c *gin.Context) {
	var req leaveDealRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
			return
		}
	}

	err := h.dealService.LeaveDeal(c.Request.Context(), c.Param("dealId"), c.GetString("user_id"), req.UserID, c.GetString("role"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.Success(c, 200, "Left deal", nil)
}

// CancelDeal handles POST /v1/deals/:dealId/cancel
func (h *DealHandler) CancelDeal(c *gin.Context) {
	err := h.dealService.CancelDeal(c.Request.Context(), c.Param("dealId"), c.GetString("user_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Deal cancelled", nil)
}

// ListParticipants handles GET /v1/deals/:dealId/participants
func (h *DealHandler) ListParticipants(c *gin.Context) {
	participants, err := h.dealService.ListParticipants(c.Request.Context(), c.Param("dealId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Participants retrieved", participants)
}

// GetStats handles GET /v1/deals/:dealId/stats
func (h *DealHandler) GetStats(c *gin.Context) {
	stats, err := h.dealService.GetStats(c.Request.Context(), c.Param("dealId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Deal stats retrieved", stats)
}

// ListByProduct handles GET /v1/products/:productId/deals
func (h *DealHandler) ListByProduct(c *gin.Context) {
	deals, err := h.dealService.ListByProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Deals retrieved", deals)
}

// ListJoined handles GET /v1/my/deals/joined
func (h *DealHandler) ListJoined(c *gin.Context) {
	deals, err := h.dealService.ListJoined(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Deals retrieved", deals)
}

// ListCreated handles GET /v1/my/deals/created
func (h *DealHandler) ListCreated(c *gin.Context) {
	deals, err := h.dealService.ListCreated(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Deals retrieved", deals)
}

// ListAdmin handles GET /v1/admin/deals
func (h *DealHandler) ListAdmin(c *gin.Context) {
	filter := &repository.DealFilter{
		Query:      c.Query("q"),
		CategoryID: c.Query("category_id"),
		Status:     c.Query("status"),
		Sort:       c.Query("sort"),
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", 20),
	}

	result, err := h.dealService.ListAdmin(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessWithPagination(c, 200, "Deals retrieved", result.Deals, result.Page, result.Limit, result.TotalItems)
}

// CheckCounters handles GET /v1/admin/deals/:dealId/consistency
func (h *DealHandler) CheckCounters(c *gin.Context) {
	report, err := h.dealService.CheckCounters(c.Request.Context(), c.Param("dealId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Counter check complete", report)
}

func (h *DealHandler) handleError(c *gin.Context, err error) {
	var fieldErrs service.ValidationErrors
	if errors.As(err, &fieldErrs) {
		utils.ValidationError(c, "Validation failed", fieldErrs)
		return
	}
	switch err {
	case utils.ErrDealNotFound:
		utils.Error(c, 404, "DEAL_NOT_FOUND", "Deal not found")
	case utils.ErrProductNotFound:
		utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
	case utils.ErrProductInactive:
		utils.Error(c, 400, "PRODUCT_INACTIVE", "Product is not available for deals")
	case utils.ErrDealNotOpen:
		utils.Error(c, 409, "DEAL_NOT_OPEN", "Deal is no longer open")
	case utils.ErrDealExpired:
		utils.Error(c, 409, "DEAL_EXPIRED", "Deal has expired")
	case utils.ErrDealFull:
		utils.Error(c, 409, "DEAL_FULL", "Deal has reached its participant limit")
	case utils.ErrAlreadyJoined:
		utils.Error(c, 409, "ALREADY_JOINED", "You have already joined this deal")
	case utils.ErrNotParticipant:
		utils.Error(c, 404, "NOT_PARTICIPANT", "No active participation in this deal")
	case utils.ErrNotDealCreator:
		utils.Error(c, 403, "NOT_DEAL_CREATOR", "Only the deal creator can cancel it")
	case utils.ErrForbidden:
		utils.Error(c, 403, "FORBIDDEN", "Not allowed to act on this participant")
	default:
		utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
	}
}

// intQuery parses a positive integer query parameter with a fallback.
func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
