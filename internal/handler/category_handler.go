package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/splicerhq/groupbuy_api/internal/service"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

// CategoryHandler handles catalog category endpoints.
type CategoryHandler struct {
	productService *service.ProductService
}

func NewCategoryHandler(productService *service.ProductService) *CategoryHandler {
	return &CategoryHandler{productService: productService}
}

// ListCategories handles GET /v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	categories, err := h.productService.ListCategories(c.Request.Context(), includeInactive)
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Categories retrieved", categories)
}

// CreateCategory handles POST /v1/admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	cat, err := h.productService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.Success(c, 201, "Category created", cat)
}

// UpdateCategory handles PUT /v1/admin/categories/:categoryId
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	cat, err := h.productService.UpdateCategory(c.Request.Context(), c.Param("categoryId"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.Success(c, 200, "Category updated", cat)
}

// ToggleCategory handles PATCH /v1/admin/categories/:categoryId/toggle
func (h *CategoryHandler) ToggleCategory(c *gin.Context) {
	if err := h.productService.ToggleCategory(c.Request.Context(), c.Param("categoryId")); err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Category toggled", nil)
}

// DeleteCategory handles DELETE /v1/admin/categories/:categoryId
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.productService.DeleteCategory(c.Request.Context(), c.Param("categoryId")); err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Category deleted", nil)
}

func (h *CategoryHandler) handleError(c *gin.Context, err error) {
	var fieldErrs service.ValidationErrors
	if errors.As(err, &fieldErrs) {
		utils.ValidationError(c, "Validation failed", fieldErrs)
		return
	}
	switch err {
	case utils.ErrCategoryNotFound:
		utils.Error(c, 404, "CATEGORY_NOT_FOUND", "Category not found")
	case utils.ErrDuplicateCategory:
		utils.Error(c, 409, "DUPLICATE_CATEGORY", "A category with this name already exists")
	case utils.ErrCategoryNotEmpty:
		utils.Error(c, 409, "CATEGORY_NOT_EMPTY", "Category still has products")
	default:
		utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
	}
}
