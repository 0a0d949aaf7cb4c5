package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/splicerhq/groupbuy_api/internal/repository"
	"github.com/splicerhq/groupbuy_api/internal/service"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

// ProductHandler handles catalog product endpoints.
type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts handles GET /v1/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := &repository.ProductFilter{
		Query:      c.Query("q"),
		CategoryID: c.Query("category_id"),
		ActiveOnly: c.Query("include_inactive") != "true",
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", 20),
	}
	if raw := c.Query("min_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinPrice = &v
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = &v
		}
	}

	result, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessWithPagination(c, 200, "Products retrieved", result.Products, result.Page, result.Limit, result.TotalItems)
}

// GetProduct handles GET /v1/products/:productId
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Product retrieved", product)
}

// CreateProduct handles POST /v1/admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.Success(c, 201, "Product created", product)
}

// UpdateProduct handles PUT /v1/admin/products/:productId
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("productId"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.Success(c, 200, "Product updated", product)
}

// ToggleProduct handles PATCH /v1/admin/products/:productId/toggle
func (h *ProductHandler) ToggleProduct(c *gin.Context) {
	if err := h.productService.ToggleProduct(c.Request.Context(), c.Param("productId")); err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Product toggled", nil)
}

// DeleteProduct handles DELETE /v1/admin/products/:productId
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("productId")); err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, 200, "Product deleted", nil)
}

func (h *ProductHandler) handleError(c *gin.Context, err error) {
	var fieldErrs service.ValidationErrors
	if errors.As(err, &fieldErrs) {
		utils.ValidationError(c, "Validation failed", fieldErrs)
		return
	}
	switch err {
	case utils.ErrProductNotFound:
		utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
	case utils.ErrCategoryNotFound:
		utils.Error(c, 404, "CATEGORY_NOT_FOUND", "Category not found")
	default:
		utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
	}
}
