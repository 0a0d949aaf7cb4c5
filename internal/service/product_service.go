package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/splicerhq/groupbuy_api/internal/models"
	"github.com/splicerhq/groupbuy_api/internal/repository"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

// ProductService manages the catalog: products and their categories. All
// mutations are admin-only; enforcement lives in the route middleware.
type ProductService struct {
	productRepo  *repository.ProductRepository
	categoryRepo *repository.CategoryRepository
}

func NewProductService(productRepo *repository.ProductRepository, categoryRepo *repository.CategoryRepository) *ProductService {
	return &ProductService{productRepo: productRepo, categoryRepo: categoryRepo}
}

type ProductRequest struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	CategoryID      string            `json:"category_id"`
	BasePrice       float64           `json:"base_price"`
	MinimumQuantity int               `json:"minimum_quantity"`
	MaxParticipants *int              `json:"max_participants"`
	ImageURLs       []string          `json:"image_urls"`
	Specifications  map[string]string `json:"specifications"`
}

func (r *ProductRequest) validate() error {
	errs := ValidationErrors{}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs.add("name", "Name is required")
	} else if len(name) > 200 {
		errs.add("name", "Name must be at most 200 characters")
	}
	if len(strings.TrimSpace(r.Description)) < 10 {
		errs.add("description", "Description must be at least 10 characters")
	}
	if _, err := uuid.Parse(r.CategoryID); err != nil {
		errs.add("category_id", "Invalid category")
	}
	if r.BasePrice <= 0 {
		errs.add("base_price", "Base price must be greater than zero")
	}
	if r.MinimumQuantity < 1 {
		errs.add("minimum_quantity", "Minimum quantity must be at least 1")
	}
	if r.MaxParticipants != nil && *r.MaxParticipants < 2 {
		errs.add("max_participants", "Max participants must be at least 2")
	}
	return errs.orNil()
}

func (r *ProductRequest) toModel() *models.Product {
	return &models.Product{
		Name:            strings.TrimSpace(r.Name),
		Description:     strings.TrimSpace(r.Description),
		CategoryID:      r.CategoryID,
		BasePrice:       r.BasePrice,
		MinimumQuantity: r.MinimumQuantity,
		MaxParticipants: r.MaxParticipants,
		ImageURLs:       r.ImageURLs,
		Specifications:  r.Specifications,
		IsActive:        true,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, userID string, req *ProductRequest) (*models.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := req.toModel()
	product.CreatedBy = userID
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	log.Info().Str("product_id", product.ID).Str("created_by", userID).Msg("Product created")
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *ProductRequest) (*models.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	existing, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := req.toModel()
	product.ID = existing.ID
	product.IsActive = existing.IsActive
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, filter *repository.ProductFilter) (*repository.ProductResult, error) {
	return s.productRepo.List(ctx, filter)
}

func (s *ProductService) ToggleProduct(ctx context.Context, id string) error {
	return s.productRepo.ToggleActive(ctx, id)
}

// DeleteProduct removes a product. The schema restricts deletion while group
// deals reference the product, which surfaces as a constraint error; callers
// are expected to retire products with ToggleProduct instead.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func (r *CategoryRequest) validate() error {
	errs := ValidationErrors{}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs.add("name", "Name is required")
	} else if len(name) > 100 {
		errs.add("name", "Name must be at most 100 characters")
	}
	return errs.orNil()
}

func (s *ProductService) CreateCategory(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	cat := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: optional(req.Description),
		ImageURL:    optional(req.ImageURL),
		IsActive:    true,
	}
	if err := s.categoryRepo.Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *ProductService) UpdateCategory(ctx context.Context, id string, req *CategoryRequest) (*models.Category, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	existing, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = strings.TrimSpace(req.Name)
	existing.Description = optional(req.Description)
	existing.ImageURL = optional(req.ImageURL)
	if err := s.categoryRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *ProductService) ListCategories(ctx context.Context, includeInactive bool) ([]models.CategoryWithCount, error) {
	return s.categoryRepo.GetAll(ctx, includeInactive)
}

func (s *ProductService) ToggleCategory(ctx context.Context, id string) error {
	return s.categoryRepo.ToggleActive(ctx, id)
}

// optional maps an empty string to NULL.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// DeleteCategory refuses to delete a category that still has products.
func (s *ProductService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.ErrCategoryNotEmpty
	}
	return s.categoryRepo.Delete(ctx, id)
}
