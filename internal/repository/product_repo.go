package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/splicerhq/groupbuy_api/internal/models"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

// ProductRepository handles data access for catalog products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product row.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	const q = `
        INSERT INTO products (
            name, description, category_id, base_price, minimum_quantity,
            max_participants, image_urls, specifications, created_by
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, q,
		p.Name, p.Description, p.CategoryID, p.BasePrice, p.MinimumQuantity,
		p.MaxParticipants, pq.Array(p.ImageURLs), p.Specifications, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt)
}

// Update replaces the editable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	const q = `
        UPDATE products SET
            name = $2,
            description = $3,
            category_id = $4,
            base_price = $5,
            minimum_quantity = $6,
            max_participants = $7,
            image_urls = $8,
            specifications = $9
        WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Description, p.CategoryID, p.BasePrice, p.MinimumQuantity,
		p.MaxParticipants, pq.Array(p.ImageURLs), p.Specifications,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrProductNotFound
	}
	return nil
}

// GetByID returns a product by id, or utils.ErrProductNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1 LIMIT 1`
	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ProductFilter holds filters for product listings.
type ProductFilter struct {
	Query      string
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	ActiveOnly bool
	Page       int
	Limit      int
}

// ProductResult contains paginated product results.
type ProductResult struct {
	Products   []models.ProductWithCategory
	TotalItems int
	Page       int
	Limit      int
}

// List returns products joined with category names, filtered and paginated.
func (r *ProductRepository) List(ctx context.Context, filter *ProductFilter) (*ProductResult, error) {
	baseQ := `FROM products p
              JOIN categories c ON p.category_id = c.id
              WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filter.ActiveOnly {
		baseQ += " AND p.is_active = true"
	}
	if filter.Query != "" {
		baseQ += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Query+"%")
		argIdx++
	}
	if filter.CategoryID != "" {
		baseQ += fmt.Sprintf(" AND p.category_id = $%d", argIdx)
		args = append(args, filter.CategoryID)
		argIdx++
	}
	if filter.MinPrice != nil {
		baseQ += fmt.Sprintf(" AND p.base_price >= $%d", argIdx)
		args = append(args, *filter.MinPrice)
		argIdx++
	}
	if filter.MaxPrice != nil {
		baseQ += fmt.Sprintf(" AND p.base_price <= $%d", argIdx)
		args = append(args, *filter.MaxPrice)
		argIdx++
	}

	countQ := "SELECT COUNT(*) " + baseQ
	var total int
	if err := r.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQ := fmt.Sprintf(`
        SELECT p.*, c.name AS category_name
        %s
        ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, baseQ, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	var products []models.ProductWithCategory
	if err := r.db.SelectContext(ctx, &products, selectQ, args...); err != nil {
		return nil, err
	}

	return &ProductResult{
		Products:   products,
		TotalItems: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ToggleActive flips a product's is_active flag.
func (r *ProductRepository) ToggleActive(ctx context.Context, id string) error {
	const q = `UPDATE products SET is_active = NOT is_active WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrProductNotFound
	}
	return nil
}

// Delete removes a product row.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM products WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrProductNotFound
	}
	return nil
}
