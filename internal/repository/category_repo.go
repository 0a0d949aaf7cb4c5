package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/splicerhq/groupbuy_api/internal/models"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

// CategoryRepository handles data access for catalog categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category. Returns utils.ErrDuplicateCategory when
// the name is taken.
func (r *CategoryRepository) Create(ctx context.Context, cat *models.Category) error {
	const q = `
        INSERT INTO categories (name, description, image_url)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, q, cat.Name, cat.Description, cat.ImageURL).
		Scan(&cat.ID, &cat.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return utils.ErrDuplicateCategory
		}
		return err
	}
	return nil
}

// Update replaces name, description and image URL of a category.
func (r *CategoryRepository) Update(ctx context.Context, cat *models.Category) error {
	const q = `
        UPDATE categories
        SET name = $2, description = $3, image_url = $4
        WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, cat.ID, cat.Name, cat.Description, cat.ImageURL)
	if err != nil {
		if isUniqueViolation(err) {
			return utils.ErrDuplicateCategory
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrCategoryNotFound
	}
	return nil
}

// GetByID returns a category by id.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	const q = `SELECT * FROM categories WHERE id = $1 LIMIT 1`
	var c models.Category
	if err := r.db.GetContext(ctx, &c, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetAll returns categories with their active product counts, active first.
func (r *CategoryRepository) GetAll(ctx context.Context, includeInactive bool) ([]models.CategoryWithCount, error) {
	q := `
        SELECT c.*, COUNT(p.id) FILTER (WHERE p.is_active) AS product_count
        FROM categories c
        LEFT JOIN products p ON p.category_id = c.id`
	if !includeInactive {
		q += ` WHERE c.is_active`
	}
	q += ` GROUP BY c.id ORDER BY c.name ASC`

	var list []models.CategoryWithCount
	if err := r.db.SelectContext(ctx, &list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// ToggleActive flips a category's is_active flag.
func (r *CategoryRepository) ToggleActive(ctx context.Context, id string) error {
	const q = `UPDATE categories SET is_active = NOT is_active WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrCategoryNotFound
	}
	return nil
}

// CountProducts returns the number of products referencing a category.
func (r *CategoryRepository) CountProducts(ctx context.Context, id string) (int, error) {
	const q = `SELECT COUNT(*) FROM products WHERE category_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, q, id); err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes a category row. The service refuses deletion while
// products still reference the category.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM categories WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrCategoryNotFound
	}
	return nil
}
