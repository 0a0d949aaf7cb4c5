package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/splicerhq/groupbuy_api/internal/models"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

// dealColumns is the join-projection shared by all deal list queries.
const dealColumns = `
        gd.id, gd.product_id, gd.title, gd.description,
        gd.target_participants, gd.target_quantity,
        gd.current_participants, gd.current_quantity,
        gd.deal_price, gd.original_price, gd.discount_percentage,
        gd.start_date, gd.end_date, gd.status, gd.created_by,
        gd.created_at, gd.updated_at,
        p.name AS product_name,
        p.description AS product_description,
        p.image_urls[1] AS product_image_url,
        c.id AS category_id,
        c.name AS category_name`

// DealRepository handles data access for group deals. Lifecycle mutations
// (join, leave, cancel, sweep) run inside a caller-owned transaction: those
// methods accept a sqlx.ExtContext which is satisfied by both *sqlx.DB and
// *sqlx.Tx.
type DealRepository struct {
	db *sqlx.DB
}

// NewDealRepository creates a new DealRepository.
func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

// Create inserts a new deal row with zeroed counters and pending status.
func (r *DealRepository) Create(ctx context.Context, deal *models.GroupDeal) error {
	const q = `
        INSERT INTO group_deals (
            product_id, title, description,
            target_participants, target_quantity,
            current_participants, current_quantity,
            deal_price, original_price, discount_percentage,
            start_date, end_date, status, created_by
        ) VALUES (
            $1, $2, $3, $4, $5, 0, 0, $6, $7, $8, NOW(), $9, $10, $11
        ) RETURNING id, start_date, created_at`

	return r.db.QueryRowContext(ctx, q,
		deal.ProductID, deal.Title, deal.Description,
		deal.TargetParticipants, deal.TargetQuantity,
		deal.DealPrice, deal.OriginalPrice, deal.DiscountPercentage,
		deal.EndDate, deal.Status, deal.CreatedBy,
	).Scan(&deal.ID, &deal.StartDate, &deal.CreatedAt)
}

// GetByID returns a bare deal row, or utils.ErrDealNotFound.
func (r *DealRepository) GetByID(ctx context.Context, id string) (*models.GroupDeal, error) {
	const q = `SELECT * FROM group_deals WHERE id = $1 LIMIT 1`
	var d models.GroupDeal
	if err := r.db.GetContext(ctx, &d, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrDealNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetWithProduct returns a deal joined with product and category info.
func (r *DealRepository) GetWithProduct(ctx context.Context, id string) (*models.GroupDealWithProduct, error) {
	q := `SELECT ` + dealColumns + `
        FROM group_deals gd
        JOIN products p ON gd.product_id = p.id
        JOIN categories c ON p.category_id = c.id
        WHERE gd.id = $1 LIMIT 1`

	var d models.GroupDealWithProduct
	if err := r.db.GetContext(ctx, &d, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrDealNotFound
		}
		return nil, err
	}
	return &d, nil
}

// DealForUpdate is a deal row read under lock together with the product's
// participant cap.
type DealForUpdate struct {
	models.GroupDeal
	MaxParticipants *int `db:"max_participants"`
}

// GetForUpdate locks the deal row for the remainder of the transaction and
// returns it with the product's max_participants. The lock serializes
// concurrent joins against the same deal so the cap check cannot be
// oversubscribed.
func (r *DealRepository) GetForUpdate(ctx context.Context, ext sqlx.ExtContext, id string) (*DealForUpdate, error) {
	const q = `
        SELECT gd.*,
               (SELECT max_participants FROM products WHERE id = gd.product_id) AS max_participants
        FROM group_deals gd
        WHERE gd.id = $1
        FOR UPDATE OF gd`

	var d DealForUpdate
	if err := sqlx.GetContext(ctx, ext, &d, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrDealNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ApplyCounterDelta adjusts both counters in a single statement of the form
// x = x + delta (no read-modify-write round trip) and writes the status the
// caller derived from the state machine. Must run on the transaction that
// holds the row lock.
func (r *DealRepository) ApplyCounterDelta(ctx context.Context, ext sqlx.ExtContext, id string, participantDelta, quantityDelta int, status models.DealStatus) error {
	const q = `
        UPDATE group_deals SET
            current_participants = current_participants + $2,
            current_quantity = current_quantity + $3,
            status = $4,
            updated_at = NOW()
        WHERE id = $1`

	_, err := ext.ExecContext(ctx, q, id, participantDelta, quantityDelta, status)
	return err
}

// SetStatus writes a deal's status.
func (r *DealRepository) SetStatus(ctx context.Context, ext sqlx.ExtContext, id string, status models.DealStatus) error {
	const q = `UPDATE group_deals SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := ext.ExecContext(ctx, q, id, status)
	return err
}

// GetExpiredForUpdate returns open deals whose end date has passed, locked
// for finalization by the expiry sweep. SKIP LOCKED lets concurrent sweeps
// (or an in-flight join holding the row lock) proceed without blocking.
func (r *DealRepository) GetExpiredForUpdate(ctx context.Context, ext sqlx.ExtContext, limit int) ([]models.GroupDeal, error) {
	const q = `
        SELECT * FROM group_deals
        WHERE status IN ('pending', 'active')
          AND end_date < NOW()
        ORDER BY end_date ASC
        LIMIT $1
        FOR UPDATE SKIP LOCKED`

	var deals []models.GroupDeal
	if err := sqlx.SelectContext(ctx, ext, &deals, q, limit); err != nil {
		return nil, err
	}
	return deals, nil
}

// DealFilter holds filters for deal search queries.
type DealFilter struct {
	Query       string
	CategoryID  string
	MinDiscount *float64
	Status      string
	Sort        string
	Page        int
	Limit       int
}

// DealResult contains paginated deal results.
type DealResult struct {
	Deals      []models.GroupDealWithProduct
	TotalItems int
	Page       int
	Limit      int
}

// orderClause maps a sort keyword to a whitelisted ORDER BY clause.
func orderClause(sort string) string {
	switch sort {
	case "ending_soon":
		return "gd.end_date ASC"
	case "popular":
		return "gd.current_participants DESC, gd.created_at DESC"
	case "discount_high":
		return "gd.discount_percentage DESC, gd.created_at DESC"
	default: // newest
		return "gd.created_at DESC"
	}
}

// Search returns open (or explicitly filtered) deals matching the filter.
// Expiry is applied at read time: deals past end_date never show up here
// even before the sweep has materialized their terminal status.
func (r *DealRepository) Search(ctx context.Context, filter *DealFilter) (*DealResult, error) {
	baseQ := `FROM group_deals gd
              JOIN products p ON gd.product_id = p.id
              JOIN categories c ON p.category_id = c.id
              WHERE gd.end_date > NOW() AND p.is_active = true`

	args := []interface{}{}
	argIdx := 1

	if filter.Query != "" {
		baseQ += fmt.Sprintf(" AND (gd.title ILIKE $%d OR p.name ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Query+"%")
		argIdx++
	}
	if filter.CategoryID != "" {
		baseQ += fmt.Sprintf(" AND c.id = $%d", argIdx)
		args = append(args, filter.CategoryID)
		argIdx++
	}
	if filter.MinDiscount != nil {
		baseQ += fmt.Sprintf(" AND gd.discount_percentage >= $%d", argIdx)
		args = append(args, *filter.MinDiscount)
		argIdx++
	}
	if filter.Status != "" {
		baseQ += fmt.Sprintf(" AND gd.status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	} else {
		baseQ += " AND gd.status IN ('pending', 'active')"
	}

	return r.paginate(ctx, baseQ, dealColumns, orderClause(filter.Sort), args, argIdx, filter.Page, filter.Limit)
}

// ListAdmin returns all deals regardless of status or expiry, with the
// creator's name joined for the admin table.
func (r *DealRepository) ListAdmin(ctx context.Context, filter *DealFilter) (*DealResult, error) {
	baseQ := `FROM group_deals gd
              JOIN products p ON gd.product_id = p.id
              JOIN categories c ON p.category_id = c.id
              JOIN users u ON gd.created_by = u.id
              WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filter.Query != "" {
		baseQ += fmt.Sprintf(" AND (gd.title ILIKE $%d OR p.name ILIKE $%d OR u.name ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+filter.Query+"%")
		argIdx++
	}
	if filter.CategoryID != "" {
		baseQ += fmt.Sprintf(" AND c.id = $%d", argIdx)
		args = append(args, filter.CategoryID)
		argIdx++
	}
	if filter.Status != "" {
		baseQ += fmt.Sprintf(" AND gd.status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	columns := dealColumns + `,
        u.name AS creator_name`
	return r.paginate(ctx, baseQ, columns, orderClause(filter.Sort), args, argIdx, filter.Page, filter.Limit)
}

// paginate runs the shared count+select pair for deal list queries.
func (r *DealRepository) paginate(ctx context.Context, baseQ, columns, orderBy string, args []interface{}, argIdx, page, limit int) (*DealResult, error) {
	countQ := "SELECT COUNT(*) " + baseQ
	var total int
	if err := r.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	selectQ := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT $%d OFFSET $%d",
		columns, baseQ, orderBy, argIdx, argIdx+1)
	args = append(args, limit, offset)

	var deals []models.GroupDealWithProduct
	if err := r.db.SelectContext(ctx, &deals, selectQ, args...); err != nil {
		return nil, err
	}

	return &DealResult{
		Deals:      deals,
		TotalItems: total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// ListByProduct returns the open deals attached to one product.
func (r *DealRepository) ListByProduct(ctx context.Context, productID string) ([]models.GroupDealWithProduct, error) {
	q := `SELECT ` + dealColumns + `
        FROM group_deals gd
        JOIN products p ON gd.product_id = p.id
        JOIN categories c ON p.category_id = c.id
        WHERE gd.product_id = $1
          AND gd.status IN ('pending', 'active')
          AND gd.end_date > NOW()
        ORDER BY gd.created_at DESC`

	var deals []models.GroupDealWithProduct
	if err := r.db.SelectContext(ctx, &deals, q, productID); err != nil {
		return nil, err
	}
	return deals, nil
}

// ListJoinedByUser returns deals the user actively participates in.
func (r *DealRepository) ListJoinedByUser(ctx context.Context, userID string) ([]models.GroupDealWithProduct, error) {
	q := `SELECT DISTINCT ` + dealColumns + `
        FROM group_deals gd
        JOIN products p ON gd.product_id = p.id
        JOIN categories c ON p.category_id = c.id
        JOIN deal_participants dp ON gd.id = dp.deal_id
        WHERE dp.user_id = $1 AND dp.status = 'active'
        ORDER BY gd.created_at DESC`

	var deals []models.GroupDealWithProduct
	if err := r.db.SelectContext(ctx, &deals, q, userID); err != nil {
		return nil, err
	}
	return deals, nil
}

// ListCreatedByUser returns deals the user created, newest first.
func (r *DealRepository) ListCreatedByUser(ctx context.Context, userID string) ([]models.GroupDealWithProduct, error) {
	q := `SELECT ` + dealColumns + `
        FROM group_deals gd
        JOIN products p ON gd.product_id = p.id
        JOIN categories c ON p.category_id = c.id
        WHERE gd.created_by = $1
        ORDER BY gd.created_at DESC`

	var deals []models.GroupDealWithProduct
	if err := r.db.SelectContext(ctx, &deals, q, userID); err != nil {
		return nil, err
	}
	return deals, nil
}

// GetStats computes the progress view of one deal.
func (r *DealRepository) GetStats(ctx context.Context, dealID string) (*models.GroupDealStats, error) {
	const q = `
        SELECT
            gd.id AS deal_id,
            gd.current_participants AS total_participants,
            gd.current_quantity AS total_quantity,
            ROUND((gd.current_participants::numeric / gd.target_participants::numeric) * 100, 1) AS completion_percentage,
            EXTRACT(EPOCH FROM (gd.end_date - NOW())) / 3600 AS time_remaining_hours,
            (gd.current_participants >= gd.target_participants) AS is_threshold_met,
            (gd.original_price - gd.deal_price) * gd.current_quantity AS projected_savings
        FROM group_deals gd
        WHERE gd.id = $1`

	var stats models.GroupDealStats
	if err := r.db.GetContext(ctx, &stats, q, dealID); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrDealNotFound
		}
		return nil, err
	}
	return &stats, nil
}
