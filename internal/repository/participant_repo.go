package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/splicerhq/groupbuy_api/internal/models"
)

// ParticipantRepository handles data access for deal participation rows.
// Mutations run on a caller-owned transaction via sqlx.ExtContext.
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository creates a new ParticipantRepository.
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// GetByDealAndUser returns the participation row for (deal, user) in any
// status, or nil when the user has never joined.
func (r *ParticipantRepository) GetByDealAndUser(ctx context.Context, ext sqlx.ExtContext, dealID, userID string) (*models.DealParticipant, error) {
	const q = `
        SELECT id, deal_id, user_id, quantity, joined_at, status, notes
        FROM deal_participants
        WHERE deal_id = $1 AND user_id = $2
        LIMIT 1`

	var p models.DealParticipant
	if err := sqlx.GetContext(ctx, ext, &p, q, dealID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Upsert inserts the participation row. When a cancelled row already exists
// for the (deal, user) pair it is reactivated with the new quantity,
// fresh join timestamp and note. The unique constraint on (deal_id, user_id)
// guarantees a user can never hold two rows for the same deal.
func (r *ParticipantRepository) Upsert(ctx context.Context, ext sqlx.ExtContext, dealID, userID string, quantity int, notes string) error {
	const q = `
        INSERT INTO deal_participants (deal_id, user_id, quantity, joined_at, status, notes)
        VALUES ($1, $2, $3, NOW(), 'active', $4)
        ON CONFLICT (deal_id, user_id) DO UPDATE SET
            quantity = EXCLUDED.quantity,
            joined_at = NOW(),
            status = 'active',
            notes = EXCLUDED.notes`

	_, err := ext.ExecContext(ctx, q, dealID, userID, quantity, notes)
	return err
}

// CancelActive marks the user's active participation cancelled with an audit
// note appended. Returns the number of rows changed (0 means the user had no
// active participation).
func (r *ParticipantRepository) CancelActive(ctx context.Context, ext sqlx.ExtContext, dealID, userID, auditNote string) (int64, error) {
	const q = `
        UPDATE deal_participants
        SET status = 'cancelled', notes = COALESCE(notes, '') || $3
        WHERE deal_id = $1 AND user_id = $2 AND status = 'active'`

	res, err := ext.ExecContext(ctx, q, dealID, userID, auditNote)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CancelAllActive cascade-cancels every active participation of a deal.
func (r *ParticipantRepository) CancelAllActive(ctx context.Context, ext sqlx.ExtContext, dealID, auditNote string) error {
	const q = `
        UPDATE deal_participants
        SET status = 'cancelled', notes = COALESCE(notes, '') || $2
        WHERE deal_id = $1 AND status = 'active'`

	_, err := ext.ExecContext(ctx, q, dealID, auditNote)
	return err
}

// CompleteAllActive marks every active participation of a deal completed.
// Used by the expiry sweep when a deal finishes with its target met.
func (r *ParticipantRepository) CompleteAllActive(ctx context.Context, ext sqlx.ExtContext, dealID string) error {
	const q = `
        UPDATE deal_participants
        SET status = 'completed'
        WHERE deal_id = $1 AND status = 'active'`

	_, err := ext.ExecContext(ctx, q, dealID)
	return err
}

// ListActiveByDeal returns the active participants of a deal in join order,
// with user display fields.
func (r *ParticipantRepository) ListActiveByDeal(ctx context.Context, dealID string) ([]models.DealParticipantWithUser, error) {
	const q = `
        SELECT
            dp.id, dp.deal_id, dp.user_id, dp.quantity, dp.joined_at, dp.status, dp.notes,
            u.name AS user_name,
            u.email AS user_email
        FROM deal_participants dp
        JOIN users u ON dp.user_id = u.id
        WHERE dp.deal_id = $1 AND dp.status = 'active'
        ORDER BY dp.joined_at ASC`

	var participants []models.DealParticipantWithUser
	if err := r.db.SelectContext(ctx, &participants, q, dealID); err != nil {
		return nil, err
	}
	return participants, nil
}

// SumActive returns the active participant count and quantity sum of a deal
// straight from the participation rows. Used by invariant checks in tests
// and the reconciliation endpoint, not by the hot path (the deal row carries
// the counters).
func (r *ParticipantRepository) SumActive(ctx context.Context, dealID string) (participants int, quantity int, err error) {
	const q = `
        SELECT COUNT(*) AS participants, COALESCE(SUM(quantity), 0) AS quantity
        FROM deal_participants
        WHERE deal_id = $1 AND status = 'active'`

	row := r.db.QueryRowxContext(ctx, q, dealID)
	if err := row.Scan(&participants, &quantity); err != nil {
		return 0, 0, err
	}
	return participants, quantity, nil
}
