package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// UserParticipation is one row of the user's participation history, joined
// with deal and product info.
type UserParticipation struct {
	ID                  string    `db:"id" json:"id"`
	DealID              string    `db:"deal_id" json:"dealId"`
	DealTitle           string    `db:"deal_title" json:"dealTitle"`
	DealStatus          string    `db:"deal_status" json:"dealStatus"`
	ProductName         string    `db:"product_name" json:"productName"`
	ProductImageURL     *string   `db:"product_image_url" json:"productImageUrl,omitempty"`
	Quantity            int       `db:"quantity" json:"quantity"`
	DealPrice           float64   `db:"deal_price" json:"dealPrice"`
	OriginalPrice       float64   `db:"original_price" json:"originalPrice"`
	DiscountPercentage  float64   `db:"discount_percentage" json:"discountPercentage"`
	JoinedAt            time.Time `db:"joined_at" json:"joinedAt"`
	ParticipationStatus string    `db:"participation_status" json:"participationStatus"`
	EndDate             time.Time `db:"end_date" json:"endDate"`
	CurrentParticipants int       `db:"current_participants" json:"currentParticipants"`
	TargetParticipants  int       `db:"target_participants" json:"targetParticipants"`
	ProgressPercentage  float64   `db:"progress_percentage" json:"progressPercentage"`
}

// UserDealStats aggregates a user's participation history for the dashboard.
type UserDealStats struct {
	TotalParticipations int     `db:"total_participations" json:"totalParticipations"`
	ActiveDeals         int     `db:"active_deals" json:"activeDeals"`
	CompletedDeals      int     `db:"completed_deals" json:"completedDeals"`
	CancelledDeals      int     `db:"cancelled_deals" json:"cancelledDeals"`
	TotalSavings        float64 `db:"total_savings" json:"totalSavings"`
	TotalQuantity       int     `db:"total_quantity" json:"totalQuantity"`
}

// DashboardRepository serves the read models behind the user dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// GetParticipations returns the user's participation rows, newest first.
func (r *DashboardRepository) GetParticipations(ctx context.Context, userID string) ([]UserParticipation, error) {
	const q = `
        SELECT
            dp.id,
            dp.deal_id,
            gd.title AS deal_title,
            gd.status AS deal_status,
            p.name AS product_name,
            p.image_urls[1] AS product_image_url,
            dp.quantity,
            gd.deal_price,
            gd.original_price,
            gd.discount_percentage,
            dp.joined_at,
            dp.status AS participation_status,
            gd.end_date,
            gd.current_participants,
            gd.target_participants,
            ROUND((gd.current_participants::numeric / gd.target_participants::numeric) * 100, 1) AS progress_percentage
        FROM deal_participants dp
        JOIN group_deals gd ON dp.deal_id = gd.id
        JOIN products p ON gd.product_id = p.id
        WHERE dp.user_id = $1
        ORDER BY dp.joined_at DESC`

	var rows []UserParticipation
	if err := r.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetStats aggregates the user's deal history. Savings only count deals
// that actually completed.
func (r *DashboardRepository) GetStats(ctx context.Context, userID string) (*UserDealStats, error) {
	const q = `
        SELECT
            COUNT(*) AS total_participations,
            COUNT(*) FILTER (WHERE gd.status IN ('pending', 'active') AND dp.status = 'active') AS active_deals,
            COUNT(*) FILTER (WHERE gd.status = 'completed' AND dp.status = 'completed') AS completed_deals,
            COUNT(*) FILTER (WHERE gd.status = 'cancelled' OR dp.status = 'cancelled') AS cancelled_deals,
            COALESCE(SUM(
                CASE WHEN gd.status = 'completed' AND dp.status = 'completed'
                THEN (gd.original_price - gd.deal_price) * dp.quantity
                ELSE 0 END
            ), 0) AS total_savings,
            COALESCE(SUM(
                CASE WHEN dp.status = 'active'
                THEN dp.quantity
                ELSE 0 END
            ), 0) AS total_quantity
        FROM deal_participants dp
        JOIN group_deals gd ON dp.deal_id = gd.id
        WHERE dp.user_id = $1`

	var stats UserDealStats
	if err := r.db.GetContext(ctx, &stats, q, userID); err != nil {
		return nil, err
	}
	return &stats, nil
}
