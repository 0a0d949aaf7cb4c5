package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DealStatus is the lifecycle state of a group deal.
type DealStatus string

const (
	DealPending   DealStatus = "pending"
	DealActive    DealStatus = "active"
	DealCompleted DealStatus = "completed"
	DealCancelled DealStatus = "cancelled"
	DealExpired   DealStatus = "expired"
)

// DealEvent is something that happens to a deal and may change its status.
type DealEvent string

const (
	// EventThresholdReached fires when a join brings the participant count
	// up to the target.
	EventThresholdReached DealEvent = "threshold_reached"
	// EventBelowThreshold fires when a leave drops the participant count
	// below the target.
	EventBelowThreshold DealEvent = "below_threshold"
	// EventCreatorCancelled fires when the deal creator cancels the deal.
	EventCreatorCancelled DealEvent = "creator_cancelled"
	// EventExpired fires when end_date passes without the target being met.
	EventExpired DealEvent = "expired"
	// EventCompleted fires when end_date passes with the target met.
	EventCompleted DealEvent = "completed"
)

// ErrInvalidTransition is returned by Transition for state/event pairs that
// have no defined successor.
var ErrInvalidTransition = errors.New("invalid deal status transition")

// Transition returns the next deal status for the given event. The one
// reversible edge is active -> pending via EventBelowThreshold; terminal
// states (completed, cancelled, expired) accept no events at all, which is
// what keeps a leave from reviving a finished deal.
func Transition(current DealStatus, event DealEvent) (DealStatus, error) {
	switch current {
	case DealPending:
		switch event {
		case EventThresholdReached:
			return DealActive, nil
		case EventCreatorCancelled:
			return DealCancelled, nil
		case EventExpired:
			return DealExpired, nil
		}
	case DealActive:
		switch event {
		case EventBelowThreshold:
			return DealPending, nil
		case EventCreatorCancelled:
			return DealCancelled, nil
		case EventExpired:
			return DealExpired, nil
		case EventCompleted:
			return DealCompleted, nil
		}
	}
	return current, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, current)
}

// IsOpen reports whether a deal in this status can still accept joins.
func (s DealStatus) IsOpen() bool {
	return s == DealPending || s == DealActive
}

// IsTerminal reports whether the status admits no further transitions.
func (s DealStatus) IsTerminal() bool {
	return s == DealCompleted || s == DealCancelled || s == DealExpired
}

// ComputeDealPrice derives the discounted price from the product's base
// price, rounded to cents. The accepted discount range (1-80) guarantees
// the result is strictly below the original price.
func ComputeDealPrice(basePrice, discountPercentage float64) float64 {
	price := basePrice * (1 - discountPercentage/100)
	return math.Round(price*100) / 100
}

// GroupDeal is an offer on one product with participation thresholds and
// running counters. Counters are only ever mutated through the join, leave
// and cancel operations so they stay consistent with deal_participants rows.
type GroupDeal struct {
	ID                  string     `db:"id" json:"id"`
	ProductID           string     `db:"product_id" json:"productId"`
	Title               string     `db:"title" json:"title"`
	Description         *string    `db:"description" json:"description,omitempty"`
	TargetParticipants  int        `db:"target_participants" json:"targetParticipants"`
	TargetQuantity      int        `db:"target_quantity" json:"targetQuantity"`
	CurrentParticipants int        `db:"current_participants" json:"currentParticipants"`
	CurrentQuantity     int        `db:"current_quantity" json:"currentQuantity"`
	DealPrice           float64    `db:"deal_price" json:"dealPrice"`
	OriginalPrice       float64    `db:"original_price" json:"originalPrice"`
	DiscountPercentage  float64    `db:"discount_percentage" json:"discountPercentage"`
	StartDate           time.Time  `db:"start_date" json:"startDate"`
	EndDate             time.Time  `db:"end_date" json:"endDate"`
	Status              DealStatus `db:"status" json:"status"`
	CreatedBy           string     `db:"created_by" json:"createdBy"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"-"`
}

// HasExpired reports whether the deal's end date lies before now. Expiry is
// evaluated at read time; the sweep worker materializes it in storage later.
func (d *GroupDeal) HasExpired(now time.Time) bool {
	return d.EndDate.Before(now)
}

// ThresholdMet reports whether the participant target has been reached.
func (d *GroupDeal) ThresholdMet() bool {
	return d.CurrentParticipants >= d.TargetParticipants
}

// GroupDealWithProduct is a deal joined with product and category info for
// list and detail endpoints.
type GroupDealWithProduct struct {
	GroupDeal
	ProductName        string  `db:"product_name" json:"productName"`
	ProductDescription string  `db:"product_description" json:"productDescription"`
	ProductImageURL    *string `db:"product_image_url" json:"productImageUrl,omitempty"`
	CategoryID         string  `db:"category_id" json:"categoryId"`
	CategoryName       string  `db:"category_name" json:"categoryName"`
	CreatorName        *string `db:"creator_name" json:"creatorName,omitempty"`
}

// GroupDealStats is the computed progress view of one deal.
type GroupDealStats struct {
	DealID               string  `db:"deal_id" json:"dealId"`
	TotalParticipants    int     `db:"total_participants" json:"totalParticipants"`
	TotalQuantity        int     `db:"total_quantity" json:"totalQuantity"`
	CompletionPercentage float64 `db:"completion_percentage" json:"completionPercentage"`
	TimeRemainingHours   float64 `db:"time_remaining_hours" json:"timeRemainingHours"`
	IsThresholdMet       bool    `db:"is_threshold_met" json:"isThresholdMet"`
	ProjectedSavings     float64 `db:"projected_savings" json:"projectedSavings"`
}
