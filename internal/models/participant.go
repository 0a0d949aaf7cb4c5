package models

import "time"

// ParticipationStatus is the state of a user's membership in a deal.
type ParticipationStatus string

const (
	ParticipationActive    ParticipationStatus = "active"
	ParticipationCancelled ParticipationStatus = "cancelled"
	ParticipationCompleted ParticipationStatus = "completed"
)

// DealParticipant is the join record between a user and a deal. It is unique
// per (deal_id, user_id): re-joining after leaving reactivates the existing
// row instead of inserting a second one.
type DealParticipant struct {
	ID       string              `db:"id" json:"id"`
	DealID   string              `db:"deal_id" json:"dealId"`
	UserID   string              `db:"user_id" json:"userId"`
	Quantity int                 `db:"quantity" json:"quantity"`
	JoinedAt time.Time           `db:"joined_at" json:"joinedAt"`
	Status   ParticipationStatus `db:"status" json:"status"`
	Notes    *string             `db:"notes" json:"notes,omitempty"`
}

// DealParticipantWithUser adds user display fields for the participants list.
type DealParticipantWithUser struct {
	DealParticipant
	UserName  string `db:"user_name" json:"userName"`
	UserEmail string `db:"user_email" json:"userEmail"`
}
