package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/splicerhq/groupbuy_api/internal/cache"
	"github.com/splicerhq/groupbuy_api/internal/models"
	"github.com/splicerhq/groupbuy_api/internal/repository"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

const (
	minDealDuration = time.Hour
	maxDealDuration = 720 * time.Hour

	leaveNote  = " [Left the deal]"
	cancelNote = " [Deal cancelled by creator]"
)

// DealService owns the group deal lifecycle. Every mutation that touches
// participant counters runs inside a transaction that first locks the deal
// row, so concurrent joins and leaves serialize on the deal and the counters
// stay equal to the sum of active participations.
type DealService struct {
	db          *sqlx.DB
	dealRepo    *repository.DealRepository
	partRepo    *repository.ParticipantRepository
	productRepo *repository.ProductRepository
	statsCache  *cache.DealStatsCache
	now         func() time.Time
}

func NewDealService(db *sqlx.DB, dealRepo *repository.DealRepository, partRepo *repository.ParticipantRepository, productRepo *repository.ProductRepository, statsCache *cache.DealStatsCache) *DealService {
	return &DealService{
		db:          db,
		dealRepo:    dealRepo,
		partRepo:    partRepo,
		productRepo: productRepo,
		statsCache:  statsCache,
		now:         time.Now,
	}
}

type CreateDealRequest struct {
	ProductID          string  `json:"product_id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	TargetParticipants int     `json:"target_participants"`
	TargetQuantity     int     `json:"target_quantity"`
	DiscountPercentage float64 `json:"discount_percentage"`
	DurationHours      int     `json:"duration_hours"`
}

func (r *CreateDealRequest) validate() error {
	errs := ValidationErrors{}
	if _, err := uuid.Parse(r.ProductID); err != nil {
		errs.add("product_id", "Invalid product")
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		errs.add("title", "Title is required")
	} else if len(title) > 100 {
		errs.add("title", "Title must be at most 100 characters")
	}
	if r.TargetParticipants < 2 || r.TargetParticipants > 1000 {
		errs.add("target_participants", "Target participants must be between 2 and 1000")
	}
	if r.TargetQuantity < 0 {
		errs.add("target_quantity", "Target quantity must be at least 1")
	}
	if r.DiscountPercentage < 1 || r.DiscountPercentage > 80 {
		errs.add("discount_percentage", "Discount must be between 1 and 80 percent")
	}
	duration := time.Duration(r.DurationHours) * time.Hour
	if duration < minDealDuration || duration > maxDealDuration {
		errs.add("duration_hours", "Duration must be between 1 hour and 30 days")
	}
	return errs.orNil()
}

type JoinDealRequest struct {
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

func (r *JoinDealRequest) validate() error {
	errs := ValidationErrors{}
	if r.Quantity < 1 || r.Quantity > 100 {
		errs.add("quantity", "Quantity must be between 1 and 100")
	}
	if len(r.Notes) > 500 {
		errs.add("notes", "Notes must be at most 500 characters")
	}
	return errs.orNil()
}

// CreateDeal opens a new group deal in pending status. The deal price is
// derived from the product's base price at creation time and does not track
// later price changes.
func (s *DealService) CreateDeal(ctx context.Context, userID string, req *CreateDealRequest) (*models.GroupDeal, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, utils.ErrProductInactive
	}

	targetQuantity := req.TargetQuantity
	if targetQuantity == 0 {
		targetQuantity = req.TargetParticipants
	}

	var description *string
	if d := strings.TrimSpace(req.Description); d != "" {
		description = &d
	}

	now := s.now()
	deal := &models.GroupDeal{
		ProductID:          product.ID,
		Title:              strings.TrimSpace(req.Title),
		Description:        description,
		TargetParticipants: req.TargetParticipants,
		TargetQuantity:     targetQuantity,
		DiscountPercentage: req.DiscountPercentage,
		OriginalPrice:      product.BasePrice,
		DealPrice:          models.ComputeDealPrice(product.BasePrice, req.DiscountPercentage),
		Status:             models.DealPending,
		EndDate:            now.Add(time.Duration(req.DurationHours) * time.Hour),
		CreatedBy:          userID,
	}

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}

	log.Info().
		Str("deal_id", deal.ID).
		Str("product_id", deal.ProductID).
		Str("created_by", userID).
		Float64("discount", deal.DiscountPercentage).
		Msg("Group deal created")

	return deal, nil
}

// JoinDeal adds the user to a deal, or reactivates their previously cancelled
// participation. It runs under a row lock on the deal so the cap check and the
// counter update cannot interleave with a concurrent join. Preconditions are
// checked in a fixed order: deal exists, deal is open, deal has not expired,
// cap not reached, no active participation yet.
func (s *DealService) JoinDeal(ctx context.Context, dealID, userID string, req *JoinDealRequest) error {
	if err := req.validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	deal, err := s.dealRepo.GetForUpdate(ctx, tx, dealID)
	if err != nil {
		return err
	}

	if !deal.Status.IsOpen() {
		return utils.ErrDealNotOpen
	}
	if deal.HasExpired(s.now()) {
		return utils.ErrDealExpired
	}
	if deal.MaxParticipants != nil && deal.CurrentParticipants >= *deal.MaxParticipants {
		return utils.ErrDealFull
	}

	existing, err := s.partRepo.GetByDealAndUser(ctx, tx, dealID, userID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Status == models.ParticipationActive {
		return utils.ErrAlreadyJoined
	}

	if err := s.partRepo.Upsert(ctx, tx, dealID, userID, req.Quantity, req.Notes); err != nil {
		return err
	}

	newStatus := deal.Status
	if newStatus == models.DealPending && deal.CurrentParticipants+1 >= deal.TargetParticipants {
		newStatus, err = models.Transition(deal.Status, models.EventThresholdReached)
		if err != nil {
			return err
		}
	}

	if err := s.dealRepo.ApplyCounterDelta(ctx, tx, dealID, 1, req.Quantity, newStatus); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit join: %w", err)
	}

	if newStatus != deal.Status {
		log.Info().
			Str("deal_id", dealID).
			Int("participants", deal.CurrentParticipants+1).
			Msg("Deal reached target, now active")
	}

	s.invalidateStats(ctx, dealID)
	return nil
}

// LeaveDeal cancels the actor's participation, or a target user's when the
// actor is the deal creator or an admin. Counters are decremented and an
// active deal that drops below its target reverts to pending. Completed and
// cancelled deals are never revived.
func (s *DealService) LeaveDeal(ctx context.Context, dealID, actorID, targetUserID, actorRole string) error {
	userID := actorID
	if targetUserID != "" && targetUserID != actorID {
		userID = targetUserID
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	deal, err := s.dealRepo.GetForUpdate(ctx, tx, dealID)
	if err != nil {
		return err
	}

	if userID != actorID && actorRole != models.RoleAdmin && deal.CreatedBy != actorID {
		return utils.ErrForbidden
	}

	participant, err := s.partRepo.GetByDealAndUser(ctx, tx, dealID, userID)
	if err != nil {
		return err
	}
	if participant == nil || participant.Status != models.ParticipationActive {
		return utils.ErrNotParticipant
	}

	rows, err := s.partRepo.CancelActive(ctx, tx, dealID, userID, leaveNote)
	if err != nil {
		return err
	}
	if rows == 0 {
		return utils.ErrNotParticipant
	}

	newStatus := deal.Status
	if newStatus == models.DealActive && deal.CurrentParticipants-1 < deal.TargetParticipants {
		newStatus, err = models.Transition(deal.Status, models.EventBelowThreshold)
		if err != nil {
			return err
		}
	}

	if err := s.dealRepo.ApplyCounterDelta(ctx, tx, dealID, -1, -participant.Quantity, newStatus); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit leave: %w", err)
	}

	s.invalidateStats(ctx, dealID)
	return nil
}

// CancelDeal lets the creator cancel an open deal. Every active participation
// is cancelled in the same transaction; counters are left as a record of the
// deal's final size.
func (s *DealService) CancelDeal(ctx context.Context, dealID, actorID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	deal, err := s.dealRepo.GetForUpdate(ctx, tx, dealID)
	if err != nil {
		return err
	}
	if deal.CreatedBy != actorID {
		return utils.ErrNotDealCreator
	}

	newStatus, err := models.Transition(deal.Status, models.EventCreatorCancelled)
	if err != nil {
		return utils.ErrDealNotOpen
	}

	if err := s.partRepo.CancelAllActive(ctx, tx, dealID, cancelNote); err != nil {
		return err
	}
	if err := s.dealRepo.SetStatus(ctx, tx, dealID, newStatus); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel: %w", err)
	}

	log.Info().Str("deal_id", dealID).Str("cancelled_by", actorID).Msg("Deal cancelled by creator")

	s.invalidateStats(ctx, dealID)
	return nil
}

// ExpireDue finalizes deals whose end date has passed. Deals that met their
// participant target complete, along with their active participations; the
// rest expire. Returns how many deals were finalized.
func (s *DealService) ExpireDue(ctx context.Context, batchSize int) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	deals, err := s.dealRepo.GetExpiredForUpdate(ctx, tx, batchSize)
	if err != nil {
		return 0, err
	}
	if len(deals) == 0 {
		return 0, nil
	}

	finalized := make([]string, 0, len(deals))
	for i := range deals {
		deal := &deals[i]

		event := models.EventExpired
		if deal.Status == models.DealActive && deal.ThresholdMet() {
			event = models.EventCompleted
		}
		newStatus, err := models.Transition(deal.Status, event)
		if err != nil {
			return 0, err
		}

		if newStatus == models.DealCompleted {
			if err := s.partRepo.CompleteAllActive(ctx, tx, deal.ID); err != nil {
				return 0, err
			}
		}
		if err := s.dealRepo.SetStatus(ctx, tx, deal.ID, newStatus); err != nil {
			return 0, err
		}

		log.Info().
			Str("deal_id", deal.ID).
			Str("from", string(deal.Status)).
			Str("to", string(newStatus)).
			Msg("Deal finalized after end date")

		finalized = append(finalized, deal.ID)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit expiry batch: %w", err)
	}

	for _, id := range finalized {
		s.invalidateStats(ctx, id)
	}
	return len(finalized), nil
}

// GetDeal returns a deal with its product context. A deal past its end date
// that the sweep has not finalized yet is presented as expired.
func (s *DealService) GetDeal(ctx context.Context, dealID string) (*models.GroupDealWithProduct, error) {
	deal, err := s.dealRepo.GetWithProduct(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.Status.IsOpen() && deal.HasExpired(s.now()) {
		deal.Status = models.DealExpired
	}
	return deal, nil
}

// GetStats returns aggregate stats for a deal, served from cache when fresh.
func (s *DealService) GetStats(ctx context.Context, dealID string) (*models.GroupDealStats, error) {
	if s.statsCache != nil {
		if stats, err := s.statsCache.Get(ctx, dealID); err != nil {
			log.Warn().Err(err).Str("deal_id", dealID).Msg("Deal stats cache read failed")
		} else if stats != nil {
			return stats, nil
		}
	}

	stats, err := s.dealRepo.GetStats(ctx, dealID)
	if err != nil {
		return nil, err
	}

	if s.statsCache != nil {
		if err := s.statsCache.Set(ctx, stats); err != nil {
			log.Warn().Err(err).Str("deal_id", dealID).Msg("Deal stats cache write failed")
		}
	}
	return stats, nil
}

func (s *DealService) Search(ctx context.Context, filter *repository.DealFilter) (*repository.DealResult, error) {
	return s.dealRepo.Search(ctx, filter)
}

func (s *DealService) ListAdmin(ctx context.Context, filter *repository.DealFilter) (*repository.DealResult, error) {
	return s.dealRepo.ListAdmin(ctx, filter)
}

func (s *DealService) ListByProduct(ctx context.Context, productID string) ([]models.GroupDealWithProduct, error) {
	return s.dealRepo.ListByProduct(ctx, productID)
}

func (s *DealService) ListJoined(ctx context.Context, userID string) ([]models.GroupDealWithProduct, error) {
	return s.dealRepo.ListJoinedByUser(ctx, userID)
}

func (s *DealService) ListCreated(ctx context.Context, userID string) ([]models.GroupDealWithProduct, error) {
	return s.dealRepo.ListCreatedByUser(ctx, userID)
}

func (s *DealService) ListParticipants(ctx context.Context, dealID string) ([]models.DealParticipantWithUser, error) {
	if _, err := s.dealRepo.GetByID(ctx, dealID); err != nil {
		return nil, err
	}
	return s.partRepo.ListActiveByDeal(ctx, dealID)
}

// CounterReport compares a deal's stored counters against the sum of its
// active participations.
type CounterReport struct {
	DealID               string `json:"deal_id"`
	StoredParticipants   int    `json:"stored_participants"`
	StoredQuantity       int    `json:"stored_quantity"`
	ComputedParticipants int    `json:"computed_participants"`
	ComputedQuantity     int    `json:"computed_quantity"`
	Consistent           bool   `json:"consistent"`
}

// CheckCounters verifies counter consistency for a single deal.
func (s *DealService) CheckCounters(ctx context.Context, dealID string) (*CounterReport, error) {
	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	participants, quantity, err := s.partRepo.SumActive(ctx, dealID)
	if err != nil {
		return nil, err
	}
	return &CounterReport{
		DealID:               dealID,
		StoredParticipants:   deal.CurrentParticipants,
		StoredQuantity:       deal.CurrentQuantity,
		ComputedParticipants: participants,
		ComputedQuantity:     quantity,
		Consistent:           deal.CurrentParticipants == participants && deal.CurrentQuantity == quantity,
	}, nil
}

func (s *DealService) invalidateStats(ctx context.Context, dealID string) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.Invalidate(ctx, dealID); err != nil {
		log.Warn().Err(err).Str("deal_id", dealID).Msg("Deal stats cache invalidation failed")
	}
}
