package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splicerhq/groupbuy_api/internal/models"
	"github.com/splicerhq/groupbuy_api/internal/repository"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

const (
	testDealID    = "9f2c3a74-6c3e-4f4b-9a3a-111111111111"
	testUserID    = "9f2c3a74-6c3e-4f4b-9a3a-222222222222"
	testOtherUser = "9f2c3a74-6c3e-4f4b-9a3a-333333333333"
	testProductID = "9f2c3a74-6c3e-4f4b-9a3a-444444444444"
)

func newDealService(t *testing.T) (*DealService, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	svc := NewDealService(db,
		repository.NewDealRepository(db),
		repository.NewParticipantRepository(db),
		repository.NewProductRepository(db),
		nil,
	)
	return svc, mock
}

func testDeal(status models.DealStatus, current, target int) *repository.DealForUpdate {
	now := time.Now()
	return &repository.DealForUpdate{
		GroupDeal: models.GroupDeal{
			ID:                  testDealID,
			ProductID:           testProductID,
			Title:               "Bulk espresso beans",
			TargetParticipants:  target,
			TargetQuantity:      target,
			CurrentParticipants: current,
			CurrentQuantity:     current,
			DealPrice:           75,
			OriginalPrice:       100,
			DiscountPercentage:  25,
			StartDate:           now.Add(-time.Hour),
			EndDate:             now.Add(24 * time.Hour),
			Status:              status,
			CreatedBy:           testOtherUser,
			CreatedAt:           now.Add(-time.Hour),
			UpdatedAt:           now.Add(-time.Hour),
		},
	}
}

var dealForUpdateCols = []string{
	"id", "product_id", "title", "description",
	"target_participants", "target_quantity",
	"current_participants", "current_quantity",
	"deal_price", "original_price", "discount_percentage",
	"start_date", "end_date", "status", "created_by",
	"created_at", "updated_at", "max_participants",
}

func dealForUpdateRows(d *repository.DealForUpdate) *sqlmock.Rows {
	var maxParticipants interface{}
	if d.MaxParticipants != nil {
		maxParticipants = *d.MaxParticipants
	}
	return sqlmock.NewRows(dealForUpdateCols).AddRow(
		d.ID, d.ProductID, d.Title, nil,
		d.TargetParticipants, d.TargetQuantity,
		d.CurrentParticipants, d.CurrentQuantity,
		d.DealPrice, d.OriginalPrice, d.DiscountPercentage,
		d.StartDate, d.EndDate, string(d.Status), d.CreatedBy,
		d.CreatedAt, d.UpdatedAt, maxParticipants,
	)
}

var participantCols = []string{"id", "deal_id", "user_id", "quantity", "joined_at", "status", "notes"}

func participantRow(userID string, quantity int, status models.ParticipationStatus) *sqlmock.Rows {
	return sqlmock.NewRows(participantCols).AddRow(
		"9f2c3a74-6c3e-4f4b-9a3a-555555555555", testDealID, userID, quantity,
		time.Now().Add(-time.Minute), string(status), nil,
	)
}

func expectGetForUpdate(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF gd")).
		WithArgs(testDealID).
		WillReturnRows(rows)
}

func expectNoParticipant(mock sqlmock.Sqlmock, userID string) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM deal_participants")).
		WithArgs(testDealID, userID).
		WillReturnError(sql.ErrNoRows)
}

func TestJoinDeal_IncrementsCounters(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(testDeal(models.DealPending, 2, 5)))
	expectNoParticipant(mock, testUserID)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO deal_participants")).
		WithArgs(testDealID, testUserID, 2, "need two bags").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("current_participants = current_participants + $2")).
		WithArgs(testDealID, 1, 2, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.JoinDeal(context.Background(), testDealID, testUserID, &JoinDealRequest{Quantity: 2, Notes: "need two bags"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinDeal_ReachingTargetActivates(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(testDeal(models.DealPending, 4, 5)))
	expectNoParticipant(mock, testUserID)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO deal_participants")).
		WithArgs(testDealID, testUserID, 1, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("current_participants = current_participants + $2")).
		WithArgs(testDealID, 1, 1, "active").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.JoinDeal(context.Background(), testDealID, testUserID, &JoinDealRequest{Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinDeal_ReactivatesCancelledParticipation(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(testDeal(models.DealPending, 2, 5)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM deal_participants")).
		WithArgs(testDealID, testUserID).
		WillReturnRows(participantRow(testUserID, 3, models.ParticipationCancelled))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO deal_participants")).
		WithArgs(testDealID, testUserID, 1, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("current_participants = current_participants + $2")).
		WithArgs(testDealID, 1, 1, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.JoinDeal(context.Background(), testDealID, testUserID, &JoinDealRequest{Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinDeal_AlreadyJoined(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(testDeal(models.DealActive, 5, 5)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM deal_participants")).
		WithArgs(testDealID, testUserID).
		WillReturnRows(participantRow(testUserID, 1, models.ParticipationActive))
	mock.ExpectRollback()

	err := svc.JoinDeal(context.Background(), testDealID, testUserID, &JoinDealRequest{Quantity: 1})
	assert.ErrorIs(t, err, utils.ErrAlreadyJoined)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinDeal_CapReached(t *testing.T) {
	svc, mock := newDealService(t)

	deal := testDeal(models.DealActive, 10, 5)
	cap := 10
	deal.MaxParticipants = &cap

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(deal))
	mock.ExpectRollback()

	err := svc.JoinDeal(context.Background(), testDealID, testUserID, &JoinDealRequest{Quantity: 1})
	assert.ErrorIs(t, err, utils.ErrDealFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinDeal_ExpiredDeal(t *testing.T) {
	svc, mock := newDealService(t)

	deal := testDeal(models.DealPending, 2, 5)
	deal.EndDate = time.Now().Add(-time.Minute)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(deal))
	mock.ExpectRollback()

	err := svc.JoinDeal(context.Background(), testDealID, testUserID, &JoinDealRequest{Quantity: 1})
	assert.ErrorIs(t, err, utils.ErrDealExpired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinDeal_ClosedDeal(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(testDeal(models.DealCancelled, 2, 5)))
	mock.ExpectRollback()

	err := svc.JoinDeal(context.Background(), testDealID, testUserID, &JoinDealRequest{Quantity: 1})
	assert.ErrorIs(t, err, utils.ErrDealNotOpen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinDeal_NotFound(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF gd")).
		WithArgs(testDealID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := svc.JoinDeal(context.Background(), testDealID, testUserID, &JoinDealRequest{Quantity: 1})
	assert.ErrorIs(t, err, utils.ErrDealNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinDeal_InvalidQuantity(t *testing.T) {
	svc, _ := newDealService(t)

	err := svc.JoinDeal(context.Background(), testDealID, testUserID, &JoinDealRequest{Quantity: 0})
	var fieldErrs ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "quantity")
}

func TestJoinDeal_RollsBackOnCounterError(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(testDeal(models.DealPending, 2, 5)))
	expectNoParticipant(mock, testUserID)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO deal_participants")).
		WithArgs(testDealID, testUserID, 1, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("current_participants = current_participants + $2")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := svc.JoinDeal(context.Background(), testDealID, testUserID, &JoinDealRequest{Quantity: 1})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveDeal_DecrementsAndReverts(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(testDeal(models.DealActive, 5, 5)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM deal_participants")).
		WithArgs(testDealID, testUserID).
		WillReturnRows(participantRow(testUserID, 2, models.ParticipationActive))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'cancelled'")).
		WithArgs(testDealID, testUserID, " [Left the deal]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("current_participants = current_participants + $2")).
		WithArgs(testDealID, -1, -2, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.LeaveDeal(context.Background(), testDealID, testUserID, "", models.RoleUser)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveDeal_StaysActiveAboveTarget(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(testDeal(models.DealActive, 7, 5)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM deal_participants")).
		WithArgs(testDealID, testUserID).
		WillReturnRows(participantRow(testUserID, 1, models.ParticipationActive))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'cancelled'")).
		WithArgs(testDealID, testUserID, " [Left the deal]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("current_participants = current_participants + $2")).
		WithArgs(testDealID, -1, -1, "active").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.LeaveDeal(context.Background(), testDealID, testUserID, "", models.RoleUser)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveDeal_NeverRevivesTerminalDeal(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(testDeal(models.DealExpired, 3, 5)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM deal_participants")).
		WithArgs(testDealID, testUserID).
		WillReturnRows(participantRow(testUserID, 1, models.ParticipationActive))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'cancelled'")).
		WithArgs(testDealID, testUserID, " [Left the deal]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("current_participants = current_participants + $2")).
		WithArgs(testDealID, -1, -1, "expired").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.LeaveDeal(context.Background(), testDealID, testUserID, "", models.RoleUser)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveDeal_NotParticipant(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(testDeal(models.DealActive, 5, 5)))
	expectNoParticipant(mock, testUserID)
	mock.ExpectRollback()

	err := svc.LeaveDeal(context.Background(), testDealID, testUserID, "", models.RoleUser)
	assert.ErrorIs(t, err, utils.ErrNotParticipant)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveDeal_TargetUserRequiresAuthority(t *testing.T) {
	svc, mock := newDealService(t)

	// Actor is neither the target, the deal creator, nor an admin.
	deal := testDeal(models.DealActive, 5, 5)
	deal.CreatedBy = testOtherUser

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(deal))
	mock.ExpectRollback()

	err := svc.LeaveDeal(context.Background(), testDealID, testUserID, testOtherUser, models.RoleUser)
	assert.ErrorIs(t, err, utils.ErrForbidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveDeal_AdminRemovesParticipant(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(testDeal(models.DealActive, 5, 5)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM deal_participants")).
		WithArgs(testDealID, testOtherUser).
		WillReturnRows(participantRow(testOtherUser, 1, models.ParticipationActive))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'cancelled'")).
		WithArgs(testDealID, testOtherUser, " [Left the deal]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("current_participants = current_participants + $2")).
		WithArgs(testDealID, -1, -1, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.LeaveDeal(context.Background(), testDealID, testUserID, testOtherUser, models.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelDeal_ByCreator(t *testing.T) {
	svc, mock := newDealService(t)

	deal := testDeal(models.DealActive, 5, 5)
	deal.CreatedBy = testUserID

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(deal))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'cancelled'")).
		WithArgs(testDealID, " [Deal cancelled by creator]").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE group_deals SET status = $2")).
		WithArgs(testDealID, "cancelled").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.CancelDeal(context.Background(), testDealID, testUserID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelDeal_NotCreator(t *testing.T) {
	svc, mock := newDealService(t)

	deal := testDeal(models.DealActive, 5, 5)
	deal.CreatedBy = testOtherUser

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(deal))
	mock.ExpectRollback()

	err := svc.CancelDeal(context.Background(), testDealID, testUserID)
	assert.ErrorIs(t, err, utils.ErrNotDealCreator)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelDeal_AlreadyTerminal(t *testing.T) {
	svc, mock := newDealService(t)

	deal := testDeal(models.DealCompleted, 5, 5)
	deal.CreatedBy = testUserID

	mock.ExpectBegin()
	expectGetForUpdate(mock, dealForUpdateRows(deal))
	mock.ExpectRollback()

	err := svc.CancelDeal(context.Background(), testDealID, testUserID)
	assert.ErrorIs(t, err, utils.ErrDealNotOpen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func expiredDealRows(deals ...*repository.DealForUpdate) *sqlmock.Rows {
	cols := dealForUpdateCols[:len(dealForUpdateCols)-1] // plain group_deals row, no cap column
	rows := sqlmock.NewRows(cols)
	for _, d := range deals {
		rows.AddRow(
			d.ID, d.ProductID, d.Title, nil,
			d.TargetParticipants, d.TargetQuantity,
			d.CurrentParticipants, d.CurrentQuantity,
			d.DealPrice, d.OriginalPrice, d.DiscountPercentage,
			d.StartDate, d.EndDate, string(d.Status), d.CreatedBy,
			d.CreatedAt, d.UpdatedAt,
		)
	}
	return rows
}

func TestExpireDue_FinalizesMetAndUnmetDeals(t *testing.T) {
	svc, mock := newDealService(t)

	met := testDeal(models.DealActive, 5, 5)
	unmet := testDeal(models.DealPending, 2, 5)
	unmet.ID = "9f2c3a74-6c3e-4f4b-9a3a-666666666666"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
		WithArgs(100).
		WillReturnRows(expiredDealRows(met, unmet))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'completed'")).
		WithArgs(met.ID).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE group_deals SET status = $2")).
		WithArgs(met.ID, "completed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE group_deals SET status = $2")).
		WithArgs(unmet.ID, "expired").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := svc.ExpireDue(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireDue_NothingDue(t *testing.T) {
	svc, mock := newDealService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
		WithArgs(100).
		WillReturnRows(expiredDealRows())
	mock.ExpectRollback()

	n, err := svc.ExpireDue(context.Background(), 100)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDeal_Validation(t *testing.T) {
	svc, _ := newDealService(t)

	_, err := svc.CreateDeal(context.Background(), testUserID, &CreateDealRequest{
		ProductID:          "not-a-uuid",
		Title:              "",
		TargetParticipants: 1,
		DiscountPercentage: 95,
		DurationHours:      0,
	})

	var fieldErrs ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "product_id")
	assert.Contains(t, fieldErrs, "title")
	assert.Contains(t, fieldErrs, "target_participants")
	assert.Contains(t, fieldErrs, "discount_percentage")
	assert.Contains(t, fieldErrs, "duration_hours")
}

func TestCreateDeal_InactiveProduct(t *testing.T) {
	svc, mock := newDealService(t)

	cols := []string{"id", "name", "description", "category_id", "base_price", "minimum_quantity",
		"max_participants", "image_urls", "specifications", "is_active", "created_by", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM products")).
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			testProductID, "Espresso beans", "A ten character description", "cat-1", 100.0, 1,
			nil, "{}", []byte(`{}`), false, testOtherUser, time.Now(), time.Now(),
		))

	_, err := svc.CreateDeal(context.Background(), testUserID, &CreateDealRequest{
		ProductID:          testProductID,
		Title:              "Bulk beans",
		TargetParticipants: 5,
		DiscountPercentage: 25,
		DurationHours:      48,
	})
	assert.ErrorIs(t, err, utils.ErrProductInactive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDeal_DerivesPriceAndEndDate(t *testing.T) {
	svc, mock := newDealService(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	cols := []string{"id", "name", "description", "category_id", "base_price", "minimum_quantity",
		"max_participants", "image_urls", "specifications", "is_active", "created_by", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM products")).
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			testProductID, "Espresso beans", "A ten character description", "cat-1", 49.99, 1,
			nil, "{}", []byte(`{}`), true, testOtherUser, now, now,
		))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO group_deals")).
		WithArgs(testProductID, "Bulk beans", nil, 5, 5, 44.99, 49.99, 10.0,
			now.Add(48*time.Hour), "pending", testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_date", "created_at"}).
			AddRow(testDealID, now, now))

	deal, err := svc.CreateDeal(context.Background(), testUserID, &CreateDealRequest{
		ProductID:          testProductID,
		Title:              "Bulk beans",
		TargetParticipants: 5,
		DiscountPercentage: 10,
		DurationHours:      48,
	})
	require.NoError(t, err)
	assert.Equal(t, testDealID, deal.ID)
	assert.Equal(t, 44.99, deal.DealPrice)
	assert.Equal(t, models.DealPending, deal.Status)
	assert.Equal(t, 5, deal.TargetQuantity, "target quantity defaults to target participants")
	require.NoError(t, mock.ExpectationsWereMet())
}
