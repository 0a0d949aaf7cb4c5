package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splicerhq/groupbuy_api/internal/utils"
)

func newDealRepo(t *testing.T) (*DealRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewDealRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "gd.end_date ASC", orderClause("ending_soon"))
	assert.Equal(t, "gd.current_participants DESC, gd.created_at DESC", orderClause("popular"))
	assert.Equal(t, "gd.discount_percentage DESC, gd.created_at DESC", orderClause("discount_high"))
	assert.Equal(t, "gd.created_at DESC", orderClause("newest"))

	// Anything outside the whitelist falls back to newest; sort input is
	// never interpolated into SQL.
	assert.Equal(t, "gd.created_at DESC", orderClause("id; DROP TABLE group_deals"))
}

var dealWithProductCols = []string{
	"id", "product_id", "title", "description",
	"target_participants", "target_quantity",
	"current_participants", "current_quantity",
	"deal_price", "original_price", "discount_percentage",
	"start_date", "end_date", "status", "created_by",
	"created_at", "updated_at",
	"product_name", "product_description", "product_image_url",
	"category_id", "category_name",
}

func dealWithProductRow(rows *sqlmock.Rows, id string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, "prod-1", "Bulk espresso beans", nil,
		5, 5, 2, 2,
		75.0, 100.0, 25.0,
		now.Add(-time.Hour), now.Add(24*time.Hour), "pending", "user-1",
		now.Add(-time.Hour), now.Add(-time.Hour),
		"Espresso beans", "Single origin, whole bean", nil,
		"cat-1", "Groceries",
	)
}

func TestSearch_AppliesFiltersAndPagination(t *testing.T) {
	repo, mock := newDealRepo(t)

	minDiscount := 20.0
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("%beans%", "cat-1", minDiscount).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY gd.end_date ASC")).
		WithArgs("%beans%", "cat-1", minDiscount, 12, 12).
		WillReturnRows(dealWithProductRow(sqlmock.NewRows(dealWithProductCols), "deal-1"))

	result, err := repo.Search(context.Background(), &DealFilter{
		Query:       "beans",
		CategoryID:  "cat-1",
		MinDiscount: &minDiscount,
		Sort:        "ending_soon",
		Page:        2,
		Limit:       0, // falls back to the default page size
	})
	require.NoError(t, err)
	assert.Equal(t, 25, result.TotalItems)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 12, result.Limit)
	require.Len(t, result.Deals, 1)
	assert.Equal(t, "deal-1", result.Deals[0].ID)
	assert.Equal(t, "Espresso beans", result.Deals[0].ProductName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_ClampsOversizedLimit(t *testing.T) {
	repo, mock := newDealRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1 OFFSET $2")).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows(dealWithProductCols))

	result, err := repo.Search(context.Background(), &DealFilter{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Limit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStats_NotFound(t *testing.T) {
	repo, mock := newDealRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM group_deals gd")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetStats(context.Background(), "missing")
	assert.ErrorIs(t, err, utils.ErrDealNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newDealRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM group_deals")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, utils.ErrDealNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
