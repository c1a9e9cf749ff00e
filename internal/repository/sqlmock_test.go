package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockRepos(t *testing.T) (*Repositories, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	return New(db), mock
}

func TestArchiveIssuesGuardedUpdate(t *testing.T) {
	repos, mock := setupMockRepos(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET .*"archived"=.*WHERE products\.id = \$\d+ AND products\.archived = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repos.Products.Archive(context.Background(), 3, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreOfActiveRowChangesNothing(t *testing.T) {
	repos, mock := setupMockRepos(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET .*"active"=.*WHERE users\.id = \$\d+ AND users\.archived = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repos.Users.Restore(context.Background(), 8, map[string]any{"active": true})
	require.ErrorIs(t, err, ErrNotChanged)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUniqueViolationIsTranslated(t *testing.T) {
	repos, mock := setupMockRepos(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "products"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ux_products_name_active"})
	mock.ExpectRollback()

	err := repos.Products.Create(context.Background(), &models.Product{Name: "Widget", Price: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceItemsRollsBackOnFailure(t *testing.T) {
	repos, mock := setupMockRepos(t)
	boom := errors.New("insert failed")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "order_items" WHERE order_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`INSERT INTO "order_items"`).WillReturnError(boom)
	mock.ExpectRollback()

	order := &models.Order{ID: 4, State: models.OrderStateDraft}
	err := repos.Orders.ReplaceItems(context.Background(), order, []models.OrderItem{{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(2)}})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
