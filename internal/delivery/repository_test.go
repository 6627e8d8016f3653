package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("AssignsAndShipsOrder", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM deliveries WHERE order_id = \$1 AND status != 'failed'\)`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`INSERT INTO deliveries`).
			WithArgs(int64(5), int64(77), nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "assigned_at"}).AddRow(1, time.Now()))
		mock.ExpectExec(`UPDATE orders SET rider_id = \$1, status = 'shipped', updated_at = NOW\(\) WHERE id = \$2 AND status NOT IN \('cancelled', 'delivered'\)`).
			WithArgs(int64(77), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		d, err := repo.Create(ctx, 5, 77, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusAssigned, d.Status)
		assert.Equal(t, int64(77), d.RiderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OrderAlreadyHasDelivery", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err = repo.Create(ctx, 5, 77, nil)
		assert.ErrorIs(t, err, ErrAlreadyAssigned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FailedDeliveryDoesNotBlockReassignment", func(t *testing.T) {
		// A failed delivery must not count as the order's live delivery:
		// the failure reopened the order to shipped with its rider
		// cleared, and a fresh rider gets a fresh delivery row.
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM deliveries WHERE order_id = \$1 AND status != 'failed'\)`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`INSERT INTO deliveries`).
			WithArgs(int64(5), int64(88), nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "assigned_at"}).AddRow(2, time.Now()))
		mock.ExpectExec(`UPDATE orders SET rider_id = \$1, status = 'shipped'`).
			WithArgs(int64(88), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		d, err := repo.Create(ctx, 5, 88, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(88), d.RiderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CancelledOrderCannotBeAssigned", func(t *testing.T) {
		// The order update is guarded on non-terminal status; assigning
		// a rider must never pull a cancelled order back to shipped.
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`INSERT INTO deliveries`).
			WithArgs(int64(9), int64(77), nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "assigned_at"}).AddRow(3, time.Now()))
		mock.ExpectExec(`UPDATE orders SET rider_id = \$1, status = 'shipped', updated_at = NOW\(\) WHERE id = \$2 AND status NOT IN \('cancelled', 'delivered'\)`).
			WithArgs(int64(77), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err = repo.Create(ctx, 9, 77, nil)
		assert.ErrorIs(t, err, ErrIllegalTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_AssignLeastLoaded(t *testing.T) {
	ctx := context.Background()

	t.Run("PicksLeastLoadedRider", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		// The HAVING/ORDER BY clause resolves the least-loaded rider
		// below the ceiling in the database itself.
		mock.ExpectQuery(`SELECT u.id FROM users u LEFT JOIN deliveries d ON d.rider_id = u.id AND d.status NOT IN \('delivered', 'failed'\) WHERE u.role = 'rider' AND u.status = 'active' GROUP BY u.id HAVING COUNT\(d.id\) < \$1 ORDER BY COUNT\(d.id\) ASC, u.id ASC LIMIT 1`).
			WithArgs(maxOpenDeliveries).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`INSERT INTO deliveries`).
			WithArgs(int64(5), int64(77), "Auto-assigned on ship").
			WillReturnRows(sqlmock.NewRows([]string{"id", "assigned_at"}).AddRow(1, time.Now()))
		mock.ExpectExec(`UPDATE orders SET rider_id = \$1, status = 'shipped'`).
			WithArgs(int64(77), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		riderID, err := repo.AssignLeastLoaded(ctx, 5, "Auto-assigned on ship")
		require.NoError(t, err)
		assert.Equal(t, int64(77), riderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AllRidersAtCapacity", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT u.id FROM users u`).
			WithArgs(maxOpenDeliveries).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err = repo.AssignLeastLoaded(ctx, 5, "Auto-assigned on ship")
		assert.ErrorIs(t, err, ErrNoRiderAvailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("PickedUpSyncsOrder", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE deliveries SET status = \$1, picked_up_at = NOW\(\) WHERE id = \$2 AND status = \$3 RETURNING order_id`).
			WithArgs(StatusPickedUp, int64(1), StatusAssigned).
			WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(5))
		mock.ExpectExec(`UPDATE orders SET status = \$1, updated_at = NOW\(\), picked_up_at = NOW\(\) WHERE id = \$2`).
			WithArgs(StatusPickedUp.OrderStatus(), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.UpdateStatus(ctx, 1, StatusAssigned, StatusPickedUp, nil)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FailedClearsRiderAndReopensOrder", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		notes := "customer unreachable"

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE deliveries SET status = \$1, delivery_notes = \$4 WHERE id = \$2 AND status = \$3 RETURNING order_id`).
			WithArgs(StatusFailed, int64(1), StatusOnTheWay, notes).
			WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(5))
		mock.ExpectExec(`UPDATE orders SET status = \$1, updated_at = NOW\(\), rider_id = NULL WHERE id = \$2`).
			WithArgs(StatusFailed.OrderStatus(), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.UpdateStatus(ctx, 1, StatusOnTheWay, StatusFailed, &notes)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GuardMissIsIllegalTransition", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE deliveries SET status`).
			WillReturnRows(sqlmock.NewRows([]string{"order_id"}))
		mock.ExpectRollback()

		err = repo.UpdateStatus(ctx, 1, StatusAssigned, StatusPickedUp, nil)
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})
}

func TestRepository_RidersWithAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT u.id, u.first_name, u.last_name, COALESCE\(u.phone, ''\), COUNT\(d.id\) AS current_deliveries FROM users u`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "phone", "current_deliveries"}).
			AddRow(2, "Budi", "Santoso", "0812", 0).
			AddRow(1, "Ani", "Wijaya", "0813", 2).
			AddRow(3, "Citra", "Lestari", "0814", 5))

	riders, err := repo.RidersWithAvailability(context.Background())
	require.NoError(t, err)
	require.Len(t, riders, 3)
	assert.True(t, riders[0].IsAvailable())
	assert.True(t, riders[1].IsAvailable())
	assert.False(t, riders[2].IsAvailable(), "rider at the ceiling is unavailable")
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT .* FROM deliveries d`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrDeliveryNotFound)
}
