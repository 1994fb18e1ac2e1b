package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/repository/postgres"
)

func newVerification() *domain.Verification {
	now := time.Now().UTC()
	return &domain.Verification{
		ID: "v-1", UserID: "u-1", Type: domain.VerificationIDDocument,
		Status: domain.VerificationPending, CreatedOn: now, UpdatedOn: now,
	}
}

func TestVerificationRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()
	repo := postgres.NewVerificationRepository(db)

	mock.ExpectExec("INSERT INTO verifications").
		WillReturnError(&pq.Error{Code: "23505"})

	err = repo.Create(ctx, newVerification())
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_CreatePaid(t *testing.T) {
	ctx := context.Background()

	t.Run("Claims bundle and inserts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewVerificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO verification_bundles").
			WithArgs("u-1", "tx-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO verifications").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.CreatePaid(ctx, newVerification(), "tx-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Bundle held by another spend", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewVerificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO verification_bundles").
			WithArgs("u-1", "tx-2", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.CreatePaid(ctx, newVerification(), "tx-2")
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Live verification of the same type", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewVerificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO verification_bundles").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO verifications").
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err = repo.CreatePaid(ctx, newVerification(), "tx-1")
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProfileRepository_SetFeaturedUntil(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	until := now.Add(7 * 24 * time.Hour)

	t.Run("Updates when not featured", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewProfileRepository(db)

		mock.ExpectExec(`UPDATE profiles SET featured_until = \$3`).
			WithArgs("u-1", now, until).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetFeaturedUntil(ctx, "u-1", now, until))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Still featured", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewProfileRepository(db)

		mock.ExpectExec(`UPDATE profiles SET featured_until = \$3`).
			WithArgs("u-1", now, until).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err = repo.SetFeaturedUntil(ctx, "u-1", now, until)
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing profile", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewProfileRepository(db)

		mock.ExpectExec(`UPDATE profiles SET featured_until = \$3`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err = repo.SetFeaturedUntil(ctx, "u-1", now, until)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
