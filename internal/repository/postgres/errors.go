package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"zcc-wallet-backend/internal/domain"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// storageErr marks err as a transient storage failure unless it already
// carries a domain meaning.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != domain.KindStorageUnavailable {
		return err
	}
	var se *domain.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
