package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Integrity errors surfaced at the operation boundary. Stores never retry on
// these; retry-on-collision is caller policy.
var (
	ErrUniqueViolation     = errors.New("pg: unique violation")
	ErrForeignKeyViolation = errors.New("pg: foreign key violation")
	ErrNotNullViolation    = errors.New("pg: not-null violation")
	ErrDeleteConflict      = errors.New("pg: row still referenced")
	ErrNotFound            = errors.New("pg: not found")
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
)

// Map translates driver errors from inserts, updates and lookups into the
// taxonomy above. Errors it does not recognise pass through unchanged.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if pgErr, ok := maybePgError(err); ok {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pgErr.ConstraintName)
		case codeNotNullViolation:
			return fmt.Errorf("%w: column %s", ErrNotNullViolation, pgErr.ColumnName)
		}
	}
	return err
}

// MapDelete translates errors from hard-delete statements. A foreign key
// violation raised by a delete means the row is still referenced and the
// caller should soft-delete instead.
func MapDelete(err error) error {
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == codeForeignKeyViolation {
		return fmt.Errorf("%w: %s", ErrDeleteConflict, pgErr.TableName)
	}
	return Map(err)
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// NullIfEmpty converts an empty string to SQL NULL. Conditionally unique
// columns (verifiedemail, verifiedmobile) rely on this: uniqueness applies
// only among non-null values.
func NullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
