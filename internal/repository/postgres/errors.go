package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"quillhouse/internal/domain"
)

// SQLSTATE codes the workspace repositories branch on.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRep      = "22P02" // malformed uuid parameter
)

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError reports a unique constraint violation.
func IsPgDuplicateError(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

// IsPgNoRowsError reports an empty single-row result.
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError reports a write that referenced a missing parent row.
func IsPgForeignKeyError(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

// IsPgInvalidInputError reports a parameter Postgres could not parse, such as a bad uuid.
func IsPgInvalidInputError(err error) bool {
	return sqlState(err) == codeInvalidTextRep
}

// LookupError maps a failed single-row read of resource id. A missing row and an
// unparseable id both become domain.ErrNotFound.
func LookupError(err error, resource, id string) error {
	if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
		return fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", resource, err)
}
