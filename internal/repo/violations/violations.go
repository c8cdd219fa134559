package violations

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// PgUniqueErrCode see https://www.postgresql.org/docs/14/errcodes-appendix.html
	PgUniqueErrCode = "23505"
)

// IsUniqueConstraint checks if the error is a PostgreSQL unique constraint violation
func IsUniqueConstraint(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == PgUniqueErrCode
}
