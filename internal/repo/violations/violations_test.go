package violations_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/reasyhq/platform/internal/repo/violations"
)

var errNotPostgres = errors.New("not postgres")

func TestIsUniqueConstraint(t *testing.T) {
	t.Run("should return false when error is not a postgres error", func(t *testing.T) {
		require.False(t, violations.IsUniqueConstraint(errNotPostgres))
	})

	t.Run("should return true for a unique violation", func(t *testing.T) {
		postgresErr := &pgconn.PgError{
			Code: violations.PgUniqueErrCode,
		}

		require.True(t, violations.IsUniqueConstraint(postgresErr))
	})

	t.Run("should return false for another postgres error code", func(t *testing.T) {
		postgresErr := &pgconn.PgError{
			Code: "23503",
		}

		require.False(t, violations.IsUniqueConstraint(postgresErr))
	})
}
