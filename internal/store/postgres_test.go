package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/itstimwhite/jovie-gateway/internal/links"
)

func TestClassifySchemaError(t *testing.T) {
	t.Parallel()

	t.Run("undefined table maps to schema not ready", func(t *testing.T) {
		err := classifySchemaError(fmt.Errorf("save: %w",
			&pgconn.PgError{Code: "42P01", Message: `relation "signed_access_records" does not exist`}))

		assert.ErrorIs(t, err, links.ErrSchemaNotReady)
	})

	t.Run("undefined column maps to schema not ready", func(t *testing.T) {
		err := classifySchemaError(fmt.Errorf("save: %w",
			&pgconn.PgError{Code: "42703", Message: `column "ip_address" does not exist`}))

		assert.ErrorIs(t, err, links.ErrSchemaNotReady)
	})

	t.Run("constraint violation stays fatal", func(t *testing.T) {
		err := classifySchemaError(fmt.Errorf("save: %w",
			&pgconn.PgError{Code: "23505", Message: "duplicate key value"}))

		assert.NotErrorIs(t, err, links.ErrSchemaNotReady)
	})

	t.Run("non postgres error passes through", func(t *testing.T) {
		original := errors.New("connection refused")

		err := classifySchemaError(original)

		assert.Equal(t, original, err)
		assert.NotErrorIs(t, err, links.ErrSchemaNotReady)
	})
}
