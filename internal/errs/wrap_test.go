package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reasyhq/platform/internal/errs"
)

var errBase = errors.New("base error")

func TestWrap(t *testing.T) {
	t.Run("nil extension returns base", func(t *testing.T) {
		err := errs.Wrap(errBase, nil)
		assert.Equal(t, errBase, err)
	})

	t.Run("wrapped error matches both", func(t *testing.T) {
		ext := errors.New("extension")
		err := errs.Wrap(errBase, ext)
		assert.ErrorIs(t, err, errBase)
		assert.ErrorIs(t, err, ext)
	})
}

func TestWrapf(t *testing.T) {
	err := errs.Wrapf(errBase, "details")
	assert.ErrorIs(t, err, errBase)
	assert.Contains(t, err.Error(), "details")
}
