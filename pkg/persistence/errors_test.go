package persistence_test

import (
	"errors"
	"testing"

	"github.com/metaarchitect/research-engine/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		recordErr := persistence.NewRecordError("Get", "ideas", "rec123", persistence.ErrRecordNotFound)

		assert.True(t, persistence.IsRecordNotFound(recordErr))
		assert.True(t, errors.Is(recordErr, persistence.ErrRecordNotFound))
		assert.False(t, persistence.IsRecordNotFound(errors.New("other")))
	})

	t.Run("record error contains context", func(t *testing.T) {
		err := persistence.NewRecordError("Update", "ideas", "rec123", persistence.ErrRecordNotFound)

		assert.Contains(t, err.Error(), "Update")
		assert.Contains(t, err.Error(), "rec123")
		assert.Contains(t, err.Error(), "ideas")
		assert.Contains(t, err.Error(), "record not found")
	})

	t.Run("table level error omits record id", func(t *testing.T) {
		err := persistence.NewRecordError("List", "logs", "", persistence.ErrInvalidTable)

		assert.Equal(t, "List operation failed in logs: invalid table", err.Error())
	})
}
