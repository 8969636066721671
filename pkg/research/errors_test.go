package research

import (
	"errors"
	"fmt"
	"testing"

	"github.com/metaarchitect/research-engine/pkg/remote"
	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, ""},
		{&AlreadyLockedError{EntityID: "rec1"}, "already_locked"},
		{&MissingInputError{Input: "brand"}, "missing_input"},
		{&PreconditionError{Phase: Phase2, Reason: "queries must hold exactly 3 items"}, "precondition"},
		{&ValidationError{Errors: []string{"meta.topic is empty"}}, "validation"},
		{&PartialWriteError{Written: 1, Errs: []error{errors.New("boom")}}, "partial_write"},
		{remote.New("airtable", "Update", 422, "bad"), "remote"},
		{fmt.Errorf("wrapped: %w", remote.Wrap("perplexity", "Ask", errors.New("timeout"))), "remote"},
		{errors.New("other"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Kind(tt.err))
		})
	}
}

func TestMissingInputIsPrecondition(t *testing.T) {
	err := &MissingInputError{Input: "content_brief"}

	assert.ErrorIs(t, err, ErrMissingInput)
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.NotErrorIs(t, &PreconditionError{}, ErrMissingInput)
}

func TestPhaseError(t *testing.T) {
	cause := &ValidationError{Errors: []string{"a", "b"}}
	err := &PhaseError{Phase: Phase3, Err: cause}

	assert.Equal(t, "phase3 failed: UIF validation failed: a; b", err.Error())
	assert.ErrorIs(t, err, ErrValidation)

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, []string{"a", "b"}, validation.Errors)
}

func TestPartialWriteError(t *testing.T) {
	cause := remote.New("airtable", "Create", 422, "bad hook")
	err := &PartialWriteError{Written: 2, Errs: []error{cause}}

	assert.Equal(t, "1 of 3 hooks failed to write: airtable [Create]: status 422: bad hook", err.Error())
	assert.ErrorIs(t, err, ErrPartialWrite)
	assert.True(t, remote.IsRemote(err))
}

func TestParsePhase(t *testing.T) {
	phase, ok := ParsePhase("phase3")
	assert.True(t, ok)
	assert.Equal(t, Phase3, phase)

	_, ok = ParsePhase("phase5")
	assert.False(t, ok)
}
