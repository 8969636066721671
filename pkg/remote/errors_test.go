package remote

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "status and detail",
			err:      New("airtable", "Create", 422, `{"type":"INVALID_VALUE"}`),
			expected: `airtable [Create]: status 422: {"type":"INVALID_VALUE"}`,
		},
		{
			name:     "detail only",
			err:      New("perplexity", "Ask", 0, "rate limited"),
			expected: "perplexity [Ask]: rate limited",
		},
		{
			name:     "transport error",
			err:      Wrap("airtable", "List", context.DeadlineExceeded),
			expected: "airtable [List]: context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIsRemote(t *testing.T) {
	err := fmt.Errorf("phase2: %w", New("perplexity", "Ask", 500, "boom"))

	assert.True(t, IsRemote(err))
	assert.False(t, IsRemote(errors.New("plain")))

	var remoteErr *Error
	assert.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, 500, remoteErr.StatusCode)
}

func TestWrap_UnwrapsTransportError(t *testing.T) {
	err := Wrap("postgresql", "Get", context.Canceled)

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrRemote)
}
