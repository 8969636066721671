package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    Name
		wantErr bool
	}{
		{Context, false},
		{Hooks, false},
		{"uif-draft", false},
		{"", true},
		{"   ", true},
		{"../etc/passwd", true},
		{"a/b", true},
		{`a\b`, true},
		{"redis:key", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
