package schema

import (
	"testing"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/stretchr/testify/assert"
)

func TestValidate_Queries(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", `{"queries":[{"query":"a","intent":"x"},{"query":"b"}]}`, false},
		{"missing queries", `{}`, true},
		{"empty list", `{"queries":[]}`, true},
		{"blank query", `{"queries":[{"query":""}]}`, true},
		{"wrong type", `{"queries":"a"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBytes(artifact.Queries, []byte(tt.doc))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDocument)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Hooks(t *testing.T) {
	doc := map[string]any{
		"hooks": []any{
			map[string]any{"hook_text": "Your agent is lying", "hook_type": "contrarian", "angle_name": "Silent failures"},
			map[string]any{"hook_text": "x"},
		},
	}

	err := Validate(artifact.Hooks, doc)
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.Contains(t, err.Error(), "hook_type")
	assert.Contains(t, err.Error(), "; ")
}

func TestValidate_NoSchema(t *testing.T) {
	assert.False(t, Has(artifact.Context))
	assert.True(t, Has(artifact.Hooks))

	err := Validate(artifact.Context, map[string]any{})
	assert.ErrorIs(t, err, ErrNoSchema)
}
