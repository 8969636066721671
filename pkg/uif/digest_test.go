package uif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	doc := decode(t, `{
	  "core_knowledge": {"facts": [{"statement": "first"}, {"statement": ""}, {"statement": "third"}]},
	  "angles": [
	    {"angle_name": "a", "contrarian_take": "ta", "supporting_facts": [2, 0, 1, 7, -1, 1.5]},
	    {"angle_name": "b"}
	  ]
	}`)

	digest := Digest(doc)
	require.Len(t, digest, 2)

	assert.Equal(t, 0, digest[0].Index)
	assert.Equal(t, "a", digest[0].AngleName)
	assert.Equal(t, "ta", digest[0].ContrarianTake)
	assert.Equal(t, []string{"third", "first"}, digest[0].Facts)

	assert.Equal(t, 1, digest[1].Index)
	assert.Empty(t, digest[1].Facts)
}

func TestDigest_Malformed(t *testing.T) {
	assert.Empty(t, Digest(nil))
	assert.Empty(t, Digest(map[string]any{"angles": "nope"}))
}
