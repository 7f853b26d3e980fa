package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMap(t *testing.T) {
	assert.NotNil(t, CloneMap(nil))

	source := map[string]interface{}{
		"scalar": 1,
		"nested": map[string]interface{}{"key": "value"},
		"items":  []interface{}{1, 2},
	}
	clone := CloneMap(source)
	clone["scalar"] = 9
	clone["nested"].(map[string]interface{})["key"] = "changed"
	clone["items"].([]interface{})[0] = 9

	assert.Equal(t, 1, source["scalar"])
	assert.Equal(t, "value", source["nested"].(map[string]interface{})["key"])
	assert.Equal(t, 1, source["items"].([]interface{})[0])
}

func TestMergeMaps(t *testing.T) {
	base := map[string]interface{}{"a": 1, "b": 2}
	override := map[string]interface{}{"b": 20, "c": 30}
	merged := MergeMaps(base, override)

	assert.Equal(t, map[string]interface{}{"a": 1, "b": 20, "c": 30}, merged)
	// inputs stay untouched
	assert.Equal(t, 2, base["b"])

	merged["a"] = 99
	assert.Equal(t, 1, base["a"])
}
