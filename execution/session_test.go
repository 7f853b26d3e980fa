package execution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/stepflow/execution"
)

func TestSession_SetGetDelete(t *testing.T) {
	session := execution.NewSession()
	assert.NotEmpty(t, session.ID)

	_, ok := session.Get("key")
	assert.False(t, ok)

	session.Set("key", 1)
	value, ok := session.Get("key")
	assert.True(t, ok)
	assert.Equal(t, 1, value)

	session.Delete("key")
	_, ok = session.Get("key")
	assert.False(t, ok)
}

func TestSession_Options(t *testing.T) {
	session := execution.NewSession(
		execution.WithID("run-1"),
		execution.WithState(map[string]interface{}{"value": 10}),
	)
	assert.Equal(t, "run-1", session.ID)
	value, _ := session.Get("value")
	assert.Equal(t, 10, value)
}

func TestSession_Append(t *testing.T) {
	session := execution.NewSession()
	session.Append("log", "first")
	session.Append("log", "second")
	log, _ := session.Get("log")
	assert.Equal(t, []interface{}{"first", "second"}, log)

	// an existing scalar becomes the first element
	session.Set("single", "one")
	session.Append("single", "two")
	single, _ := session.Get("single")
	assert.Equal(t, []interface{}{"one", "two"}, single)
}

func TestSession_Listener(t *testing.T) {
	type change struct {
		key      string
		old, new interface{}
	}
	var changes []change
	session := execution.NewSession()
	session.RegisterListeners(func(s *execution.Session, key string, oldVal, newVal interface{}) {
		changes = append(changes, change{key: key, old: oldVal, new: newVal})
	})

	session.Set("value", 1)
	session.Set("value", 2)
	require.Len(t, changes, 2)
	assert.Equal(t, change{key: "value", old: nil, new: 1}, changes[0])
	assert.Equal(t, change{key: "value", old: 1, new: 2}, changes[1])
}

func TestSession_Snapshot(t *testing.T) {
	session := execution.NewSession(execution.WithState(map[string]interface{}{"a": 1}))
	snapshot := session.Snapshot()
	snapshot["a"] = 99
	value, _ := session.Get("a")
	assert.Equal(t, 1, value)
}
