package extension_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/stepflow/execution"
	"github.com/viant/stepflow/extension"
	"github.com/viant/x"
)

type echoConfig struct {
	Message string
}

func TestNodes_RegisterAndLookup(t *testing.T) {
	nodes := extension.NewNodes()
	assert.Nil(t, nodes.Lookup("echo"))

	registration := &extension.Registration{
		Name:   "echo",
		Config: x.NewType(reflect.TypeOf(echoConfig{}), x.WithName("echoConfig")),
		New: func(name string, config interface{}) (execution.Node, error) {
			return execution.NewTask(name), nil
		},
	}
	nodes.Register(registration)

	found := nodes.Lookup("echo")
	require.NotNil(t, found)
	assert.Equal(t, registration, found)

	// the config type is registered alongside the node type
	assert.NotNil(t, nodes.Types().Lookup("echoConfig"))
}

func TestTypes_ModifierLookup(t *testing.T) {
	types := extension.NewTypes()
	types.Register(x.NewType(reflect.TypeOf(echoConfig{}), x.WithName("echoConfig")))

	plain := types.Lookup("echoConfig")
	require.NotNil(t, plain)
	assert.Equal(t, reflect.Struct, plain.Type.Kind())

	slice := types.Lookup("[]echoConfig")
	require.NotNil(t, slice)
	assert.Equal(t, reflect.Slice, slice.Type.Kind())

	mapped := types.Lookup("map[string]echoConfig")
	require.NotNil(t, mapped)
	assert.Equal(t, reflect.Map, mapped.Type.Kind())

	assert.Nil(t, types.Lookup("unknown"))
}
