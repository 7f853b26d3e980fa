package extension

import (
	"sync"

	"github.com/viant/stepflow/execution"
	"github.com/viant/x"
)

// Factory builds a graph node from a decoded, typed configuration.
type Factory func(name string, config interface{}) (execution.Node, error)

// Registration binds a declarative node type name to its configuration type
// and factory.
type Registration struct {
	Name   string
	Config *x.Type
	New    Factory
}

// Nodes is the registry of declarative node types
type Nodes struct {
	types         *Types
	registrations map[string]*Registration
	mux           sync.RWMutex
}

// Types returns the data type registry
func (n *Nodes) Types() *Types {
	return n.types
}

// Lookup returns a registration by node type name, or nil
func (n *Nodes) Lookup(name string) *Registration {
	n.mux.RLock()
	defer n.mux.RUnlock()
	return n.registrations[name]
}

// Register registers a node type; a later registration under the same name
// replaces the earlier one.
func (n *Nodes) Register(registration *Registration) {
	n.mux.Lock()
	defer n.mux.Unlock()
	if registration.Config != nil {
		n.types.Register(registration.Config)
	}
	n.registrations[registration.Name] = registration
}

// NewNodes creates a new node type registry
func NewNodes(goTypes ...*x.Type) *Nodes {
	ret := &Nodes{
		types:         NewTypes(),
		registrations: make(map[string]*Registration),
	}
	for _, t := range goTypes {
		if t != nil {
			ret.types.Register(t)
		}
	}
	return ret
}
