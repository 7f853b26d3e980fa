package graph

// Node describes a single step of a task graph. The Type field selects a
// registered node factory; Config is passed to the factory, optionally
// converted into the factory's typed config struct.
type (
	Node struct {
		ID     string                 `json:"id,omitempty" yaml:"id,omitempty"`
		Type   string                 `json:"type,omitempty" yaml:"type,omitempty"`
		Config map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
		Retry  *Retry                 `json:"retry,omitempty" yaml:"retry,omitempty"`
		Goto   []*Transition          `json:"goto,omitempty" yaml:"goto,omitempty"`
	}

	// Retry bounds re-attempts of a node's execute phase
	Retry struct {
		MaxAttempts int    `json:"maxAttempts,omitempty" yaml:"maxAttempts,omitempty"`
		Interval    string `json:"interval,omitempty" yaml:"interval,omitempty"` // duration string
	}

	// Transition routes a node outcome to the next node
	Transition struct {
		On   string `json:"on,omitempty" yaml:"on,omitempty"` // outcome label, "default" when empty
		Node string `json:"node,omitempty" yaml:"node,omitempty"`
	}
)

// WithConfig adds a configuration entry to the node
func (n *Node) WithConfig(key string, value interface{}) *Node {
	if n.Config == nil {
		n.Config = make(map[string]interface{})
	}
	n.Config[key] = value
	return n
}

// WithRetry sets the retry strategy for the node
func (n *Node) WithRetry(maxAttempts int, interval string) *Node {
	n.Retry = &Retry{MaxAttempts: maxAttempts, Interval: interval}
	return n
}

// WithGoto adds a transition to the node
func (n *Node) WithGoto(on string, node string) *Node {
	n.Goto = append(n.Goto, &Transition{On: on, Node: node})
	return n
}

// Clone creates a deep copy of a node definition
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{
		ID:   n.ID,
		Type: n.Type,
	}
	if n.Config != nil {
		clone.Config = make(map[string]interface{}, len(n.Config))
		for k, v := range n.Config {
			clone.Config[k] = v
		}
	}
	if n.Retry != nil {
		clone.Retry = &Retry{MaxAttempts: n.Retry.MaxAttempts, Interval: n.Retry.Interval}
	}
	if n.Goto != nil {
		clone.Goto = make([]*Transition, len(n.Goto))
		for i, transition := range n.Goto {
			clone.Goto[i] = &Transition{On: transition.On, Node: transition.Node}
		}
	}
	return clone
}
