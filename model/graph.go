package model

import (
	"fmt"
	"time"

	"github.com/viant/stepflow/model/graph"
	"github.com/viant/stepflow/model/state"
)

// Graph represents a declarative task-graph definition
type Graph struct {

	// Source provides information about the origin of the graph
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`

	// Name is the unique identifier for the graph
	Name string `json:"name" yaml:"name"`

	// Description provides a human-readable description of the graph
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Version specifies the graph version
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Init parameters are pushed into the start node when the flow runs
	// without an explicit parameter set
	Init state.Parameters `json:"init,omitempty" yaml:"init,omitempty"`

	// Start is the ID of the entry node
	Start string `json:"start,omitempty" yaml:"start,omitempty"`

	// Nodes defines the execution graph
	Nodes []*graph.Node `json:"nodes,omitempty" yaml:"nodes,omitempty"`

	// Config contains graph-level configuration
	Config map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
}

// Source represents the origin of a graph definition
type Source struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// NewGraph creates a new graph with the given name
func NewGraph(name string) *Graph {
	return &Graph{Name: name}
}

// WithDescription sets the description of the graph
func (g *Graph) WithDescription(description string) *Graph {
	g.Description = description
	return g
}

// WithVersion sets the version of the graph
func (g *Graph) WithVersion(version string) *Graph {
	g.Version = version
	return g
}

// WithInit adds an initialization parameter to the graph
func (g *Graph) WithInit(name string, value interface{}) *Graph {
	if g.Init == nil {
		g.Init = make(state.Parameters, 0)
	}
	g.Init.Add(name, value)
	return g
}

// WithStart sets the entry node of the graph
func (g *Graph) WithStart(id string) *Graph {
	g.Start = id
	return g
}

// WithConfig adds a configuration parameter to the graph
func (g *Graph) WithConfig(key string, value interface{}) *Graph {
	if g.Config == nil {
		g.Config = make(map[string]interface{})
	}
	g.Config[key] = value
	return g
}

// NewNode creates a new node with the given id and type and adds it to the
// graph; the first node added becomes the start node unless overridden.
func (g *Graph) NewNode(id, nodeType string) *graph.Node {
	node := &graph.Node{ID: id, Type: nodeType}
	if g.Start == "" {
		g.Start = id
	}
	g.Nodes = append(g.Nodes, node)
	return node
}

// AllNodes returns all nodes indexed by ID
func (g *Graph) AllNodes() map[string]*graph.Node {
	result := make(map[string]*graph.Node, len(g.Nodes))
	for _, node := range g.Nodes {
		result[node.ID] = node
	}
	return result
}

// Lookup returns a node by ID or nil
func (g *Graph) Lookup(id string) *graph.Node {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node
		}
	}
	return nil
}

// Validate performs a best-effort structural validation of the graph. The
// returned slice is empty when the graph is sound; otherwise it contains
// human-readable error descriptions. Cycles are permitted - loops are a
// legitimate construct, termination is governed by outcome labels.
func (g *Graph) Validate() []error {
	var issues []error

	if len(g.Nodes) == 0 {
		issues = append(issues, fmt.Errorf("graph has no nodes"))
		return issues
	}

	seen := map[string]bool{}
	for _, node := range g.Nodes {
		if node.ID == "" {
			issues = append(issues, fmt.Errorf("node has empty id"))
			continue
		}
		if seen[node.ID] {
			issues = append(issues, fmt.Errorf("duplicate node id %s", node.ID))
		}
		seen[node.ID] = true
	}

	if g.Start == "" {
		issues = append(issues, fmt.Errorf("graph has no start node"))
	} else if !seen[g.Start] {
		issues = append(issues, fmt.Errorf("start refers to unknown node %s", g.Start))
	}

	for _, node := range g.Nodes {
		outcomes := map[string]bool{}
		for _, transition := range node.Goto {
			if transition == nil {
				continue
			}
			on := transition.On
			if on == "" {
				on = "default"
			}
			if outcomes[on] {
				issues = append(issues, fmt.Errorf("node %s registers outcome %q more than once", node.ID, on))
			}
			outcomes[on] = true
			if transition.Node == "" || !seen[transition.Node] {
				issues = append(issues, fmt.Errorf("node %s goto refers to unknown node %s", node.ID, transition.Node))
			}
		}
		if node.Retry != nil {
			if node.Retry.MaxAttempts < 1 {
				issues = append(issues, fmt.Errorf("node %s has invalid retry maxAttempts: %v", node.ID, node.Retry.MaxAttempts))
			}
			if node.Retry.Interval != "" {
				if _, err := time.ParseDuration(node.Retry.Interval); err != nil {
					issues = append(issues, fmt.Errorf("node %s has invalid retry interval: %v", node.ID, err))
				}
			}
		}
	}
	return issues
}
