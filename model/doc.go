// Package model contains the in-memory representation of task-graph
// definitions and supporting types used by the stepflow engine.
//
// A graph is typically loaded from a YAML or JSON document into the
// structures defined in the `graph` and `state` sub-packages. The root model
// package aggregates those building blocks so that they can be referenced
// from other parts of the code base with a single import.
package model
