// Package stepflow provides a minimal task-graph execution engine.
//
// A graph is a set of nodes wired by outcome-labelled successor edges. Each
// node runs a three-phase lifecycle (prepare, execute, finish), optionally
// retried under a policy, and its finish phase selects the next node by
// returning an outcome label. Batch and parallel-batch variants run a graph
// once per parameter set.
//
// Stepflow is designed to be embedded in host applications. End-users
// typically interact with the engine via the high-level Service façade
// exposed by the root package:
//
//	srv := stepflow.New()
//	rt  := srv.Runtime()
//	flow, _ := rt.LoadFlow(ctx, "graph.yaml")
//	session, _, _ := rt.Run(ctx, flow, map[string]interface{}{"value": 10})
//
// Flows can equally be assembled in code through the execution package.
// For more details see the README and individual sub-packages.
package stepflow
