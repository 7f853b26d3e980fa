// Package execution implements the stepflow scheduling core: the node
// lifecycle contract (prepare, execute, finish), the per-node successor
// table keyed by outcome labels, retry handling, and the flow variants that
// walk a graph from its start node - sequentially, once per parameter set,
// or once per parameter set in parallel.
//
// The set of node variants is closed: Task, BatchTask, ParallelBatchTask,
// Flow, BatchFlow and ParallelBatchFlow. User logic plugs in through the
// PrepFunc/ExecFunc/PostFunc hooks rather than new Node implementations, so
// the engine never needs runtime type inspection to drive a run.
package execution
