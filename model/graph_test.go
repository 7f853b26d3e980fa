package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/stepflow/model"
)

func TestGraph_Builder(t *testing.T) {
	graph := model.NewGraph("pipeline").
		WithDescription("arith chain").
		WithVersion("1.0").
		WithInit("value", 10)

	graph.NewNode("add", "arith/add").
		WithConfig("operand", 5).
		WithGoto("", "multiply")
	graph.NewNode("multiply", "arith/multiply").
		WithConfig("operand", 2)

	assert.Equal(t, "add", graph.Start)
	assert.Len(t, graph.Nodes, 2)
	assert.NotNil(t, graph.Lookup("multiply"))
	assert.Nil(t, graph.Lookup("missing"))
	assert.Empty(t, graph.Validate())

	init := graph.Init.ToMap()
	assert.Equal(t, 10, init["value"])
}

func TestGraph_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		graph func() *model.Graph
		issue string
	}{
		{
			name:  "empty graph",
			graph: func() *model.Graph { return model.NewGraph("empty") },
			issue: "no nodes",
		},
		{
			name: "duplicate node id",
			graph: func() *model.Graph {
				graph := model.NewGraph("dup")
				graph.NewNode("a", "arith/add")
				graph.NewNode("a", "arith/add")
				return graph
			},
			issue: "duplicate node id",
		},
		{
			name: "unknown start",
			graph: func() *model.Graph {
				graph := model.NewGraph("start")
				graph.NewNode("a", "arith/add")
				return graph.WithStart("missing")
			},
			issue: "unknown node",
		},
		{
			name: "duplicate outcome",
			graph: func() *model.Graph {
				graph := model.NewGraph("edges")
				graph.NewNode("a", "arith/add").
					WithGoto("", "b").
					WithGoto("default", "b")
				graph.NewNode("b", "arith/add")
				return graph
			},
			issue: "more than once",
		},
		{
			name: "unknown goto target",
			graph: func() *model.Graph {
				graph := model.NewGraph("edges")
				graph.NewNode("a", "arith/add").WithGoto("", "missing")
				return graph
			},
			issue: "unknown node",
		},
		{
			name: "invalid retry attempts",
			graph: func() *model.Graph {
				graph := model.NewGraph("retry")
				graph.NewNode("a", "arith/add").WithRetry(0, "")
				return graph
			},
			issue: "maxAttempts",
		},
		{
			name: "invalid retry interval",
			graph: func() *model.Graph {
				graph := model.NewGraph("retry")
				graph.NewNode("a", "arith/add").WithRetry(2, "soon")
				return graph
			},
			issue: "interval",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			issues := testCase.graph().Validate()
			require.NotEmpty(t, issues)
			var messages string
			for _, issue := range issues {
				messages += issue.Error() + "\n"
			}
			assert.Contains(t, messages, testCase.issue)
		})
	}
}

func TestGraph_ValidateAllowsCycles(t *testing.T) {
	graph := model.NewGraph("loop")
	graph.NewNode("check", "arith/check").
		WithGoto("positive", "step")
	graph.NewNode("step", "arith/subtract").
		WithGoto("", "check")
	assert.Empty(t, graph.Validate())
}

func TestNode_Clone(t *testing.T) {
	graph := model.NewGraph("clone")
	node := graph.NewNode("a", "arith/add").
		WithConfig("operand", 5).
		WithRetry(3, "1s").
		WithGoto("", "a")

	clone := node.Clone()
	clone.Config["operand"] = 9
	clone.Goto[0].Node = "b"
	clone.Retry.MaxAttempts = 1

	assert.Equal(t, 5, node.Config["operand"])
	assert.Equal(t, "a", node.Goto[0].Node)
	assert.Equal(t, 3, node.Retry.MaxAttempts)
}
