package workflow

import (
	"fmt"
	"strings"
)

// Stage identifies one node of the report graph
type Stage int

const (
	StageInit Stage = iota + 1
	StageCollectFixed
	StageCollectVirtual
	StageAnalyze
	StageCompare
	StageConclude
	StageGenerate
	StageEvaluate
	StageRetry
	StageSave
	StageFail
)

// StagesBeforeLoop is the number of trace entries a run records before the
// first retry can happen: init through conclude, then generate and evaluate.
const StagesBeforeLoop = 8

var stageNames = map[Stage]string{
	StageInit:           "init",
	StageCollectFixed:   "collect_fixed",
	StageCollectVirtual: "collect_virtual",
	StageAnalyze:        "analyze",
	StageCompare:        "compare",
	StageConclude:       "conclude",
	StageGenerate:       "generate",
	StageEvaluate:       "evaluate",
	StageRetry:          "retry",
	StageSave:           "save",
	StageFail:           "fail",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Terminal reports whether the stage ends a run
func (s Stage) Terminal() bool {
	return s == StageSave || s == StageFail
}

// MaxTraceLength is the longest trace a run may produce for the given retry budget
func MaxTraceLength(maxRetries int) int {
	return StagesBeforeLoop + 2*maxRetries + 1
}

// NodeKind distinguishes entry, processing and terminal nodes
type NodeKind string

const (
	NodeEntry    NodeKind = "entry"
	NodeStage    NodeKind = "stage"
	NodeTerminal NodeKind = "terminal"
)

// Node is a vertex of the exported graph
type Node struct {
	ID   string   `json:"id"`
	Kind NodeKind `json:"kind"`
}

// Edge is a transition of the exported graph. Condition is empty for
// unconditional transitions.
type Edge struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Condition string `json:"condition,omitempty"`
}

// Graph is a read-only description of the report pipeline
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// linearStages run exactly once, in order, before the generate loop
var linearStages = []Stage{
	StageCollectFixed,
	StageCollectVirtual,
	StageAnalyze,
	StageCompare,
	StageConclude,
}

// DescribeGraph returns the pipeline topology the engine executes
func DescribeGraph() Graph {
	var g Graph
	for s := StageInit; s <= StageFail; s++ {
		kind := NodeStage
		switch {
		case s == StageInit:
			kind = NodeEntry
		case s.Terminal():
			kind = NodeTerminal
		}
		g.Nodes = append(g.Nodes, Node{ID: s.String(), Kind: kind})
	}

	prev := StageInit
	for _, s := range withStages(linearStages, StageGenerate, StageEvaluate) {
		g.Edges = append(g.Edges, Edge{From: prev.String(), To: s.String()})
		prev = s
	}
	g.Edges = append(g.Edges,
		Edge{From: StageEvaluate.String(), To: StageSave.String(), Condition: VerdictPass.String()},
		Edge{From: StageEvaluate.String(), To: StageRetry.String(), Condition: VerdictRetry.String()},
		Edge{From: StageEvaluate.String(), To: StageFail.String(), Condition: VerdictFail.String()},
		Edge{From: StageRetry.String(), To: StageGenerate.String()},
	)
	for _, s := range withStages(linearStages, StageGenerate) {
		g.Edges = append(g.Edges, Edge{From: s.String(), To: StageFail.String(), Condition: "fatal"})
	}
	return g
}

func withStages(base []Stage, more ...Stage) []Stage {
	out := make([]Stage, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}

// Mermaid renders the graph as a Mermaid flowchart
func (g Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	for _, n := range g.Nodes {
		switch n.Kind {
		case NodeEntry:
			fmt.Fprintf(&b, "    %s([%s])\n", n.ID, n.ID)
		case NodeTerminal:
			fmt.Fprintf(&b, "    %s[[%s]]\n", n.ID, n.ID)
		default:
			fmt.Fprintf(&b, "    %s[%s]\n", n.ID, n.ID)
		}
	}
	for _, e := range g.Edges {
		if e.Condition == "" {
			fmt.Fprintf(&b, "    %s --> %s\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&b, "    %s -->|%s| %s\n", e.From, e.Condition, e.To)
	}
	return b.String()
}
