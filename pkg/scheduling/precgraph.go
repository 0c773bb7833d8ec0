package scheduling

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
)

// PrecedenceGraph records the level-zero precedences
// NotifyLevelZeroPrecedence establishes: "end(a) <= start(b)" permanently
// true for the remainder of the search. It backs GetCurrentMinDistanceBetweenTasks and
// DisjunctiveWithPrecedences' per-target precedence collection.
//
// A directed core.Graph vertex per task id, an edge a->b per recorded
// precedence; dfs.TopologicalSort both validates the recorded set is
// acyclic (a cycle among level-zero precedences is itself a static
// conflict) and yields a task-processing order per target variable.
type PrecedenceGraph struct {
	g        *core.Graph
	offsets  map[[2]int]int // (a,b) -> minimal offset end(a)+offset <= start(b)
	vertices map[int]bool
}

// NewPrecedenceGraph creates an empty, directed precedence graph.
func NewPrecedenceGraph() *PrecedenceGraph {
	g, err := core.NewGraph(core.WithDirected(true), core.WithWeighted())
	if err != nil {
		panic(fmt.Errorf("scheduling: constructing precedence graph: %w", err))
	}
	return &PrecedenceGraph{
		g:        g,
		offsets:  make(map[[2]int]int),
		vertices: make(map[int]bool),
	}
}

func vertexName(taskID int) string { return fmt.Sprintf("t%d", taskID) }

// AddPrecedence records "end(a) + offset <= start(b)" as permanently true.
// If a tighter (larger) offset was already recorded for the same pair, the
// larger one wins. Returns an error only if adding the edge would make the
// recorded precedence set cyclic.
func (pg *PrecedenceGraph) AddPrecedence(a, b, offset int) error {
	key := [2]int{a, b}
	if existing, ok := pg.offsets[key]; ok {
		// The pair's edge is already in the graph; only the offset can
		// tighten.
		if offset > existing {
			pg.offsets[key] = offset
		}
		return nil
	}
	pg.offsets[key] = offset

	if !pg.vertices[a] {
		_ = pg.g.AddVertex(vertexName(a))
		pg.vertices[a] = true
	}
	if !pg.vertices[b] {
		_ = pg.g.AddVertex(vertexName(b))
		pg.vertices[b] = true
	}
	if _, err := pg.g.AddEdge(vertexName(a), vertexName(b), float64(offset)); err != nil {
		return fmt.Errorf("scheduling: recording precedence %d->%d: %w", a, b, err)
	}

	if _, err := dfs.TopologicalSort(pg.g, dfs.WithCancelContext(context.Background())); err != nil {
		return fmt.Errorf("scheduling: precedence %d->%d would close a cycle: %w", a, b, err)
	}
	return nil
}

// MinDistance returns the minimal known offset such that end(a)+offset <=
// start(b) is guaranteed at level zero, or (0, false) if no such precedence
// has been recorded.
func (pg *PrecedenceGraph) MinDistance(a, b int) (int, bool) {
	off, ok := pg.offsets[[2]int{a, b}]
	return off, ok
}

// ProcessingOrder returns a topological order over the tasks that currently
// have at least one recorded precedence edge, for scanning the targets of
// a variable from right to left in a precedence-consistent order.
func (pg *PrecedenceGraph) ProcessingOrder() ([]int, error) {
	order, err := dfs.TopologicalSort(pg.g, dfs.WithCancelContext(context.Background()))
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(order))
	for _, name := range order {
		var id int
		if _, err := fmt.Sscanf(name, "t%d", &id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// PrecedencesTargeting returns every (source, offset) pair with a recorded
// precedence "end(source)+offset <= target".
func (pg *PrecedenceGraph) PrecedencesTargeting(target int) []struct {
	Source int
	Offset int
} {
	var out []struct {
		Source int
		Offset int
	}
	for k, off := range pg.offsets {
		if k[1] == target {
			out = append(out, struct {
				Source int
				Offset int
			}{Source: k[0], Offset: off})
		}
	}
	return out
}
