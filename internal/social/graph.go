// Package social provides the undirected social graph agents influence each
// other over, and the scale-free generator that seeds it.
package social

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/talgya/ideology-sim/internal/agents"
	"github.com/talgya/ideology-sim/internal/world"
)

// node is a graph vertex carrying the agent's position.
type node struct {
	id  int64
	pos world.Position
}

func (n node) ID() int64 { return n.id }

// Link is an undirected edge with Source < Target.
type Link struct {
	Source agents.AgentID
	Target agents.AgentID
}

// Graph is the social network. Node ids are agent ids. All listing methods
// return ids in ascending order so iteration never depends on map order.
type Graph struct {
	g *simple.UndirectedGraph
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{g: simple.NewUndirectedGraph()}
}

// AddNode inserts a node at the given position. Re-adding an existing id
// moves it and keeps its edges.
func (sg *Graph) AddNode(id agents.AgentID, pos world.Position) {
	n := node{id: int64(id), pos: pos}
	if sg.g.Node(n.id) == nil {
		sg.g.AddNode(n)
		return
	}
	nbrs := sg.Neighbors(id)
	sg.g.RemoveNode(n.id)
	sg.g.AddNode(n)
	for _, other := range nbrs {
		sg.g.SetEdge(sg.g.NewEdge(n, sg.g.Node(int64(other))))
	}
}

// HasNode reports whether id is in the graph.
func (sg *Graph) HasNode(id agents.AgentID) bool {
	return sg.g.Node(int64(id)) != nil
}

// Position returns the position attached to id.
func (sg *Graph) Position(id agents.AgentID) (world.Position, bool) {
	n := sg.g.Node(int64(id))
	if n == nil {
		return world.Position{}, false
	}
	return n.(node).pos, true
}

// AddEdge links a and b. Self-loops and edges to missing nodes are ignored;
// re-adding an existing edge is a no-op. Reports whether a new edge was made.
func (sg *Graph) AddEdge(a, b agents.AgentID) bool {
	if a == b {
		return false
	}
	na, nb := sg.g.Node(int64(a)), sg.g.Node(int64(b))
	if na == nil || nb == nil {
		return false
	}
	if sg.g.HasEdgeBetween(na.ID(), nb.ID()) {
		return false
	}
	sg.g.SetEdge(sg.g.NewEdge(na, nb))
	return true
}

// HasEdge reports whether a and b are adjacent.
func (sg *Graph) HasEdge(a, b agents.AgentID) bool {
	return sg.g.HasEdgeBetween(int64(a), int64(b))
}

// RemoveNode removes every edge incident to id, then the node itself.
func (sg *Graph) RemoveNode(id agents.AgentID) {
	if !sg.HasNode(id) {
		return
	}
	for _, other := range sg.Neighbors(id) {
		sg.g.RemoveEdge(int64(id), int64(other))
	}
	sg.g.RemoveNode(int64(id))
}

// Neighbors returns the ids adjacent to id in ascending order.
func (sg *Graph) Neighbors(id agents.AgentID) []agents.AgentID {
	if !sg.HasNode(id) {
		return nil
	}
	return sortedIDs(sg.g.From(int64(id)))
}

// Degree returns the number of edges incident to id.
func (sg *Graph) Degree(id agents.AgentID) int {
	return len(sg.Neighbors(id))
}

// Nodes returns every node id in ascending order.
func (sg *Graph) Nodes() []agents.AgentID {
	return sortedIDs(sg.g.Nodes())
}

// NodeCount returns the number of nodes.
func (sg *Graph) NodeCount() int {
	return len(graph.NodesOf(sg.g.Nodes()))
}

// EdgeCount returns the number of undirected edges.
func (sg *Graph) EdgeCount() int {
	return len(graph.EdgesOf(sg.g.Edges()))
}

// Links returns every edge once, ordered by (Source, Target).
func (sg *Graph) Links() []Link {
	var out []Link
	for _, e := range graph.EdgesOf(sg.g.Edges()) {
		a, b := agents.AgentID(e.From().ID()), agents.AgentID(e.To().ID())
		if a > b {
			a, b = b, a
		}
		out = append(out, Link{Source: a, Target: b})
	}
	slices.SortFunc(out, func(x, y Link) int {
		if c := cmp.Compare(x.Source, y.Source); c != 0 {
			return c
		}
		return cmp.Compare(x.Target, y.Target)
	})
	return out
}

// Sites returns every node with its position, ascending by id.
func (sg *Graph) Sites() []world.Site {
	ids := sg.Nodes()
	out := make([]world.Site, 0, len(ids))
	for _, id := range ids {
		pos, _ := sg.Position(id)
		out = append(out, world.Site{ID: int64(id), Pos: pos})
	}
	return out
}

// AverageNeighborDegree returns the mean over all nodes of the average degree
// of each node's neighbours. Isolated nodes contribute zero.
func (sg *Graph) AverageNeighborDegree() float64 {
	var sum float64
	var n int
	for _, id := range sg.Nodes() {
		nbrs := sg.Neighbors(id)
		n++
		if len(nbrs) == 0 {
			continue
		}
		var deg int
		for _, o := range nbrs {
			deg += sg.Degree(o)
		}
		sum += float64(deg) / float64(len(nbrs))
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// String summarises the graph for logs.
func (sg *Graph) String() string {
	return fmt.Sprintf("graph(nodes=%d, edges=%d)", sg.NodeCount(), sg.EdgeCount())
}

func sortedIDs(it graph.Nodes) []agents.AgentID {
	nodes := graph.NodesOf(it)
	out := make([]agents.AgentID, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, agents.AgentID(n.ID()))
	}
	slices.Sort(out)
	return out
}
