// Package depgraph infers dependency edges between extracted symbols and
// runs structural analyses over the resulting directed graph.
package depgraph

import (
	"encoding/json"
	"fmt"
	"sort"
)

// EdgeKind classifies a dependency edge.
type EdgeKind string

const (
	EdgeUsage       EdgeKind = "usage"
	EdgeImport      EdgeKind = "import"
	EdgeExport      EdgeKind = "export"
	EdgeInheritance EdgeKind = "inheritance"
	EdgeComposition EdgeKind = "composition"
)

// Edge is a directed, weighted dependency between two symbol nodes.
type Edge struct {
	From   int      `json:"from"`
	To     int      `json:"to"`
	Kind   EdgeKind `json:"kind"`
	Weight int      `json:"weight"`
}

// Graph is a directed dependency graph. Nodes map symbol ids to the file
// declaring them; every edge endpoint must be a registered node.
type Graph struct {
	Nodes map[int]string
	Edges []Edge

	out map[int][]int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[int]string),
		out:   make(map[int][]int),
	}
}

// AddNode registers a symbol node.
func (g *Graph) AddNode(id int, filePath string) {
	g.Nodes[id] = filePath
}

// AddEdge appends an edge. Edges referencing unknown nodes are rejected so
// the graph invariant holds by construction.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.Nodes[e.From]; !ok {
		return fmt.Errorf("edge from unknown node %d", e.From)
	}
	if _, ok := g.Nodes[e.To]; !ok {
		return fmt.Errorf("edge to unknown node %d", e.To)
	}
	g.Edges = append(g.Edges, e)
	g.out[e.From] = append(g.out[e.From], e.To)
	return nil
}

// OutDegree is the number of outgoing edges from a node.
func (g *Graph) OutDegree(id int) int {
	return len(g.out[id])
}

// nodeIDs returns all node ids in ascending order for deterministic
// traversal.
func (g *Graph) nodeIDs() []int {
	ids := make([]int, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// graphJSON is the serialized form: map keys become an ordered sequence.
type graphJSON struct {
	Nodes []nodeJSON `json:"nodes"`
	Edges []Edge     `json:"edges"`
}

type nodeJSON struct {
	ID   int    `json:"id"`
	File string `json:"file"`
}

// MarshalJSON emits nodes as an id-ordered list so output is deterministic
// and consumable outside the process.
func (g *Graph) MarshalJSON() ([]byte, error) {
	out := graphJSON{Edges: g.Edges}
	for _, id := range g.nodeIDs() {
		out.Nodes = append(out.Nodes, nodeJSON{ID: id, File: g.Nodes[id]})
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a graph from its serialized form.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var in graphJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	g.Nodes = make(map[int]string, len(in.Nodes))
	g.out = make(map[int][]int)
	g.Edges = nil
	for _, n := range in.Nodes {
		g.AddNode(n.ID, n.File)
	}
	for _, e := range in.Edges {
		if err := g.AddEdge(e); err != nil {
			return err
		}
	}
	return nil
}
