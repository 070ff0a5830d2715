package depgraph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphFromEdges(t *testing.T, nodes int, edges ...[2]int) *Graph {
	t.Helper()
	g := NewGraph()
	for i := 0; i < nodes; i++ {
		g.AddNode(i, "file.go")
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(Edge{From: e[0], To: e[1], Kind: EdgeUsage, Weight: 1}))
	}
	return g
}

func TestGraph_AddEdge(t *testing.T) {
	g := NewGraph()
	g.AddNode(1, "a.go")
	g.AddNode(2, "b.go")

	assert.NoError(t, g.AddEdge(Edge{From: 1, To: 2, Kind: EdgeUsage, Weight: 1}))
	assert.Error(t, g.AddEdge(Edge{From: 1, To: 99, Kind: EdgeUsage}), "unknown target")
	assert.Error(t, g.AddEdge(Edge{From: 99, To: 2, Kind: EdgeUsage}), "unknown source")
	assert.Len(t, g.Edges, 1)
	assert.Equal(t, 1, g.OutDegree(1))
	assert.Equal(t, 0, g.OutDegree(2))
}

func TestDetectCycles(t *testing.T) {
	t.Run("Triangle cycle", func(t *testing.T) {
		g := graphFromEdges(t, 3, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 0})
		cycles := detectCycles(g)
		require.Len(t, cycles, 1)
		assert.ElementsMatch(t, []int{0, 1, 2}, cycles[0])
	})

	t.Run("Self loop", func(t *testing.T) {
		g := graphFromEdges(t, 1, [2]int{0, 0})
		cycles := detectCycles(g)
		require.Len(t, cycles, 1)
		assert.Equal(t, []int{0}, cycles[0])
	})

	t.Run("Acyclic chain", func(t *testing.T) {
		g := graphFromEdges(t, 3, [2]int{0, 1}, [2]int{1, 2})
		assert.Empty(t, detectCycles(g))
	})

	t.Run("Two disconnected cycles", func(t *testing.T) {
		g := graphFromEdges(t, 4, [2]int{0, 1}, [2]int{1, 0}, [2]int{2, 3}, [2]int{3, 2})
		assert.Len(t, detectCycles(g), 2)
	})
}

func TestFindOrphans(t *testing.T) {
	g := graphFromEdges(t, 4, [2]int{0, 1}, [2]int{1, 2})
	// 2 has only incoming edges, 3 is fully disconnected: both are orphans.
	assert.Equal(t, []int{2, 3}, findOrphans(g))
}

func TestFindCritical(t *testing.T) {
	// Node 0 depends on 6 others: just past the threshold.
	g := NewGraph()
	for i := 0; i <= criticalThreshold+1; i++ {
		g.AddNode(i, "hub.go")
	}
	for i := 1; i <= criticalThreshold+1; i++ {
		require.NoError(t, g.AddEdge(Edge{From: 0, To: i, Kind: EdgeUsage, Weight: 1}))
	}
	assert.Equal(t, []int{0}, findCritical(g))

	// At exactly the threshold the node is not critical.
	g2 := NewGraph()
	for i := 0; i <= criticalThreshold; i++ {
		g2.AddNode(i, "hub.go")
	}
	for i := 1; i <= criticalThreshold; i++ {
		require.NoError(t, g2.AddEdge(Edge{From: 0, To: i, Kind: EdgeUsage, Weight: 1}))
	}
	assert.Empty(t, findCritical(g2))
}

func TestFindClusters(t *testing.T) {
	// {0,1,2} form one component, 3 is isolated, {4,5} form another.
	g := graphFromEdges(t, 6, [2]int{0, 1}, [2]int{1, 2}, [2]int{4, 5})
	clusters := findClusters(g)

	require.Len(t, clusters, 2)
	assert.Equal(t, []int{0, 1, 2}, clusters[0])
	assert.Equal(t, []int{4, 5}, clusters[1])
}

func TestAnalyze_Stats(t *testing.T) {
	g := graphFromEdges(t, 4, [2]int{0, 1}, [2]int{1, 0}, [2]int{2, 0})
	a := Analyze(g)

	assert.Equal(t, 3, a.Stats.TotalEdges)
	assert.Equal(t, 1, a.Stats.Cycles)
	assert.Equal(t, 1, a.Stats.Orphans)
	assert.Equal(t, len(a.Clusters), a.Stats.Clusters)
	assert.Equal(t, len(a.CriticalDependencies), a.Stats.Critical)
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	g := graphFromEdges(t, 3, [2]int{0, 1}, [2]int{1, 2})

	data, err := json.Marshal(g)
	require.NoError(t, err)

	restored := NewGraph()
	require.NoError(t, json.Unmarshal(data, restored))

	assert.Equal(t, g.Nodes, restored.Nodes)
	assert.Equal(t, g.Edges, restored.Edges)
	assert.Equal(t, g.OutDegree(1), restored.OutDegree(1))
}
