package depgraph

import "sort"

// criticalThreshold is the outgoing-edge count above which a node is ranked
// as a critical dependency.
const criticalThreshold = 5

// Analysis bundles the assembled graph with the results of every structural
// analysis run over it.
type Analysis struct {
	Graph                *Graph        `json:"graph"`
	CircularDependencies [][]int       `json:"circular_dependencies"`
	OrphanedSymbols      []int         `json:"orphaned_symbols"`
	CriticalDependencies []int         `json:"critical_dependencies"`
	Clusters             map[int][]int `json:"clusters"`
	Stats                Stats         `json:"stats"`
}

// Stats summarizes the analysis results.
type Stats struct {
	TotalEdges int `json:"total_edges"`
	Cycles     int `json:"cycles"`
	Orphans    int `json:"orphans"`
	Critical   int `json:"critical"`
	Clusters   int `json:"clusters"`
}

// Analyze runs cycle, orphan, critical-node and cluster analyses over the
// graph and returns them together with summary stats.
func Analyze(g *Graph) *Analysis {
	a := &Analysis{
		Graph:                g,
		CircularDependencies: detectCycles(g),
		OrphanedSymbols:      findOrphans(g),
		CriticalDependencies: findCritical(g),
		Clusters:             findClusters(g),
	}
	a.Stats = Stats{
		TotalEdges: len(g.Edges),
		Cycles:     len(a.CircularDependencies),
		Orphans:    len(a.OrphanedSymbols),
		Critical:   len(a.CriticalDependencies),
		Clusters:   len(a.Clusters),
	}
	return a
}

// detectCycles runs a depth-first search with an explicit recursion stack
// from every unvisited node and reports the first cycle discovered per root.
// This is intentionally not an exhaustive simple-cycle enumeration: on large
// graphs that blows up combinatorially, and downstream consumers only need
// to know which regions are cyclic.
func detectCycles(g *Graph) [][]int {
	visited := make(map[int]bool, len(g.Nodes))
	var cycles [][]int

	for _, root := range g.nodeIDs() {
		if visited[root] {
			continue
		}
		var stack []int
		onStack := make(map[int]bool)

		var dfs func(n int) []int
		dfs = func(n int) []int {
			visited[n] = true
			onStack[n] = true
			stack = append(stack, n)

			for _, t := range g.out[n] {
				if onStack[t] {
					for i, s := range stack {
						if s == t {
							cycle := make([]int, len(stack)-i)
							copy(cycle, stack[i:])
							return cycle
						}
					}
				}
				if !visited[t] {
					if c := dfs(t); c != nil {
						return c
					}
				}
			}

			onStack[n] = false
			stack = stack[:len(stack)-1]
			return nil
		}

		if c := dfs(root); c != nil {
			cycles = append(cycles, c)
		}
	}
	return cycles
}

// findOrphans returns nodes with no outgoing edge at all.
func findOrphans(g *Graph) []int {
	var orphans []int
	for _, id := range g.nodeIDs() {
		if g.OutDegree(id) == 0 {
			orphans = append(orphans, id)
		}
	}
	return orphans
}

// findCritical returns nodes whose outgoing-edge count exceeds the fixed
// threshold.
func findCritical(g *Graph) []int {
	var critical []int
	for _, id := range g.nodeIDs() {
		if g.OutDegree(id) > criticalThreshold {
			critical = append(critical, id)
		}
	}
	return critical
}

// findClusters computes connected components treating every edge as
// bidirectional for this analysis only. Components of size greater than one
// are reported under synthetic sequential cluster ids.
func findClusters(g *Graph) map[int][]int {
	undirected := make(map[int][]int, len(g.Nodes))
	for _, e := range g.Edges {
		undirected[e.From] = append(undirected[e.From], e.To)
		undirected[e.To] = append(undirected[e.To], e.From)
	}

	clusters := make(map[int][]int)
	visited := make(map[int]bool, len(g.Nodes))
	clusterID := 0

	for _, root := range g.nodeIDs() {
		if visited[root] {
			continue
		}
		var component []int
		queue := []int{root}
		visited[root] = true
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			component = append(component, n)
			for _, next := range undirected[n] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		if len(component) > 1 {
			sort.Ints(component)
			clusters[clusterID] = component
			clusterID++
		}
	}
	return clusters
}
