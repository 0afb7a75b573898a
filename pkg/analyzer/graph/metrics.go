package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Metrics summarizes graph structure: size, degree statistics, the
// most central entities by PageRank and any inheritance cycles.
type Metrics struct {
	TotalNodes int          `json:"total_nodes"`
	TotalEdges int          `json:"total_edges"`
	AvgDegree  float64      `json:"avg_degree"`
	Density    float64      `json:"density"`
	Ranked     []NodeMetric `json:"ranked"`
	Cycles     [][]string   `json:"cycles,omitempty"`
}

// NodeMetric is the per-entity ranking entry.
type NodeMetric struct {
	Name      string  `json:"name"`
	PageRank  float64 `json:"pagerank"`
	InDegree  int     `json:"in_degree"`
	OutDegree int     `json:"out_degree"`
}

// gonumGraph pairs the gonum representation with the name mappings.
type gonumGraph struct {
	directed *simple.DirectedGraph
	nameToID map[string]int64
	idToName map[int64]string
}

func toGonumGraph(g *GraphData) *gonumGraph {
	gg := &gonumGraph{
		directed: simple.NewDirectedGraph(),
		nameToID: make(map[string]int64),
		idToName: make(map[int64]string),
	}

	for i, name := range g.SortedNames() {
		id := int64(i)
		gg.nameToID[name] = id
		gg.idToName[id] = name
		gg.directed.AddNode(simple.Node(id))
	}

	for _, con := range g.Connections {
		from, fromOK := gg.nameToID[con.From]
		to, toOK := gg.nameToID[con.To]
		if fromOK && toOK && from != to {
			gg.directed.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	return gg
}

// CalculateMetrics computes PageRank, degree statistics and inheritance
// cycles (strongly connected components with more than one node).
func CalculateMetrics(g *GraphData) *Metrics {
	metrics := &Metrics{
		TotalNodes: len(g.Nodes),
		TotalEdges: len(g.Connections),
	}
	if len(g.Nodes) == 0 {
		return metrics
	}

	inDegree := make(map[string]int, len(g.Nodes))
	outDegree := make(map[string]int, len(g.Nodes))
	for _, con := range g.Connections {
		inDegree[con.To]++
		outDegree[con.From]++
	}

	gg := toGonumGraph(g)
	pageRank := network.PageRank(gg.directed, 0.85, 1e-6)

	for _, name := range g.SortedNames() {
		metrics.Ranked = append(metrics.Ranked, NodeMetric{
			Name:      name,
			PageRank:  pageRank[gg.nameToID[name]],
			InDegree:  inDegree[name],
			OutDegree: outDegree[name],
		})
	}
	sort.SliceStable(metrics.Ranked, func(i, j int) bool {
		return metrics.Ranked[i].PageRank > metrics.Ranked[j].PageRank
	})

	totalDegree := 0
	for name := range g.Nodes {
		totalDegree += inDegree[name] + outDegree[name]
	}
	metrics.AvgDegree = float64(totalDegree) / float64(len(g.Nodes))
	if len(g.Nodes) > 1 {
		maxEdges := len(g.Nodes) * (len(g.Nodes) - 1)
		metrics.Density = float64(len(g.Connections)) / float64(maxEdges)
	}

	// cycles are searched over inheritance edges only
	inheritance := simple.NewDirectedGraph()
	for _, name := range g.SortedNames() {
		inheritance.AddNode(simple.Node(gg.nameToID[name]))
	}
	for _, con := range g.Connections {
		from, fromOK := gg.nameToID[con.From]
		to, toOK := gg.nameToID[con.To]
		if con.Kind == Inheritance && fromOK && toOK && from != to {
			inheritance.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	for _, scc := range topo.TarjanSCC(inheritance) {
		if len(scc) > 1 {
			var names []string
			for _, node := range scc {
				names = append(names, gg.idToName[node.ID()])
			}
			sort.Strings(names)
			metrics.Cycles = append(metrics.Cycles, names)
		}
	}

	return metrics
}
