package deptree

import "github.com/matzehuels/depscope/pkg/maven"

// GraphNode is one node of a resolved dependency graph as produced by the
// resolver. Winner holds the conflict winner's dependency string when the
// resolver tracked conflicts verbosely.
type GraphNode struct {
	GroupID    string       `json:"groupId"`
	ArtifactID string       `json:"artifactId"`
	Version    string       `json:"version"`
	Scope      string       `json:"scope,omitempty"`
	Extension  string       `json:"extension,omitempty"`
	Classifier string       `json:"classifier,omitempty"`
	Optional   bool         `json:"optional,omitempty"`
	Winner     string       `json:"winner,omitempty"`
	Children   []*GraphNode `json:"children,omitempty"`
}

// Artifact returns the artifact the node resolves to.
func (g *GraphNode) Artifact() maven.Artifact {
	return maven.Artifact{
		Coordinate: maven.Coordinate{GroupID: g.GroupID, ArtifactID: g.ArtifactID, Version: g.Version},
		Extension:  g.Extension,
		Classifier: g.Classifier,
	}
}

// Dependency returns the node as a maven.Dependency.
func (g *GraphNode) Dependency() maven.Dependency {
	return maven.Dependency{Artifact: g.Artifact(), Scope: g.Scope, Optional: g.Optional}
}

// String returns the dependency string, e.g. "org.x:x:jar:1.0 (compile)".
func (g *GraphNode) String() string { return g.Dependency().String() }

// Walk calls fn for every node in depth-first pre-order. Nil children are
// skipped and a node reachable through several parents is visited once.
func (g *GraphNode) Walk(fn func(n *GraphNode, depth int)) {
	if g == nil {
		return
	}
	type item struct {
		n     *GraphNode
		depth int
	}
	seen := make(map[*GraphNode]bool)
	stack := []item{{g, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[it.n] {
			continue
		}
		seen[it.n] = true
		fn(it.n, it.depth)
		for i := len(it.n.Children) - 1; i >= 0; i-- {
			if c := it.n.Children[i]; c != nil {
				stack = append(stack, item{c, it.depth + 1})
			}
		}
	}
}

// Count returns the number of nodes reachable from g.
func (g *GraphNode) Count() int {
	n := 0
	g.Walk(func(*GraphNode, int) { n++ })
	return n
}
