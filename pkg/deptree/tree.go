package deptree

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/maven"
)

// Node is the annotated form of one GraphNode.
type Node struct {
	Name       string // groupId.artifactId
	GroupID    string
	ArtifactID string
	Version    string
	Scope      string
	Omitted    bool
	Winner     string // winner dependency string; empty unless Omitted
	Leaf       bool
	Unused     bool
	Paths      maven.ArtifactPaths
	Children   []*Node

	parent *Node
	src    *GraphNode
}

// Parent returns the node's parent, or nil for the root. The link is
// observational; nodes are owned through Children.
func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Coordinate() maven.Coordinate {
	return maven.Coordinate{GroupID: n.GroupID, ArtifactID: n.ArtifactID, Version: n.Version}
}

// Label returns "name:version (scope)".
func (n *Node) Label() string {
	return n.Name + ":" + n.Version + " (" + n.Scope + ")"
}

// Dependency returns the dependency string the node was compared against.
func (n *Node) Dependency() string {
	if n.src == nil {
		return ""
	}
	return n.src.String()
}

// Options configures Annotate.
type Options struct {
	// Unused lists coordinates classified unused; matched on the full triple.
	Unused []maven.Coordinate
	// Paths fills Node.Paths when set.
	Paths  func(maven.Artifact) maven.ArtifactPaths
	Logger *log.Logger
}

// Tree is an annotated dependency tree. Nodes are stored in pre-order.
type Tree struct {
	root  *Node
	nodes []*Node
}

// Annotate builds a Tree mirroring root: one Node per GraphNode, children in
// the given order. A GraphNode reachable twice (shared or cyclic pointers) is
// annotated once. A node is omitted when it carries winner metadata that
// differs from its own dependency string. A nil root yields an empty tree.
func Annotate(root *GraphNode, opts Options) *Tree {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	t := &Tree{}
	if root == nil {
		logger.Warn("dependency graph is empty, nothing to annotate")
		return t
	}

	type item struct {
		g      *GraphNode
		parent *Node
	}
	seen := make(map[*GraphNode]bool)
	stack := []item{{g: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[it.g] {
			logger.Warn("graph node reached twice, skipping", "node", it.g.String(), "parent", it.parent.Label())
			continue
		}
		seen[it.g] = true

		n := newNode(it.g, it.parent, opts)
		if it.parent == nil {
			t.root = n
		} else {
			it.parent.Children = append(it.parent.Children, n)
		}
		t.nodes = append(t.nodes, n)

		for i := len(it.g.Children) - 1; i >= 0; i-- {
			if c := it.g.Children[i]; c != nil {
				stack = append(stack, item{g: c, parent: n})
			}
		}
	}
	return t
}

func newNode(g *GraphNode, parent *Node, opts Options) *Node {
	n := &Node{
		Name:       g.GroupID + "." + g.ArtifactID,
		GroupID:    g.GroupID,
		ArtifactID: g.ArtifactID,
		Version:    g.Version,
		Scope:      g.Scope,
		Leaf:       len(g.Children) == 0,
		parent:     parent,
		src:        g,
	}
	if g.Winner != "" && g.Winner != g.String() {
		n.Omitted = true
		n.Winner = g.Winner
	}
	for _, c := range opts.Unused {
		if c.GroupID == g.GroupID && c.ArtifactID == g.ArtifactID && c.Version == g.Version {
			n.Unused = true
			break
		}
	}
	if opts.Paths != nil {
		n.Paths = opts.Paths(g.Artifact())
	}
	return n
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node { return t.root }

// Nodes returns every node in pre-order, unfiltered.
func (t *Tree) Nodes() []*Node { return t.nodes }

func (t *Tree) Len() int { return len(t.nodes) }

// Find returns the first node in pre-order matching name, version and scope.
// Distinct positions sharing the same triple are indistinguishable; the
// earliest one wins.
func (t *Tree) Find(name, version, scope string) *Node {
	for _, n := range t.nodes {
		if n.Name == name && n.Version == version && n.Scope == scope {
			return n
		}
	}
	return nil
}

// PathToRoot returns n followed by its ancestors up to the root.
func (t *Tree) PathToRoot(n *Node) []*Node {
	var path []*Node
	for ; n != nil; n = n.parent {
		path = append(path, n)
	}
	return path
}

// PathFromRoot returns the root-to-n path.
func (t *Tree) PathFromRoot(n *Node) []*Node {
	path := t.PathToRoot(n)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Omitted returns the omitted nodes in pre-order.
func (t *Tree) Omitted() []*Node {
	return t.filter(func(n *Node) bool { return n.Omitted })
}

// Unused returns the unused nodes in pre-order.
func (t *Tree) Unused() []*Node {
	return t.filter(func(n *Node) bool { return n.Unused })
}

func (t *Tree) filter(keep func(*Node) bool) []*Node {
	var out []*Node
	for _, n := range t.nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
