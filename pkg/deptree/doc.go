// Package deptree annotates a resolved dependency graph.
//
// [Annotate] converts a [GraphNode] tree into a [Tree] of [Node] values in
// one depth-first pre-order pass, marking nodes that lost a version conflict
// (Omitted) and nodes whose coordinate was classified unused (Unused).
// Nothing is filtered; [Tree.Nodes] returns every node.
//
// Lookup identity is the (name, version, scope) triple, where name is
// "groupId.artifactId". When the same triple occurs in several subtrees
// [Tree.Find] returns the first in pre-order.
package deptree
