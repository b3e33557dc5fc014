package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/depscope/pkg/deptree"
)

type treeNode struct {
	GroupID        string      `json:"groupId"`
	ArtifactID     string      `json:"artifactId"`
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	Scope          string      `json:"scope"`
	IsOmitted      bool        `json:"isOmitted"`
	Winner         *string     `json:"winner"`
	IsLeaf         bool        `json:"isLeaf"`
	Parent         *string     `json:"parent"`
	WinnerNodeName *string     `json:"winnerNodeName"`
	JarPath        string      `json:"pathToDependencyJar"`
	PomPath        string      `json:"pathToDependencyPom"`
	DirPath        string      `json:"pathToDependency"`
	Unused         bool        `json:"unused"`
	Children       []*treeNode `json:"children"`
}

func newTreeNode(n *deptree.Node) *treeNode {
	tn := &treeNode{
		GroupID:    n.GroupID,
		ArtifactID: n.ArtifactID,
		Name:       n.Name,
		Version:    n.Version,
		Scope:      n.Scope,
		IsOmitted:  n.Omitted,
		IsLeaf:     n.Leaf,
		JarPath:    n.Paths.Archive,
		PomPath:    n.Paths.Descriptor,
		DirPath:    n.Paths.Dir,
		Unused:     n.Unused,
		Children:   []*treeNode{},
	}
	if n.Winner != "" {
		w := n.Winner
		tn.Winner = &w
		tn.WinnerNodeName = &w
	}
	if p := n.Parent(); p != nil {
		label := p.Label()
		tn.Parent = &label
	}
	return tn
}

// WriteTree encodes the annotated tree as nested JSON and writes it to w.
// A nil or empty tree is written as "[]".
func WriteTree(tree *deptree.Tree, w io.Writer) error {
	if tree == nil || tree.Len() == 0 {
		_, err := io.WriteString(w, "[]\n")
		return err
	}
	converted := make(map[*deptree.Node]*treeNode, tree.Len())
	for _, n := range tree.Nodes() {
		tn := newTreeNode(n)
		converted[n] = tn
		if p := n.Parent(); p != nil {
			converted[p].Children = append(converted[p].Children, tn)
		}
	}
	return encodeJSON(w, converted[tree.Root()])
}

// ExportTree writes the annotated tree to a JSON file at path.
func ExportTree(tree *deptree.Tree, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteTree(tree, w) })
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
