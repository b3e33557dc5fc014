package io

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/depscope/pkg/deptree"
	"github.com/matzehuels/depscope/pkg/errors"
)

// ReadGraph decodes a JSON graph document from r. A document without a root
// node ("null" or an object lacking groupId and artifactId) yields a
// MISSING_INPUT error. ReadGraph does not close r.
func ReadGraph(r io.Reader) (*deptree.GraphNode, error) {
	var root *deptree.GraphNode
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	if root == nil || (root.GroupID == "" && root.ArtifactID == "") {
		return nil, errors.New(errors.ErrCodeMissingInput, "graph document has no root node")
	}
	return root, nil
}

// ImportGraph reads the graph file at path, decoding ".json" files with
// [ReadGraph] and everything else with [ReadTreeText].
func ImportGraph(path string) (*deptree.GraphNode, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadGraph(f)
	}
	return ReadTreeText(f)
}
