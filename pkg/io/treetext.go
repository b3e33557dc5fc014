package io

import (
	"bufio"
	"io"
	"strings"

	"github.com/matzehuels/depscope/pkg/deptree"
	"github.com/matzehuels/depscope/pkg/errors"
)

const conflictNote = "omitted for conflict with "

// ReadTreeText parses verbose dependency-tree text into a graph. Lines before
// the root entry are ignored, as is everything after the tree ends, so the
// full build log can be passed in. Each nesting level is three characters
// wide and ends in "+- " or "\- " at the entry itself.
func ReadTreeText(r io.Reader) (*deptree.GraphNode, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		root   *deptree.GraphNode
		stack  []*deptree.GraphNode // current path, root first
		lineNo int
	)
	for sc.Scan() {
		lineNo++
		depth, content, ok := splitTreeLine(stripLogPrefix(sc.Text()))
		if root == nil {
			if !ok || depth != 0 {
				continue
			}
			n, err := parseEntry(content, true)
			if err != nil {
				continue
			}
			root = n
			stack = append(stack, n)
			continue
		}
		if !ok || depth == 0 {
			break
		}
		if depth > len(stack) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: indentation skips a level", lineNo)
		}
		n, err := parseEntry(content, false)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", lineNo)
		}
		parent := stack[depth-1]
		parent.Children = append(parent.Children, n)
		stack = append(stack[:depth], n)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read dependency tree")
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeMissingInput, "no dependency tree found in input")
	}
	return root, nil
}

func stripLogPrefix(line string) string {
	line = strings.TrimRight(line, "\r")
	if strings.HasPrefix(line, "[") {
		if i := strings.Index(line, "] "); i > 0 && i < 12 {
			return line[i+2:]
		}
	}
	return line
}

// splitTreeLine returns the nesting depth and the entry text of line.
func splitTreeLine(line string) (depth int, content string, ok bool) {
	i := 0
	for i < len(line) && strings.IndexByte("|+\\- ", line[i]) >= 0 {
		i++
	}
	if i == len(line) || i%3 != 0 {
		return 0, "", false
	}
	if i > 0 {
		if c := line[i-3 : i]; c != "+- " && c != "\\- " {
			return 0, "", false
		}
	}
	return i / 3, line[i:], true
}

// parseEntry parses "g:a:type[:classifier]:version[:scope]" followed by
// optional notes. The root entry carries no scope.
func parseEntry(content string, root bool) (*deptree.GraphNode, error) {
	verbose := strings.HasPrefix(content, "(")
	if verbose {
		content = strings.TrimSuffix(strings.TrimPrefix(content, "("), ")")
	}
	coord, note, _ := strings.Cut(content, " ")

	parts := strings.Split(coord, ":")
	for _, p := range parts {
		if p == "" {
			return nil, errors.New(errors.ErrCodeInvalidCoordinate, "malformed coordinate %q", coord)
		}
	}
	n := &deptree.GraphNode{}
	switch {
	case root && len(parts) == 4:
		n.GroupID, n.ArtifactID, n.Extension, n.Version = parts[0], parts[1], parts[2], parts[3]
	case root && len(parts) == 5:
		n.GroupID, n.ArtifactID, n.Extension, n.Classifier, n.Version = parts[0], parts[1], parts[2], parts[3], parts[4]
	case !root && len(parts) == 5:
		n.GroupID, n.ArtifactID, n.Extension, n.Version, n.Scope = parts[0], parts[1], parts[2], parts[3], parts[4]
	case !root && len(parts) == 6:
		n.GroupID, n.ArtifactID, n.Extension, n.Classifier, n.Version, n.Scope = parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]
	default:
		return nil, errors.New(errors.ErrCodeInvalidCoordinate, "malformed coordinate %q", coord)
	}
	n.Optional = strings.Contains(note, "(optional")

	if verbose {
		if v, ok := conflictVersion(note); ok {
			w := *n
			w.Version = v
			n.Winner = w.String()
		} else {
			n.Winner = n.String()
		}
	}
	return n, nil
}

// conflictVersion extracts V from a note containing "omitted for conflict with V".
func conflictVersion(note string) (string, bool) {
	i := strings.Index(note, conflictNote)
	if i < 0 {
		return "", false
	}
	v := note[i+len(conflictNote):]
	if end := strings.IndexAny(v, " ;)"); end >= 0 {
		v = v[:end]
	}
	return v, v != ""
}
