package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/depscope/pkg/conflict"
	"github.com/matzehuels/depscope/pkg/deptree"
	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/maven"
)

const verboseTree = `[INFO] Scanning for projects...
[INFO]
[INFO] --- maven-dependency-plugin:3.6.1:tree (default-cli) @ app ---
[INFO] com.example:app:jar:1.0
[INFO] +- org.a:a:jar:1.0:compile
[INFO] |  +- org.x:x:jar:tests:1.0:test
[INFO] |  \- (org.x:x:jar:1.0:compile - omitted for conflict with 2.0)
[INFO] +- org.opt:opt:jar:3.0:runtime (optional)
[INFO] |  \- (org.a:a:jar:1.0:compile - omitted for duplicate)
[INFO] \- org.x:x:jar:2.0:compile
[INFO] ------------------------------------------------------------------------
[INFO] BUILD SUCCESS
`

func TestReadTreeText(t *testing.T) {
	root, err := ReadTreeText(strings.NewReader(verboseTree))
	if err != nil {
		t.Fatalf("ReadTreeText: %v", err)
	}
	if root.String() != "com.example:app:jar:1.0 ()" {
		t.Errorf("root = %q", root.String())
	}
	if root.Count() != 7 {
		t.Errorf("Count() = %d, want 7", root.Count())
	}
	if len(root.Children) != 3 {
		t.Fatalf("root children = %d", len(root.Children))
	}

	a := root.Children[0]
	if len(a.Children) != 2 {
		t.Fatalf("a children = %d", len(a.Children))
	}
	tests := a.Children[0]
	if tests.Classifier != "tests" || tests.Scope != "test" || tests.Version != "1.0" {
		t.Errorf("classifier entry = %+v", tests)
	}
	omitted := a.Children[1]
	if omitted.Winner != "org.x:x:jar:2.0 (compile)" {
		t.Errorf("conflict winner = %q", omitted.Winner)
	}

	opt := root.Children[1]
	if !opt.Optional || opt.Scope != "runtime" {
		t.Errorf("optional entry = %+v", opt)
	}
	dup := opt.Children[0]
	if dup.Winner != dup.String() {
		t.Errorf("duplicate winner = %q, want own string %q", dup.Winner, dup.String())
	}
}

func TestReadTreeText_ConflictIsResolvable(t *testing.T) {
	root, err := ReadTreeText(strings.NewReader(verboseTree))
	if err != nil {
		t.Fatal(err)
	}
	tree := deptree.Annotate(root, deptree.Options{})
	if got := len(tree.Omitted()); got != 1 {
		t.Fatalf("omitted = %d, want 1", got)
	}
	report := conflict.Build(tree, nil)
	e := report.Entries[0]
	if !e.Resolved() {
		t.Fatal("winner org.x.x:2.0 not located")
	}
	if got := conflict.FormatPath(e.WinnerPath); got != "com.example.app (1.0) -> org.x.x (2.0)" {
		t.Errorf("winner path = %q", got)
	}
}

func TestReadTreeText_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"empty", "", errors.ErrCodeMissingInput},
		{"no tree", "[INFO] BUILD SUCCESS\n", errors.ErrCodeMissingInput},
		{"skipped level", "g:a:jar:1\n|  \\- g:b:jar:1:compile\n", errors.ErrCodeInvalidFormat},
		{"bad child", "g:a:jar:1\n+- g:b:1\n", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTreeText(strings.NewReader(tt.input))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSplitTreeLine(t *testing.T) {
	tests := []struct {
		line    string
		depth   int
		content string
		ok      bool
	}{
		{"g:a:jar:1", 0, "g:a:jar:1", true},
		{"+- g:b:jar:1:compile", 1, "g:b:jar:1:compile", true},
		{"|  \\- g:c:jar:1:compile", 2, "g:c:jar:1:compile", true},
		{"   \\- g:c:jar:1:compile", 2, "g:c:jar:1:compile", true},
		{"--- plugin:tree ---", 0, "", false},
		{"-----", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			depth, content, ok := splitTreeLine(tt.line)
			if depth != tt.depth || content != tt.content || ok != tt.ok {
				t.Errorf("splitTreeLine(%q) = %d, %q, %v", tt.line, depth, content, ok)
			}
		})
	}
}

func TestReadGraph(t *testing.T) {
	doc := `{"groupId":"r","artifactId":"r","version":"1","children":[
		{"groupId":"org.x","artifactId":"x","version":"1.0","scope":"compile","winner":"org.x:x:jar:2.0 (compile)"}]}`
	root, err := ReadGraph(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if len(root.Children) != 1 || root.Children[0].Winner != "org.x:x:jar:2.0 (compile)" {
		t.Errorf("children = %+v", root.Children)
	}

	if _, err := ReadGraph(strings.NewReader("null")); !errors.Is(err, errors.ErrCodeMissingInput) {
		t.Errorf("null document err = %v", err)
	}
	if _, err := ReadGraph(strings.NewReader("{")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("truncated document err = %v", err)
	}
}

func TestImportGraph(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "graph.json")
	textPath := filepath.Join(dir, "tree.txt")
	os.WriteFile(jsonPath, []byte(`{"groupId":"r","artifactId":"r","version":"1"}`), 0o644)
	os.WriteFile(textPath, []byte(verboseTree), 0o644)

	g, err := ImportGraph(jsonPath)
	if err != nil || g.Count() != 1 {
		t.Errorf("json import = %v, %v", g, err)
	}
	g, err = ImportGraph(textPath)
	if err != nil || g.Count() != 7 {
		t.Errorf("text import err = %v", err)
	}
	if _, err := ImportGraph(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestWriteTree_SingleRoot(t *testing.T) {
	tree := deptree.Annotate(&deptree.GraphNode{GroupID: "com.example", ArtifactID: "app", Version: "1.0"}, deptree.Options{})

	var buf bytes.Buffer
	if err := WriteTree(tree, &buf); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not one object: %v\n%s", err, buf.String())
	}
	if got["isOmitted"] != false || got["unused"] != false || got["isLeaf"] != true {
		t.Errorf("flags = %v", got)
	}
	for _, key := range []string{"parent", "winner", "winnerNodeName"} {
		if v, ok := got[key]; !ok || v != nil {
			t.Errorf("%s = %v, want null", key, v)
		}
	}
	if got["name"] != "com.example.app" {
		t.Errorf("name = %v", got["name"])
	}
	if children, ok := got["children"].([]any); !ok || len(children) != 0 {
		t.Errorf("children = %v, want []", got["children"])
	}
}

func TestWriteTree_Nested(t *testing.T) {
	root := &deptree.GraphNode{GroupID: "r", ArtifactID: "r", Version: "1", Children: []*deptree.GraphNode{
		{GroupID: "org.x", ArtifactID: "x", Version: "1.0", Scope: "compile", Winner: "org.x:x:jar:2.0 (compile)"},
		{GroupID: "org.y", ArtifactID: "y", Version: "1.0", Scope: "runtime"},
	}}
	repo := maven.LocalRepository{Root: "/repo"}
	tree := deptree.Annotate(root, deptree.Options{
		Paths:  repo.Paths,
		Unused: []maven.Coordinate{{GroupID: "org.y", ArtifactID: "y", Version: "1.0"}},
	})

	var buf bytes.Buffer
	if err := WriteTree(tree, &buf); err != nil {
		t.Fatal(err)
	}
	var got treeNode
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Children) != 2 {
		t.Fatalf("children = %d", len(got.Children))
	}
	x, y := got.Children[0], got.Children[1]
	if !x.IsOmitted || x.Winner == nil || x.WinnerNodeName == nil || *x.WinnerNodeName != "org.x:x:jar:2.0 (compile)" {
		t.Errorf("omitted child = %+v", x)
	}
	if x.Parent == nil || *x.Parent != "r.r:1 ()" {
		t.Errorf("parent = %v", x.Parent)
	}
	if !y.Unused || y.IsOmitted {
		t.Errorf("unused child = %+v", y)
	}
	if y.JarPath != filepath.FromSlash("/repo/org/y/y/1.0/y-1.0.jar") {
		t.Errorf("jar path = %q", y.JarPath)
	}
}

func TestWriteTree_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTree(deptree.Annotate(nil, deptree.Options{}), &buf); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty tree = %q", buf.String())
	}
}

func TestWriteReport(t *testing.T) {
	root := &deptree.GraphNode{GroupID: "r", ArtifactID: "r", Version: "1", Children: []*deptree.GraphNode{
		{GroupID: "org.x", ArtifactID: "x", Version: "1.0", Scope: "compile", Winner: "org.x:x:jar:9.0 (compile)"},
	}}
	entries := ConflictEntries(conflict.Build(deptree.Annotate(root, deptree.Options{}), nil))
	if len(entries) != 1 || entries[0].Resolved || len(entries[0].WinnerPath) != 0 {
		t.Fatalf("entries = %+v", entries)
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := ExportReport(&Report{RunID: "run-1", Conflicts: entries}, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["runId"] != "run-1" {
		t.Errorf("runId = %v", got["runId"])
	}
	if unused, ok := got["unused"].([]any); !ok || len(unused) != 0 {
		t.Errorf("unused = %v, want []", got["unused"])
	}
	conflicts := got["conflicts"].([]any)
	first := conflicts[0].(map[string]any)
	if first["omitted"] != "org.x.x:1.0 (compile)" || first["resolved"] != false {
		t.Errorf("conflict = %v", first)
	}
}
