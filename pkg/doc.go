// Package pkg provides the core libraries for depscope, a dependency
// analyzer for compiled Maven projects.
//
// # Overview
//
// depscope answers two questions about a built project: which dependency
// archives does the bytecode never touch, and which dependencies did
// version-conflict resolution silently replace. The pkg directory is
// organized into three areas:
//
//  1. Analysis: [classfile], [usage], [deptree], [conflict]
//  2. Inputs and outputs: [maven], [io], [config], [render/nodelink]
//  3. Orchestration: [pipeline], [observability], [errors]
//
// # Architecture
//
// The data flow of one run:
//
//	dependency:tree output ──► [io] ──► GraphNode
//	target/classes ──► [classfile] ──► [usage] index
//	GraphNode + [maven] repository ──► archive paths
//	index + archives ──► [usage] classifier ──► unused coordinates
//	GraphNode + unused ──► [deptree] ──► annotated Tree
//	Tree ──► [conflict] ──► omitted/winner paths
//	Tree ──► [render/nodelink] ──► DOT/SVG/PNG
//
// # Quick Start
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Run(ctx, pipeline.Options{
//	    ProjectDir: ".",
//	    Graph:      "target/dependency-tree.txt",
//	    Formats:    []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	for _, c := range result.Unused {
//	    fmt.Println("unused:", c)
//	}
//	for _, e := range result.Conflicts.Entries {
//	    fmt.Println(e.Summary())
//	}
//
// # Main Packages
//
// [classfile] - Decodes a class file and returns every type name its
// constant pool, descriptors, signatures and annotations reference.
//
// [usage] - Builds the project-wide set of used types, lists the classes
// inside archives and classifies each archive as used or unused.
//
// [maven] - Coordinates, local repository layout, settings.xml and pom.xml.
//
// [deptree] - The resolved dependency graph and its annotated tree with
// name, version and scope lookups.
//
// [conflict] - Root paths to every omitted node and to its winner.
//
// [io] - Reads dependency:tree text and JSON graphs; writes the annotated
// tree and the run report as JSON.
//
// [render/nodelink] - Graphviz diagrams of the annotated tree.
//
// [pipeline] - One analysis run from inputs to artifacts.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/classfile/...  # Specific package
//	go test -run Example ./...   # Examples only
//
// [classfile]: https://pkg.go.dev/github.com/matzehuels/depscope/pkg/classfile
// [usage]: https://pkg.go.dev/github.com/matzehuels/depscope/pkg/usage
// [deptree]: https://pkg.go.dev/github.com/matzehuels/depscope/pkg/deptree
// [conflict]: https://pkg.go.dev/github.com/matzehuels/depscope/pkg/conflict
// [maven]: https://pkg.go.dev/github.com/matzehuels/depscope/pkg/maven
// [io]: https://pkg.go.dev/github.com/matzehuels/depscope/pkg/io
// [config]: https://pkg.go.dev/github.com/matzehuels/depscope/pkg/config
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/depscope/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/depscope/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/depscope/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/depscope/pkg/errors
package pkg
