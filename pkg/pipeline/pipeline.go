// Package pipeline runs one complete dependency analysis.
//
// This package implements the import → index → classify → annotate → report
// sequence shared by every CLI command. By centralizing it, each command
// only decides which parts of the [Result] to print or write.
//
// # Stages
//
//  1. Import: read the resolved dependency graph (JSON or verbose tree text)
//  2. Index: collect every type referenced by the project's compiled units
//  3. Classify: decide for each dependency archive whether it is referenced
//  4. Annotate: rebuild the graph as a tree flagging omitted and unused nodes
//  5. Report: pair every omitted node with the node that replaced it
//  6. Render (optional): DOT, SVG or PNG diagrams of the annotated tree
//
// Only problems that prevent a run from starting (missing or unreadable graph
// file, malformed graph, invalid options) are returned as errors. An empty
// graph yields an empty result. Malformed units, unreadable archives, a
// missing classes directory and unresolvable conflict winners are logged and
// reflected in the result.
//
// # Conflict losers
//
// Only archives Maven actually resolved are classified. A node omitted for a
// conflict never had its archive put on the classpath, so it gets no verdict
// and is never flagged unused in the annotated tree, even when an older copy
// of its archive happens to sit in the local repository. Its replacement is
// classified in its place.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Run(ctx, pipeline.Options{
//	    ProjectDir: ".",
//	    Graph:      "target/dependency-tree.txt",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, c := range result.Unused {
//	    fmt.Println(c)
//	}
package pipeline

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/conflict"
	"github.com/matzehuels/depscope/pkg/deptree"
	"github.com/matzehuels/depscope/pkg/errors"
	pkgio "github.com/matzehuels/depscope/pkg/io"
	"github.com/matzehuels/depscope/pkg/maven"
	"github.com/matzehuels/depscope/pkg/usage"
)

// Format constants for rendered outputs.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options configures a run.
type Options struct {
	// ProjectDir holds pom.xml. When set, the project coordinate, declared
	// dependencies and build output directory are read from it.
	ProjectDir string
	// Graph is the resolved dependency graph file. Ignored when Root is set.
	Graph string
	// Root is an already decoded graph.
	Root *deptree.GraphNode
	// ClassesDir overrides the project's build output directory.
	ClassesDir string
	// LocalRepository defaults to maven.DefaultLocalRepository.
	LocalRepository string
	// ExtraArchives are classified in addition to the graph's artifacts.
	ExtraArchives []string

	AllowList []string // nil selects usage.DefaultAllowList
	Extension string   // archive suffix, default ".jar"
	Workers   int      // parallel unit decoding; below 2 is sequential
	CacheSize int      // archive listing LRU size, default usage.DefaultCacheSize

	// CacheDir keeps archive listings on disk between runs. Empty disables
	// the persistent cache.
	CacheDir string
	CacheTTL time.Duration // default cache.DefaultTTL

	Formats  []string // render formats; empty renders nothing
	Detailed bool     // detailed diagram labels
	Logger   *log.Logger

	project   *maven.Project
	validated bool
}

// ValidateAndSetDefaults checks required fields and fills defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Root == nil && o.Graph == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a dependency graph is required")
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must not be negative, got %d", o.Workers)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.ProjectDir != "" {
		pom := filepath.Join(o.ProjectDir, "pom.xml")
		if _, err := os.Stat(pom); err == nil {
			p, err := maven.ReadProject(pom)
			if err != nil {
				o.Logger.Warn("cannot read project descriptor, continuing without it", "pom", pom, "err", err)
			} else {
				o.project = p
			}
		}
	}
	if o.ClassesDir == "" {
		switch {
		case o.project != nil:
			o.ClassesDir = o.project.OutputDirectory
		case o.ProjectDir != "":
			o.ClassesDir = filepath.Join(o.ProjectDir, "target", "classes")
		default:
			o.ClassesDir = filepath.Join("target", "classes")
		}
	}
	if o.LocalRepository == "" {
		o.LocalRepository = maven.DefaultLocalRepository()
	}
	if o.AllowList == nil {
		o.AllowList = usage.DefaultAllowList
	}
	if o.Extension == "" {
		o.Extension = usage.DefaultExtension
	}
	if o.CacheSize <= 0 {
		o.CacheSize = usage.DefaultCacheSize
	}
	o.validated = true
	return nil
}

// ArtifactVerdict is the usage verdict for one archive together with every
// coordinate that resolved to it.
type ArtifactVerdict struct {
	usage.Verdict
	Coordinates []maven.Coordinate
	// Declared is set when the project's pom.xml lists one of the
	// coordinates directly.
	Declared bool
}

// Result contains the outputs of a run.
type Result struct {
	RunID     string
	Project   *maven.Project // nil without a readable pom.xml
	Graph     *deptree.GraphNode
	Index     *usage.IndexResult
	Verdicts  []ArtifactVerdict // graph order, one per archive path
	Unused    []maven.Coordinate
	Tree      *deptree.Tree
	Conflicts conflict.Report
	Artifacts map[string][]byte // rendered outputs keyed by format
	Stats     Stats
}

// Stats contains run timing and size information.
type Stats struct {
	Nodes        int
	Archives     int
	CacheHits    int64
	CacheMisses  int64
	StoredHits   int64 // listings served from CacheDir
	IndexTime    time.Duration
	ClassifyTime time.Duration
	AnnotateTime time.Duration
	RenderTime   time.Duration
	Duration     time.Duration
	GeneratedAt  time.Time
}

// UnusedVerdicts returns the verdicts of unreferenced archives.
func (r *Result) UnusedVerdicts() []ArtifactVerdict {
	var out []ArtifactVerdict
	for _, v := range r.Verdicts {
		if !v.Used {
			out = append(out, v)
		}
	}
	return out
}

// Report converts the result for pkg/io.WriteReport.
func (r *Result) Report() *pkgio.Report {
	rep := &pkgio.Report{
		RunID:       r.RunID,
		GeneratedAt: r.Stats.GeneratedAt,
		Conflicts:   pkgio.ConflictEntries(r.Conflicts),
		Summary: pkgio.Summary{
			Nodes:               r.Tree.Len(),
			Artifacts:           len(r.Verdicts),
			Unused:              len(r.Unused),
			Conflicts:           len(r.Conflicts.Entries),
			UnresolvedConflicts: r.Conflicts.Missed(),
		},
	}
	if r.Project != nil {
		rep.Project = r.Project.Coordinate.String()
	}
	if r.Index != nil {
		rep.Summary.CompiledUnits = r.Index.Units
		rep.Summary.UsedTypes = r.Index.Types.Len()
		rep.Summary.ClassesMissing = r.Index.Missing
		for _, s := range r.Index.Skipped {
			rep.Skipped = append(rep.Skipped, pkgio.SkippedUnit{Path: s.Path, Error: s.Err.Error()})
		}
	}
	for _, c := range r.Unused {
		rep.Unused = append(rep.Unused, c.String())
	}
	for _, v := range r.Verdicts {
		a := pkgio.Artifact{
			Path:     v.Path,
			Used:     v.Used,
			Declared: v.Declared,
			Reason:   string(v.Reason),
			Evidence: v.Evidence,
		}
		for _, c := range v.Coordinates {
			a.Coordinates = append(a.Coordinates, c.String())
		}
		if v.Err != nil {
			a.Error = v.Err.Error()
		}
		rep.Artifacts = append(rep.Artifacts, a)
	}
	return rep
}

// ArtifactFileName returns the file name used when writing a rendered output.
func ArtifactFileName(format string) string {
	return "dependency-tree." + strings.ToLower(format)
}

// SortedFormats returns the formats present in artifacts in a stable order.
func SortedFormats(artifacts map[string][]byte) []string {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}
