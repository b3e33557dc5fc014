package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/conflict"
	"github.com/matzehuels/depscope/pkg/deptree"
	"github.com/matzehuels/depscope/pkg/errors"
	pkgio "github.com/matzehuels/depscope/pkg/io"
	"github.com/matzehuels/depscope/pkg/maven"
	"github.com/matzehuels/depscope/pkg/observability"
	"github.com/matzehuels/depscope/pkg/render/nodelink"
	"github.com/matzehuels/depscope/pkg/usage"
)

// Runner executes analysis runs. It holds no per-run state, so one Runner
// may serve several goroutines.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger selects log.Default.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// archive is one distinct archive path and the coordinates resolving to it.
type archive struct {
	path        string
	coordinates []maven.Coordinate
}

// Run executes every stage for opts.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	start := time.Now()

	root, err := r.importGraph(opts)
	if err != nil {
		if !errors.Degradable(err) {
			return nil, err
		}
		logger.Warn("dependency graph is empty, continuing with an empty tree", "graph", opts.Graph, "err", errors.UserMessage(err))
	}
	result := &Result{
		RunID:   uuid.NewString(),
		Project: opts.project,
		Graph:   root,
	}
	logger = logger.With("run", result.RunID[:8])
	logger.Info("imported dependency graph", "nodes", root.Count())

	repo := maven.LocalRepository{Root: opts.LocalRepository, Logger: logger}
	archives := collectArchives(root, repo, opts.ExtraArchives, logger)
	result.Stats.Archives = len(archives)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	index, err := r.index(ctx, opts, result, logger)
	if err != nil {
		return nil, err
	}
	result.Index = index

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.classify(ctx, opts, archives, result, logger); err != nil {
		return nil, err
	}

	annotateStart := time.Now()
	result.Tree = deptree.Annotate(root, deptree.Options{
		Unused: result.Unused,
		Paths:  repo.Paths,
		Logger: logger,
	})
	result.Stats.AnnotateTime = time.Since(annotateStart)
	result.Stats.Nodes = result.Tree.Len()
	observability.Analysis().OnAnnotateComplete(ctx, result.Tree.Len(),
		len(result.Tree.Omitted()), len(result.Tree.Unused()), result.Stats.AnnotateTime)

	result.Conflicts = conflict.Build(result.Tree, logger)
	for _, e := range result.Conflicts.Entries {
		observability.Analysis().OnConflict(ctx, e.Omitted.Label(), e.Resolved())
	}

	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, err := Render(ctx, result.Tree, opts.Formats, nodelink.Options{Detailed: opts.Detailed})
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
	}

	result.Stats.Duration = time.Since(start)
	result.Stats.GeneratedAt = time.Now().UTC()
	logger.Info("analysis complete",
		"nodes", result.Stats.Nodes,
		"archives", result.Stats.Archives,
		"unused", len(result.Unused),
		"conflicts", len(result.Conflicts.Entries),
		"duration", result.Stats.Duration)
	return result, nil
}

func (r *Runner) importGraph(opts Options) (*deptree.GraphNode, error) {
	if opts.Root != nil {
		return opts.Root, nil
	}
	return pkgio.ImportGraph(opts.Graph)
}

func (r *Runner) index(ctx context.Context, opts Options, result *Result, logger *log.Logger) (*usage.IndexResult, error) {
	hooks := observability.Analysis()
	hooks.OnIndexStart(ctx, opts.ClassesDir)
	start := time.Now()

	index, err := usage.BuildIndex(ctx, opts.ClassesDir, usage.IndexOptions{Workers: opts.Workers, Logger: logger})
	elapsed := time.Since(start)
	result.Stats.IndexTime = elapsed
	if err != nil {
		hooks.OnIndexComplete(ctx, opts.ClassesDir, 0, 0, 0, elapsed, err)
		return nil, fmt.Errorf("index: %w", err)
	}
	hooks.OnIndexComplete(ctx, opts.ClassesDir, index.Units, index.Types.Len(), len(index.Skipped), elapsed, nil)
	logger.Info("indexed compiled units",
		"dir", opts.ClassesDir,
		"units", index.Units,
		"types", index.Types.Len(),
		"skipped", len(index.Skipped),
		"duration", elapsed)
	return index, nil
}

func (r *Runner) classify(ctx context.Context, opts Options, archives []archive, result *Result, logger *log.Logger) error {
	start := time.Now()
	var base usage.Lister = usage.ZipLister{}
	var stored *usage.PersistentLister
	if opts.CacheDir != "" {
		store, err := cache.NewFileCache(opts.CacheDir)
		if err != nil {
			logger.Warn("listing cache disabled", "dir", opts.CacheDir, "err", err)
		} else {
			defer store.Close()
			stored = usage.NewPersistentLister(base, store, opts.CacheTTL, logger)
			base = stored
		}
	}
	lister, err := usage.NewCachedLister(base, opts.CacheSize)
	if err != nil {
		return fmt.Errorf("archive cache: %w", err)
	}
	classifier := usage.NewClassifier(result.Index.Types, logger)
	classifier.Lister = lister
	classifier.AllowList = opts.AllowList
	classifier.Extension = opts.Extension

	for _, a := range archives {
		v := ArtifactVerdict{Verdict: classifier.Classify(a.path), Coordinates: a.coordinates}
		if result.Project != nil {
			for _, c := range a.coordinates {
				if result.Project.Declares(c) {
					v.Declared = true
					break
				}
			}
		}
		observability.Analysis().OnClassify(ctx, v.Path, v.Used, string(v.Reason))
		if !v.Used {
			result.Unused = append(result.Unused, a.coordinates...)
			logger.Info("unused dependency", "artifact", a.coordinates, "path", a.path, "declared", v.Declared)
		}
		result.Verdicts = append(result.Verdicts, v)
	}

	result.Stats.CacheHits, result.Stats.CacheMisses = lister.Stats()
	if stored != nil {
		result.Stats.StoredHits = stored.Hits()
	}
	result.Stats.ClassifyTime = time.Since(start)
	return nil
}

// collectArchives flattens every resolved dependency below root in pre-order
// and maps it to its archive path. Conflict losers are not resolved and are
// left out. Several coordinates sharing one path are grouped.
// Extra archives without a recoverable coordinate are classified with none.
func collectArchives(root *deptree.GraphNode, repo maven.LocalRepository, extra []string, logger *log.Logger) []archive {
	var out []archive
	byPath := make(map[string]int)
	add := func(path string, c *maven.Coordinate) {
		i, ok := byPath[path]
		if !ok {
			i = len(out)
			byPath[path] = i
			out = append(out, archive{path: path})
		}
		if c != nil && !slices.Contains(out[i].coordinates, *c) {
			out[i].coordinates = append(out[i].coordinates, *c)
		}
	}

	root.Walk(func(n *deptree.GraphNode, depth int) {
		if depth == 0 || (n.Winner != "" && n.Winner != n.String()) {
			return
		}
		a := n.Artifact()
		path, _ := repo.Locate(a)
		add(path, &a.Coordinate)
	})
	for _, path := range extra {
		c, err := maven.CoordinateFromPath(path)
		if err != nil {
			logger.Debug("no coordinate for archive", "path", path, "err", err)
			add(path, nil)
			continue
		}
		add(path, &c)
	}
	return out
}
