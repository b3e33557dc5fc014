// Package cli implements the depscope command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/pkg/buildinfo"
	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/config"
	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/maven"
	"github.com/matzehuels/depscope/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "depscope"

	// treeFileName and reportFileName are written by analyze.
	treeFileName   = "dependency-tree.json"
	reportFileName = "depscope-report.json"
)

// graphCandidates are probed in the project directory when no graph is given.
var graphCandidates = []string{
	filepath.Join("target", "dependency-tree.txt"),
	"dependency-tree.txt",
	filepath.Join("target", "dependency-graph.json"),
	"dependency-graph.json",
}

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depscope finds unused and conflict-omitted Maven dependencies",
		Long: `depscope inspects a compiled JVM project together with its resolved dependency
tree. It reports dependency archives the bytecode never references and
dependencies that version-conflict resolution silently replaced, with the
tree paths leading to both sides of each conflict.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(levelFor(true))
			}
			cmd.SetContext(withLogger(cmd.Context(), commandLogger(c.Logger, cmd)))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default <project-dir>/"+config.FileName+")")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.unusedCommand())
	root.AddCommand(c.conflictsCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Options Helpers
// =============================================================================

// analysisFlags are shared by analyze, unused and conflicts.
type analysisFlags struct {
	graph    string
	classes  string
	repo     string
	allow    []string
	extra    []string
	workers  int
	cacheDir string
	noCache  bool
	detailed bool
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.graph, "graph", "g", "", "resolved dependency graph: JSON or 'mvn dependency:tree -Dverbose' output")
	cmd.Flags().StringVar(&f.classes, "classes", "", "compiled classes directory (default from pom.xml, else target/classes)")
	cmd.Flags().StringVar(&f.repo, "repo", "", "local Maven repository (default $M2_REPO, settings.xml, ~/.m2/repository)")
	cmd.Flags().StringSliceVar(&f.allow, "allow", nil, "extra compile-only name fragments treated as used")
	cmd.Flags().StringSliceVar(&f.extra, "archive", nil, "additional archives to classify")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "decode compiled classes with N goroutines")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "archive listing cache (default user cache directory)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the archive listing cache")
}

// options merges config file values and flags into pipeline options. Flags
// win over the file; relative paths from the file resolve against projectDir.
func (c *CLI) options(cmd *cobra.Command, projectDir string, f *analysisFlags) (pipeline.Options, config.Config, error) {
	cfg, err := c.loadConfig(projectDir)
	if err != nil {
		return pipeline.Options{}, cfg, err
	}
	opts := pipeline.Options{
		ProjectDir:      projectDir,
		Graph:           resolvePath(projectDir, cfg.Graph),
		ClassesDir:      resolvePath(projectDir, cfg.ClassesDir),
		LocalRepository: maven.ExpandHome(cfg.LocalRepository),
		AllowList:       cfg.AllowFragments(),
		Extension:       cfg.ArchiveExtension,
		Workers:         cfg.Workers,
		Detailed:        f.detailed,
		Logger:          loggerFromContext(cmd.Context()),
	}

	flags := cmd.Flags()
	if flags.Changed("graph") {
		opts.Graph = f.graph
	}
	if flags.Changed("classes") {
		opts.ClassesDir = f.classes
	}
	if flags.Changed("repo") {
		opts.LocalRepository = f.repo
	}
	if flags.Changed("workers") {
		opts.Workers = f.workers
	}
	opts.AllowList = append(opts.AllowList, f.allow...)
	opts.ExtraArchives = f.extra

	opts.CacheDir = maven.ExpandHome(cfg.CacheDir)
	if flags.Changed("cache-dir") {
		opts.CacheDir = f.cacheDir
	}
	if opts.CacheDir == "" {
		if dir, err := cache.DefaultDir(); err == nil {
			opts.CacheDir = dir
		}
	}
	if f.noCache {
		opts.CacheDir = ""
	}

	if opts.Graph == "" {
		opts.Graph = findGraph(projectDir)
	}
	if opts.Graph == "" {
		return opts, cfg, errors.New(errors.ErrCodeInvalidInput,
			"no dependency graph found in %s; run 'mvn dependency:tree -Dverbose -DoutputFile=target/dependency-tree.txt' or pass --graph", projectDir)
	}
	return opts, cfg, nil
}

func (c *CLI) loadConfig(projectDir string) (config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	return config.LoadOptional(filepath.Join(projectDir, config.FileName))
}

func findGraph(projectDir string) string {
	for _, name := range graphCandidates {
		path := filepath.Join(projectDir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

func resolvePath(base, p string) string {
	p = maven.ExpandHome(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func projectDirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
