package usage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/depscope/pkg/classfile"
	"github.com/matzehuels/depscope/pkg/errors"
)

// UsedTypes is the set of types referenced by a project's compiled units.
// It is built once by BuildIndex and read-only afterwards.
type UsedTypes struct {
	set classfile.TypeSet
}

// NewUsedTypes returns a set holding names.
func NewUsedTypes(names ...string) *UsedTypes {
	return &UsedTypes{set: classfile.NewTypeSet(names...)}
}

func (u *UsedTypes) Contains(name string) bool {
	return u != nil && u.set.Contains(name)
}

func (u *UsedTypes) Len() int {
	if u == nil {
		return 0
	}
	return u.set.Len()
}

// Sorted returns the names in lexical order.
func (u *UsedTypes) Sorted() []string {
	if u == nil {
		return nil
	}
	return u.set.Sorted()
}

// firstShared returns the lexically smallest name present in both sets.
func (u *UsedTypes) firstShared(types classfile.TypeSet) (string, bool) {
	if u == nil {
		return "", false
	}
	var best string
	found := false
	for name := range types {
		if u.set.Contains(name) && (!found || name < best) {
			best, found = name, true
		}
	}
	return best, found
}

// IndexOptions configures BuildIndex.
type IndexOptions struct {
	// Workers is the number of units decoded concurrently. Values below 2
	// decode sequentially.
	Workers int
	Logger  *log.Logger
}

// SkippedUnit is a compiled unit that could not be read or decoded.
type SkippedUnit struct {
	Path string
	Err  error
}

// IndexResult is the outcome of BuildIndex.
type IndexResult struct {
	Types   *UsedTypes
	Units   int // units that contributed
	Skipped []SkippedUnit
	Missing bool // root absent; Types is empty
}

// BuildIndex unions the references of every *.class file beneath root.
// An absent root yields an empty set with Missing set. A unit that fails to
// decode is skipped and recorded. Only context cancellation returns an error.
func BuildIndex(ctx context.Context, root string, opts IndexOptions) (*IndexResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	result := &IndexResult{Types: NewUsedTypes()}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		logger.Warn("classes directory not found, no types indexed", "dir", root)
		result.Missing = true
		return result, nil
	}

	paths, err := findUnits(ctx, root, logger)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	merge := func(path string, types classfile.TypeSet, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			logger.Warn("skipping unreadable class file", "path", path, "err", err)
			result.Skipped = append(result.Skipped, SkippedUnit{Path: path, Err: err})
			return
		}
		result.Types.set.Merge(types)
		result.Units++
	}

	if opts.Workers < 2 {
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			types, err := extractFile(path)
			merge(path, types, err)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for _, path := range paths {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				types, err := extractFile(path)
				merge(path, types, err)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slices.SortFunc(result.Skipped, func(a, b SkippedUnit) int { return strings.Compare(a.Path, b.Path) })
	}

	logger.Debug("indexed compiled units",
		"dir", root,
		"units", result.Units,
		"skipped", len(result.Skipped),
		"types", result.Types.Len())
	return result, nil
}

func findUnits(ctx context.Context, root string, logger *log.Logger) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			logger.Warn("cannot read directory entry", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".class") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func extractFile(path string) (classfile.TypeSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "read %s", path)
	}
	types, err := classfile.Extract(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode %s", path)
	}
	return types, nil
}
