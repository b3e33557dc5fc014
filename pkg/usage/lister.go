package usage

import (
	"archive/zip"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/depscope/pkg/classfile"
	"github.com/matzehuels/depscope/pkg/errors"
)

// Lister lists the type names contained in one archive.
type Lister interface {
	ListTypes(path string) (classfile.TypeSet, error)
}

// ZipLister lists the *.class entries of a jar outside META-INF, with the
// suffix stripped. The archive is closed before returning.
type ZipLister struct{}

func (ZipLister) ListTypes(path string) (classfile.TypeSet, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchiveRead, err, "open %s", path)
	}
	defer zr.Close()

	types := classfile.NewTypeSet()
	for _, f := range zr.File {
		name := f.Name
		if strings.HasSuffix(name, "/") || strings.HasPrefix(name, "META-INF") || !strings.HasSuffix(name, ".class") {
			continue
		}
		types.Add(strings.TrimSuffix(name, ".class"))
	}
	return types, nil
}

// DefaultCacheSize bounds CachedLister when no size is given.
const DefaultCacheSize = 256

// CachedLister memoises listings by path for the lifetime of one run.
// Errors are not cached.
type CachedLister struct {
	next   Lister
	cache  *lru.Cache[string, classfile.TypeSet]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedLister wraps next with an LRU of size entries
// (DefaultCacheSize when size <= 0).
func NewCachedLister(next Lister, size int) (*CachedLister, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, classfile.TypeSet](size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create listing cache")
	}
	return &CachedLister{next: next, cache: cache}, nil
}

func (c *CachedLister) ListTypes(path string) (classfile.TypeSet, error) {
	if types, ok := c.cache.Get(path); ok {
		c.hits.Add(1)
		return types, nil
	}
	c.misses.Add(1)
	types, err := c.next.ListTypes(path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(path, types)
	return types, nil
}

// Stats returns cache hits and misses so far.
func (c *CachedLister) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
