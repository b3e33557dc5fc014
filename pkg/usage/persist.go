package usage

import (
	"context"
	"encoding/json"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/classfile"
)

// PersistentLister keeps listings in a cache.Cache across runs, keyed by
// the archive's path, size and modification time. Store failures degrade to
// listing the archive directly.
type PersistentLister struct {
	next   Lister
	store  cache.Cache
	ttl    time.Duration
	logger *log.Logger
	hits   atomic.Int64
}

// NewPersistentLister wraps next with store. A ttl of zero uses
// cache.DefaultTTL.
func NewPersistentLister(next Lister, store cache.Cache, ttl time.Duration, logger *log.Logger) *PersistentLister {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &PersistentLister{next: next, store: store, ttl: ttl, logger: logger}
}

func (p *PersistentLister) ListTypes(path string) (classfile.TypeSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return p.next.ListTypes(path)
	}
	ctx := context.Background()
	key := cache.ArchiveKey(path, info)

	if data, ok, err := p.store.Get(ctx, key); err != nil {
		p.logger.Debug("listing cache read failed", "path", path, "err", err)
	} else if ok {
		var names []string
		if err := json.Unmarshal(data, &names); err == nil {
			p.hits.Add(1)
			return classfile.NewTypeSet(names...), nil
		}
	}

	types, err := p.next.ListTypes(path)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(types.Sorted())
	if err == nil {
		err = p.store.Set(ctx, key, data, p.ttl)
	}
	if err != nil {
		p.logger.Debug("listing cache write failed", "path", path, "err", err)
	}
	return types, nil
}

// Hits returns the number of listings served from the store.
func (p *PersistentLister) Hits() int64 {
	return p.hits.Load()
}
