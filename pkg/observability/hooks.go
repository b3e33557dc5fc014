// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about an analysis run: indexing of compiled units, archive
// classification, tree annotation and conflict reporting.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAnalysisHooks(&myAnalysisHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Analysis().OnIndexStart(ctx, root)
//	// ... walk compiled units ...
//	observability.Analysis().OnIndexComplete(ctx, root, units, types, skipped, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// AnalysisHooks receives events from the analysis pipeline.
type AnalysisHooks interface {
	// Index events
	OnIndexStart(ctx context.Context, root string)
	OnIndexComplete(ctx context.Context, root string, units, types, skipped int, duration time.Duration, err error)

	// OnClassify records the verdict for one archive.
	OnClassify(ctx context.Context, path string, used bool, reason string)

	// OnAnnotateComplete records the annotated tree's size and flag counts.
	OnAnnotateComplete(ctx context.Context, nodes, omitted, unused int, duration time.Duration)

	// OnConflict records one conflict entry; resolved is false when the
	// winner was not found in the tree.
	OnConflict(ctx context.Context, omitted string, resolved bool)
}

// NoopAnalysisHooks is a no-op implementation of AnalysisHooks.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnIndexStart(context.Context, string) {}
func (NoopAnalysisHooks) OnIndexComplete(context.Context, string, int, int, int, time.Duration, error) {
}
func (NoopAnalysisHooks) OnClassify(context.Context, string, bool, string)                 {}
func (NoopAnalysisHooks) OnAnnotateComplete(context.Context, int, int, int, time.Duration) {}
func (NoopAnalysisHooks) OnConflict(context.Context, string, bool)                         {}

var (
	analysisHooks AnalysisHooks = NoopAnalysisHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalysisHooks registers custom analysis hooks. Nil is ignored.
// This should be called once at application startup before any run.
func SetAnalysisHooks(h AnalysisHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analysisHooks = h
	}
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analysisHooks
}

// Reset restores the no-op default.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	analysisHooks = NoopAnalysisHooks{}
}
