// Package conflict reports dependencies discarded by version-conflict
// resolution together with the dependency that replaced them.
//
// For every omitted node of an annotated tree, [Build] parses the winner
// metadata with [ParseWinner], looks the winner up by the omitted node's name
// and the recovered version and scope, and pairs both root paths. A winner
// that cannot be found degrades the entry instead of failing.
package conflict

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/deptree"
	"github.com/matzehuels/depscope/pkg/errors"
)

// Entry describes one omitted node.
type Entry struct {
	Omitted       *deptree.Node
	Winner        *deptree.Node // nil when the winner was not found
	WinnerVersion string
	WinnerScope   string
	OmittedPath   []*deptree.Node // root first
	WinnerPath    []*deptree.Node // root first; nil when Winner is nil
}

// Resolved reports whether the winner node was located.
func (e Entry) Resolved() bool { return e.Winner != nil }

// Summary renders the entry as one sentence.
func (e Entry) Summary() string {
	parent := "<root>"
	if p := e.Omitted.Parent(); p != nil {
		parent = p.Name
	}
	return fmt.Sprintf("%s tried using %s with version %s and scope %s but was omitted due to %s",
		parent, e.Omitted.Name, e.Omitted.Version, e.Omitted.Scope, e.Omitted.Winner)
}

// Err returns a LOOKUP_MISS error for unresolved entries and nil otherwise.
func (e Entry) Err() error {
	if e.Resolved() {
		return nil
	}
	return errors.New(errors.ErrCodeLookupMiss, "winner %s:%s (%s) of %s not found in tree",
		e.Omitted.Name, e.WinnerVersion, e.WinnerScope, e.Omitted.Label())
}

// Report lists entries in the pre-order of their omitted nodes.
type Report struct {
	Entries []Entry
}

// Resolved counts entries with a located winner.
func (r Report) Resolved() int {
	n := 0
	for _, e := range r.Entries {
		if e.Resolved() {
			n++
		}
	}
	return n
}

// Missed counts entries whose winner lookup failed.
func (r Report) Missed() int { return len(r.Entries) - r.Resolved() }

// Build produces the conflict report for tree.
func Build(tree *deptree.Tree, logger *log.Logger) Report {
	if logger == nil {
		logger = log.Default()
	}
	var report Report
	for _, n := range tree.Omitted() {
		version, scope := ParseWinner(n.Winner)
		e := Entry{
			Omitted:       n,
			WinnerVersion: version,
			WinnerScope:   scope,
			OmittedPath:   tree.PathFromRoot(n),
		}
		if w := tree.Find(n.Name, version, scope); w != nil {
			e.Winner = w
			e.WinnerPath = tree.PathFromRoot(w)
			logger.Warn(e.Summary())
			logger.Info("omitted path", "path", FormatPath(e.OmittedPath))
			logger.Info("winner path", "path", FormatPath(e.WinnerPath))
		} else {
			logger.Debug("conflict winner not in tree", "node", n.Label(), "winner", n.Winner, "err", e.Err())
		}
		report.Entries = append(report.Entries, e)
	}
	return report
}

// ParseWinner recovers version and scope from a winner dependency string
// such as "org.x:x:jar:2.0 (compile?)". The version runs from the last colon
// before the first space up to that space (to the end when there is no
// space). The scope is the text after the first space with '(', ')' and '?'
// removed.
func ParseWinner(winner string) (version, scope string) {
	head, tail, hasSpace := strings.Cut(winner, " ")
	version = head[strings.LastIndexByte(head, ':')+1:]
	if hasSpace {
		scope = strings.TrimSpace(scopeStripper.Replace(tail))
	}
	return version, scope
}

var scopeStripper = strings.NewReplacer("(", "", ")", "", "?", "")

// FormatPath renders a path as "a (1.0) -> b (2.0)".
func FormatPath(path []*deptree.Node) string {
	parts := make([]string, len(path))
	for i, n := range path {
		parts[i] = n.Name + " (" + n.Version + ")"
	}
	return strings.Join(parts, " -> ")
}
