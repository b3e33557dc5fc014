package io

import (
	"io"
	"time"

	"github.com/matzehuels/depscope/pkg/conflict"
	"github.com/matzehuels/depscope/pkg/deptree"
)

// Report is the JSON summary of one analysis run.
type Report struct {
	RunID       string          `json:"runId"`
	Project     string          `json:"project,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Summary     Summary         `json:"summary"`
	Artifacts   []Artifact      `json:"artifacts"`
	Unused      []string        `json:"unused"`
	Conflicts   []ConflictEntry `json:"conflicts"`
	Skipped     []SkippedUnit   `json:"skippedUnits,omitempty"`
}

// Summary holds the run's counters.
type Summary struct {
	Nodes               int  `json:"nodes"`
	CompiledUnits       int  `json:"compiledUnits"`
	UsedTypes           int  `json:"usedTypes"`
	ClassesMissing      bool `json:"classesMissing"`
	Artifacts           int  `json:"artifacts"`
	Unused              int  `json:"unused"`
	Conflicts           int  `json:"conflicts"`
	UnresolvedConflicts int  `json:"unresolvedConflicts"`
}

// Artifact is the usage verdict for one archive.
type Artifact struct {
	Coordinates []string `json:"coordinates"`
	Path        string   `json:"path"`
	Used        bool     `json:"used"`
	Declared    bool     `json:"declared,omitempty"`
	Reason      string   `json:"reason"`
	Evidence    string   `json:"evidence,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// ConflictEntry is one omitted dependency and the dependency that replaced it.
type ConflictEntry struct {
	Omitted     string   `json:"omitted"`
	Winner      string   `json:"winner"`
	Resolved    bool     `json:"resolved"`
	Summary     string   `json:"summary"`
	OmittedPath []string `json:"omittedPath"`
	WinnerPath  []string `json:"winnerPath"`
}

// SkippedUnit is a compiled unit that could not be decoded.
type SkippedUnit struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ConflictEntries converts a conflict report for serialisation. Unresolved
// entries get an empty winner path.
func ConflictEntries(r conflict.Report) []ConflictEntry {
	out := make([]ConflictEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, ConflictEntry{
			Omitted:     e.Omitted.Label(),
			Winner:      e.Omitted.Winner,
			Resolved:    e.Resolved(),
			Summary:     e.Summary(),
			OmittedPath: labels(e.OmittedPath),
			WinnerPath:  labels(e.WinnerPath),
		})
	}
	return out
}

func labels(path []*deptree.Node) []string {
	out := make([]string, len(path))
	for i, n := range path {
		out[i] = n.Label()
	}
	return out
}

// WriteReport encodes r as indented JSON. Nil slices are written as empty
// arrays.
func WriteReport(r *Report, w io.Writer) error {
	out := *r
	if out.Artifacts == nil {
		out.Artifacts = []Artifact{}
	}
	if out.Unused == nil {
		out.Unused = []string{}
	}
	if out.Conflicts == nil {
		out.Conflicts = []ConflictEntry{}
	}
	return encodeJSON(w, out)
}

// ExportReport writes r to a JSON file at path.
func ExportReport(r *Report, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteReport(r, w) })
}
