package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/classfile/classfiletest"
	"github.com/matzehuels/depscope/pkg/deptree"
	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/maven"
	"github.com/matzehuels/depscope/pkg/observability"
	"github.com/matzehuels/depscope/pkg/usage"
)

func quietLogger() *log.Logger { return log.New(io.Discard) }

func installJar(t *testing.T, repo maven.LocalRepository, coord string, classes ...string) {
	t.Helper()
	a, err := maven.ParseArtifact(coord)
	if err != nil {
		t.Fatal(err)
	}
	path := repo.Paths(a).Archive
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	entries := map[string][]byte{}
	for _, c := range classes {
		entries[c+".class"] = classfiletest.New(c, "java/lang/Object").Bytes()
	}
	if err := classfiletest.WriteJar(path, entries); err != nil {
		t.Fatal(err)
	}
}

const projectPom = `<project>
  <groupId>com.example</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <dependencies>
    <dependency><groupId>com.dead</groupId><artifactId>dead</artifactId><version>1.0</version></dependency>
  </dependencies>
</project>`

// fixture lays out a project, a local repository and the resolved graph:
// lib is referenced, dead is not, lombok is allow-listed, x:2.0 is absent
// from the repository and x:1.0 lost a conflict against it.
func fixture(t *testing.T) Options {
	t.Helper()
	projectDir := t.TempDir()
	repo := maven.LocalRepository{Root: t.TempDir()}

	if err := os.WriteFile(filepath.Join(projectDir, "pom.xml"), []byte(projectPom), 0o644); err != nil {
		t.Fatal(err)
	}
	classes := filepath.Join(projectDir, "target", "classes", "com", "example")
	if err := os.MkdirAll(classes, 0o755); err != nil {
		t.Fatal(err)
	}
	app := classfiletest.New("com/example/App", "com/used/Lib")
	if err := os.WriteFile(filepath.Join(classes, "App.class"), app.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	installJar(t, repo, "com.used:lib:1.0", "com/used/Lib")
	installJar(t, repo, "com.dead:dead:1.0", "com/dead/Dead")
	installJar(t, repo, "org.projectlombok:lombok:1.18.30", "lombok/Getter")
	installJar(t, repo, "org.x:x:1.0", "org/x/Old")

	root := &deptree.GraphNode{GroupID: "com.example", ArtifactID: "app", Version: "1.0", Children: []*deptree.GraphNode{
		{GroupID: "com.used", ArtifactID: "lib", Version: "1.0", Scope: "compile", Children: []*deptree.GraphNode{
			{GroupID: "org.x", ArtifactID: "x", Version: "1.0", Scope: "compile", Winner: "org.x:x:jar:2.0 (compile)"},
		}},
		{GroupID: "com.dead", ArtifactID: "dead", Version: "1.0", Scope: "compile"},
		{GroupID: "org.projectlombok", ArtifactID: "lombok", Version: "1.18.30", Scope: "provided"},
		{GroupID: "org.x", ArtifactID: "x", Version: "2.0", Scope: "compile"},
	}}
	return Options{
		ProjectDir:      projectDir,
		Root:            root,
		LocalRepository: repo.Root,
		Logger:          quietLogger(),
	}
}

func TestRun(t *testing.T) {
	result, err := NewRunner(quietLogger()).Run(context.Background(), fixture(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.RunID == "" || result.Project == nil || result.Project.ArtifactID != "app" {
		t.Errorf("run id %q, project %+v", result.RunID, result.Project)
	}
	if result.Index.Units != 1 || !result.Index.Types.Contains("com/used/Lib") {
		t.Errorf("index = %+v", result.Index)
	}

	want := []maven.Coordinate{{GroupID: "com.dead", ArtifactID: "dead", Version: "1.0"}}
	if !slices.Equal(result.Unused, want) {
		t.Errorf("Unused = %v, want %v", result.Unused, want)
	}

	reasons := map[string]usage.Reason{}
	for _, v := range result.Verdicts {
		reasons[v.Coordinates[0].ArtifactID] = v.Reason
		if v.Coordinates[0].ArtifactID == "dead" && !v.Declared {
			t.Error("declared dependency not flagged")
		}
	}
	wantReasons := map[string]usage.Reason{
		"lib":    usage.ReasonReferenced,
		"dead":   usage.ReasonUnreferenced,
		"lombok": usage.ReasonAllowListed,
		"x":      usage.ReasonMissing,
	}
	if len(reasons) != len(wantReasons) || len(result.Verdicts) != 4 {
		t.Errorf("verdicts = %v", reasons)
	}
	for name, r := range wantReasons {
		if reasons[name] != r {
			t.Errorf("%s: reason %q, want %q", name, reasons[name], r)
		}
	}

	if result.Tree.Len() != 6 {
		t.Errorf("tree size = %d", result.Tree.Len())
	}
	if got := result.Tree.Unused(); len(got) != 1 || got[0].ArtifactID != "dead" {
		t.Errorf("unused nodes = %v", got)
	}
	if len(result.Conflicts.Entries) != 1 || result.Conflicts.Resolved() != 1 {
		t.Errorf("conflicts = %+v", result.Conflicts)
	}
	if result.Artifacts != nil {
		t.Errorf("artifacts rendered without formats: %v", SortedFormats(result.Artifacts))
	}
}

func TestRun_Report(t *testing.T) {
	result, err := NewRunner(nil).Run(context.Background(), fixture(t))
	if err != nil {
		t.Fatal(err)
	}
	rep := result.Report()
	if rep.Project != "com.example:app:1.0" || rep.RunID != result.RunID {
		t.Errorf("report header = %q %q", rep.Project, rep.RunID)
	}
	if rep.Summary.Unused != 1 || rep.Summary.Conflicts != 1 || rep.Summary.UnresolvedConflicts != 0 {
		t.Errorf("summary = %+v", rep.Summary)
	}
	if !slices.Equal(rep.Unused, []string{"com.dead:dead:1.0"}) {
		t.Errorf("unused = %v", rep.Unused)
	}
	if len(result.UnusedVerdicts()) != 1 {
		t.Errorf("UnusedVerdicts = %v", result.UnusedVerdicts())
	}
}

func TestRun_EmptyGraph(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json null", "dependency-tree.json", "null"},
		{"empty text", "dependency-tree.txt", ""},
		{"build log only", "dependency-tree.txt", "[INFO] BUILD SUCCESS\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := fixture(t)
			opts.Root = nil
			opts.Graph = filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(opts.Graph, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			result, err := NewRunner(nil).Run(context.Background(), opts)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if result.Graph != nil || result.Tree.Len() != 0 {
				t.Errorf("graph %v, tree size %d; want empty", result.Graph, result.Tree.Len())
			}
			if len(result.Verdicts) != 0 || len(result.Unused) != 0 || len(result.Conflicts.Entries) != 0 {
				t.Errorf("verdicts %d, unused %v, conflicts %d", len(result.Verdicts), result.Unused, len(result.Conflicts.Entries))
			}
			if rep := result.Report(); rep.Summary.Nodes != 0 || rep.Summary.Artifacts != 0 {
				t.Errorf("summary = %+v", rep.Summary)
			}
		})
	}
}

func TestRun_GraphErrors(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    errors.Code
	}{
		{"missing file", nil, errors.ErrCodeFileNotFound},
		{"malformed json", ptr("{\"groupId\": "), errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := fixture(t)
			opts.Root = nil
			opts.Graph = filepath.Join(t.TempDir(), "dependency-tree.json")
			if tt.content != nil {
				if err := os.WriteFile(opts.Graph, []byte(*tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			result, err := NewRunner(nil).Run(context.Background(), opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %s", err, tt.want)
			}
			if result != nil {
				t.Error("result returned with error")
			}
		})
	}
}

func ptr(s string) *string { return &s }

func TestRun_ConflictLoserNotClassified(t *testing.T) {
	result, err := NewRunner(nil).Run(context.Background(), fixture(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range result.Verdicts {
		for _, c := range v.Coordinates {
			if c.ArtifactID == "x" && c.Version == "1.0" {
				t.Errorf("conflict loser classified: %+v", v)
			}
		}
	}
	for _, n := range result.Tree.Omitted() {
		if n.Unused {
			t.Errorf("omitted node %s flagged unused", n.Label())
		}
	}
}

func TestRun_IndexTime(t *testing.T) {
	result, err := NewRunner(nil).Run(context.Background(), fixture(t))
	if err != nil {
		t.Fatal(err)
	}
	if result.Stats.IndexTime <= 0 || result.Stats.IndexTime > result.Stats.Duration {
		t.Errorf("IndexTime = %v, Duration = %v", result.Stats.IndexTime, result.Stats.Duration)
	}
}

func TestRun_MissingClassesDir(t *testing.T) {
	opts := fixture(t)
	opts.ClassesDir = filepath.Join(t.TempDir(), "nope")
	result, err := NewRunner(nil).Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Index.Missing || result.Index.Types.Len() != 0 {
		t.Errorf("index = %+v", result.Index)
	}
}

func TestRun_DOT(t *testing.T) {
	opts := fixture(t)
	opts.Formats = []string{FormatDOT}
	result, err := NewRunner(nil).Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(result.Artifacts[FormatDOT])
	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("DOT = %.60s", dot)
	}
}

func TestRun_ExtraArchives(t *testing.T) {
	opts := fixture(t)
	repo := maven.LocalRepository{Root: filepath.Join(t.TempDir(), "repository")}
	installJar(t, repo, "org.extra:extra:2.0", "org/extra/E")
	opts.ExtraArchives = []string{repo.Paths(maven.Artifact{Coordinate: maven.Coordinate{GroupID: "org.extra", ArtifactID: "extra", Version: "2.0"}}).Archive}

	result, err := NewRunner(nil).Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	extra := maven.Coordinate{GroupID: "org.extra", ArtifactID: "extra", Version: "2.0"}
	if !slices.Contains(result.Unused, extra) {
		t.Errorf("Unused = %v, want %v included", result.Unused, extra)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRunner(nil).Run(ctx, fixture(t)); err == nil {
		t.Error("cancelled run succeeded")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no graph", Options{}, errors.ErrCodeInvalidInput},
		{"negative workers", Options{Graph: "g.json", Workers: -1}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Graph: "g.json", Formats: []string{"pdf"}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = quietLogger()
			if err := tt.opts.ValidateAndSetDefaults(); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	_, err := NewRunner(quietLogger()).Run(context.Background(), Options{Graph: filepath.Join(t.TempDir(), "missing.json")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing graph err = %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Graph: "g.json", ProjectDir: "/no/such/project", LocalRepository: "/repo", Logger: quietLogger()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.ClassesDir != filepath.Join("/no/such/project", "target", "classes") {
		t.Errorf("ClassesDir = %q", opts.ClassesDir)
	}
	if opts.Extension != ".jar" || opts.CacheSize != usage.DefaultCacheSize || opts.AllowList == nil {
		t.Errorf("defaults = %+v", opts)
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", true},
		{"SVG", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

type recordingHooks struct {
	observability.NoopAnalysisHooks
	indexed   int
	classify  []string
	annotated int
	conflicts int
}

func (h *recordingHooks) OnIndexComplete(context.Context, string, int, int, int, time.Duration, error) {
	h.indexed++
}

func (h *recordingHooks) OnClassify(_ context.Context, _ string, _ bool, reason string) {
	h.classify = append(h.classify, reason)
}

func (h *recordingHooks) OnAnnotateComplete(context.Context, int, int, int, time.Duration) {
	h.annotated++
}

func (h *recordingHooks) OnConflict(context.Context, string, bool) { h.conflicts++ }

func TestRun_Hooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetAnalysisHooks(hooks)
	defer observability.Reset()

	if _, err := NewRunner(quietLogger()).Run(context.Background(), fixture(t)); err != nil {
		t.Fatal(err)
	}
	if hooks.indexed != 1 || len(hooks.classify) != 4 || hooks.annotated != 1 || hooks.conflicts != 1 {
		t.Errorf("hooks: indexed=%d classify=%v annotated=%d conflicts=%d",
			hooks.indexed, hooks.classify, hooks.annotated, hooks.conflicts)
	}
}

func TestRun_PersistentListingCache(t *testing.T) {
	opts := fixture(t)
	opts.CacheDir = filepath.Join(t.TempDir(), "listings")

	first, err := NewRunner(quietLogger()).Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Stats.StoredHits != 0 {
		t.Errorf("cold run stored hits = %d", first.Stats.StoredHits)
	}

	second, err := NewRunner(quietLogger()).Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if second.Stats.StoredHits == 0 {
		t.Error("warm run read no listing from the cache directory")
	}
	if !slices.Equal(first.Unused, second.Unused) {
		t.Errorf("unused differs between runs: %v vs %v", first.Unused, second.Unused)
	}
}
