package usage

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/classfile"
	"github.com/matzehuels/depscope/pkg/classfile/classfiletest"
	"github.com/matzehuels/depscope/pkg/errors"
)

func writeClass(t *testing.T, root, name string, b *classfiletest.Builder) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name)+".class")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeJar(t *testing.T, dir, name string, classes ...string) string {
	t.Helper()
	entries := map[string][]byte{"META-INF/MANIFEST.MF": []byte("Manifest-Version: 1.0\n")}
	for _, c := range classes {
		entries[c+".class"] = classfiletest.New(c, "java/lang/Object").Bytes()
	}
	path := filepath.Join(dir, name)
	if err := classfiletest.WriteJar(path, entries); err != nil {
		t.Fatal(err)
	}
	return path
}

// projectClasses lays out a small compiled project referencing com/foo/Bar
// and com/lib/Service.
func projectClasses(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	app := classfiletest.New("com/example/App", "java/lang/Object")
	app.Field("bar", "Lcom/foo/Bar;")
	writeClass(t, root, "com/example/App", app)

	svc := classfiletest.New("com/example/internal/Impl", "java/lang/Object", "com/lib/Service")
	writeClass(t, root, "com/example/internal/Impl", svc)

	return root
}

func TestBuildIndex(t *testing.T) {
	root := projectClasses(t)
	if err := os.WriteFile(filepath.Join(root, "app.properties"), []byte("k=v"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := BuildIndex(context.Background(), root, IndexOptions{})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if res.Missing {
		t.Error("Missing = true")
	}
	if res.Units != 2 {
		t.Errorf("Units = %d, want 2", res.Units)
	}
	want := []string{"com/foo/Bar", "com/lib/Service"}
	if got := res.Types.Sorted(); !slices.Equal(got, want) {
		t.Errorf("types = %v, want %v", got, want)
	}
}

func TestBuildIndex_MissingRoot(t *testing.T) {
	res, err := BuildIndex(context.Background(), filepath.Join(t.TempDir(), "nope"), IndexOptions{})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if !res.Missing {
		t.Error("Missing = false")
	}
	if res.Types.Len() != 0 {
		t.Errorf("types = %v, want none", res.Types.Sorted())
	}
}

func TestBuildIndex_SkipsMalformedUnits(t *testing.T) {
	root := projectClasses(t)
	bad := filepath.Join(root, "com", "example", "Broken.class")
	if err := os.WriteFile(bad, []byte{0xCA, 0xFE, 0xBA, 0xBE, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := BuildIndex(context.Background(), root, IndexOptions{})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Path != bad {
		t.Fatalf("Skipped = %+v", res.Skipped)
	}
	if err := res.Skipped[0].Err; !errors.Is(err, errors.ErrCodeDecode) || !stderrors.Is(err, classfile.ErrMalformed) {
		t.Errorf("skip error = %v", err)
	}
	if !res.Types.Contains("com/foo/Bar") || !res.Types.Contains("com/lib/Service") {
		t.Errorf("other units lost: %v", res.Types.Sorted())
	}
}

func TestBuildIndex_OrderIndependent(t *testing.T) {
	root := t.TempDir()
	for i, ref := range []string{"com/a/A", "com/b/B", "com/c/C", "com/d/D", "com/e/E", "com/f/F"} {
		b := classfiletest.New("com/example/U"+string(rune('0'+i)), "java/lang/Object")
		b.Method("use", "(L"+ref+";)V")
		writeClass(t, root, "com/example/U"+string(rune('0'+i)), b)
	}

	seq, err := BuildIndex(context.Background(), root, IndexOptions{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{2, 4, 16} {
		par, err := BuildIndex(context.Background(), root, IndexOptions{Workers: workers})
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(seq.Types.Sorted(), par.Types.Sorted()) {
			t.Errorf("workers=%d: %v != %v", workers, par.Types.Sorted(), seq.Types.Sorted())
		}
	}
}

func TestBuildIndex_Cancelled(t *testing.T) {
	root := projectClasses(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildIndex(ctx, root, IndexOptions{}); !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestZipLister(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib-1.0.jar")
	err := classfiletest.WriteJar(path, map[string][]byte{
		"com/lib/Api.class":                      {0},
		"com/lib/impl/ApiImpl.class":             {0},
		"com/lib/messages.properties":            {0},
		"META-INF/versions/11/com/lib/Api.class": {0},
		"META-INF/MANIFEST.MF":                   {0},
		"com/lib/":                               nil,
	})
	if err != nil {
		t.Fatal(err)
	}

	types, err := ZipLister{}.ListTypes(path)
	if err != nil {
		t.Fatalf("ListTypes: %v", err)
	}
	want := []string{"com/lib/Api", "com/lib/impl/ApiImpl"}
	if got := types.Sorted(); !slices.Equal(got, want) {
		t.Errorf("types = %v, want %v", got, want)
	}
}

func TestZipLister_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jar")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (ZipLister{}).ListTypes(path); !errors.Is(err, errors.ErrCodeArchiveRead) {
		t.Errorf("err = %v, want ARCHIVE_READ_ERROR", err)
	}
}

type countingLister struct {
	calls int
	types classfile.TypeSet
	err   error
}

func (l *countingLister) ListTypes(string) (classfile.TypeSet, error) {
	l.calls++
	return l.types, l.err
}

func TestCachedLister(t *testing.T) {
	inner := &countingLister{types: classfile.NewTypeSet("com/a/A")}
	c, err := NewCachedLister(inner, 2)
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if _, err := c.ListTypes("/x.jar"); err != nil {
			t.Fatal(err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if hits, misses := c.Stats(); hits != 2 || misses != 1 {
		t.Errorf("Stats() = %d, %d", hits, misses)
	}

	failing := &countingLister{err: errors.New(errors.ErrCodeArchiveRead, "boom")}
	c, _ = NewCachedLister(failing, 0)
	c.ListTypes("/y.jar")
	c.ListTypes("/y.jar")
	if failing.calls != 2 {
		t.Errorf("errors were cached: calls = %d", failing.calls)
	}
}

func TestClassify_Scenario(t *testing.T) {
	dir := t.TempDir()
	x := writeJar(t, dir, "x-1.0.jar", "com/foo/Bar")
	y := writeJar(t, dir, "y-1.0.jar", "com/baz/Qux")

	c := NewClassifier(NewUsedTypes("com/foo/Bar"), nil)

	if v := c.Classify(x); !v.Used || v.Reason != ReasonReferenced || v.Evidence != "com/foo/Bar" {
		t.Errorf("Classify(X) = %+v, want used by com/foo/Bar", v)
	}
	if v := c.Classify(y); v.Used || v.Reason != ReasonUnreferenced {
		t.Errorf("Classify(Y) = %+v, want unused", v)
	}
}

func TestClassify_FailOpen(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt-1.0.jar")
	if err := os.WriteFile(corrupt, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	notJar := filepath.Join(dir, "lib-1.0.pom")
	if err := os.WriteFile(notJar, []byte("<project/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	lombok := writeJar(t, dir, "lombok-1.18.30.jar", "lombok/Getter")
	jetbrains := writeJar(t, dir, "annotations-24.0.1.jar", "org/jetbrains/annotations/NotNull")
	upper := writeJar(t, dir, "Lombok-Extra-1.0.jar", "lombok/extra/X")

	c := NewClassifier(NewUsedTypes("com/unrelated/Type"), nil)

	tests := []struct {
		name   string
		path   string
		reason Reason
	}{
		{"missing", filepath.Join(dir, "gone-1.0.jar"), ReasonMissing},
		{"wrong extension", notJar, ReasonNotArchive},
		{"lombok", lombok, ReasonAllowListed},
		{"annotations", jetbrains, ReasonAllowListed},
		{"case insensitive", upper, ReasonAllowListed},
		{"corrupt", corrupt, ReasonArchiveError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Classify(tt.path)
			if !v.Used {
				t.Errorf("Classify(%s) = unused, want used", tt.path)
			}
			if v.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", v.Reason, tt.reason)
			}
			if tt.reason == ReasonArchiveError && !errors.Is(v.Err, errors.ErrCodeArchiveRead) {
				t.Errorf("Err = %v, want ARCHIVE_READ_ERROR", v.Err)
			}
		})
	}
}

func TestClassify_CustomAllowList(t *testing.T) {
	dir := t.TempDir()
	jar := writeJar(t, dir, "checker-qual-3.0.jar", "org/checkerframework/Q")

	c := NewClassifier(NewUsedTypes(), nil)
	if v := c.Classify(jar); v.Used {
		t.Fatalf("default allow-list matched %s", jar)
	}
	c.AllowList = append(slices.Clone(DefaultAllowList), "checker-qual")
	if v := c.Classify(jar); !v.Used || v.Evidence != "checker-qual" {
		t.Errorf("Classify = %+v, want allow-listed", v)
	}
}

func TestClassify_ListerError(t *testing.T) {
	dir := t.TempDir()
	jar := writeJar(t, dir, "lib-1.0.jar", "com/lib/A")
	c := NewClassifier(NewUsedTypes("com/lib/A"), nil)
	c.Lister = &countingLister{err: stderrors.New("disk on fire")}

	v := c.Classify(jar)
	if !v.Used || v.Reason != ReasonArchiveError {
		t.Fatalf("Classify = %+v", v)
	}
	if !errors.Is(v.Err, errors.ErrCodeArchiveRead) {
		t.Errorf("Err = %v, want wrapped ARCHIVE_READ_ERROR", v.Err)
	}
}

func TestPersistentLister(t *testing.T) {
	dir := t.TempDir()
	jar := writeJar(t, dir, "lib-1.0.jar", "com/lib/Api")
	store, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}

	first := NewPersistentLister(ZipLister{}, store, 0, nil)
	types, err := first.ListTypes(jar)
	if err != nil || !types.Contains("com/lib/Api") {
		t.Fatalf("ListTypes = %v, %v", types.Sorted(), err)
	}
	if first.Hits() != 0 {
		t.Errorf("hits on a cold cache = %d", first.Hits())
	}

	inner := &countingLister{types: classfile.NewTypeSet("wrong/Answer")}
	second := NewPersistentLister(inner, store, 0, nil)
	types, err = second.ListTypes(jar)
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 0 || second.Hits() != 1 || !types.Contains("com/lib/Api") {
		t.Errorf("warm listing: calls=%d hits=%d types=%v", inner.calls, second.Hits(), types.Sorted())
	}
}

func TestPersistentLister_Errors(t *testing.T) {
	failing := &countingLister{err: errors.New(errors.ErrCodeArchiveRead, "boom")}
	p := NewPersistentLister(failing, cache.NewNullCache(), 0, nil)

	missing := filepath.Join(t.TempDir(), "absent.jar")
	if _, err := p.ListTypes(missing); !errors.Is(err, errors.ErrCodeArchiveRead) {
		t.Errorf("err = %v", err)
	}

	jar := writeJar(t, t.TempDir(), "a.jar", "a/A")
	p.ListTypes(jar)
	p.ListTypes(jar)
	if failing.calls != 3 {
		t.Errorf("calls = %d, want every failure passed through", failing.calls)
	}
}
