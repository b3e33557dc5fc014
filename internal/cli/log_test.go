package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// runLogged executes args against a fresh root command and returns what was
// logged, separately from the command output.
func runLogged(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	var logs, out bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	if strings.Contains(out.String(), "INFO") {
		t.Errorf("log lines leaked into command output:\n%s", out.String())
	}
	return logs.String()
}

func TestVisualizeLogsStage(t *testing.T) {
	dir, _ := testProject(t)
	tree := filepath.Join(dir, "target", "dependency-tree.txt")

	logs := runLogged(t, "visualize", tree, "-f", "dot", "-o", filepath.Join(t.TempDir(), "g.dot"))

	if !regexp.MustCompile(`visualize: Rendered dot \(\d+(\.\d+)?m?s\)`).MatchString(logs) {
		t.Errorf("missing stage line with command prefix:\n%s", logs)
	}
}

func TestVerboseFlag(t *testing.T) {
	dir, _ := testProject(t)
	tree := filepath.Join(dir, "target", "dependency-tree.txt")

	tests := []struct {
		name      string
		extra     []string
		wantDebug bool
	}{
		{"default", nil, false},
		{"long", []string{"--verbose"}, true},
		{"short", []string{"-v"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"visualize", tree, "-f", "dot", "-o", filepath.Join(t.TempDir(), "g.dot")}, tt.extra...)
			logs := runLogged(t, args...)
			if got := strings.Contains(logs, "graph loaded"); got != tt.wantDebug {
				t.Errorf("debug line logged = %v, want %v:\n%s", got, tt.wantDebug, logs)
			}
		})
	}
}

func TestRunPipelineLogsSummary(t *testing.T) {
	dir, repo := testProject(t)
	logs := runLogged(t, "unused", dir, "--repo", repo)

	if !strings.Contains(logs, "unused: Analyzed 5 nodes and 3 archives (") {
		t.Errorf("missing analysis summary:\n%s", logs)
	}
}

func TestLevelFor(t *testing.T) {
	if got := levelFor(false); got != log.InfoLevel {
		t.Errorf("levelFor(false) = %v", got)
	}
	if got := levelFor(true); got != log.DebugLevel {
		t.Errorf("levelFor(true) = %v", got)
	}
}

func TestCommandLogger(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger(&buf, log.InfoLevel)

	if l := commandLogger(base, &cobra.Command{Use: appName}); l != base {
		t.Error("root command should log without prefix")
	}
	if l := commandLogger(base, nil); l != base {
		t.Error("nil command should return base")
	}

	commandLogger(base, &cobra.Command{Use: "conflicts [project-dir]"}).Info("scanning")
	if !strings.Contains(buf.String(), "conflicts: scanning") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should fall back to log.Default")
	}

	l := newLogger(&bytes.Buffer{}, log.DebugLevel)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("stored logger not returned")
	}
}
