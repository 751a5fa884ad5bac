//go:build integration

package cli_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jfschaefer/GLIFcore/internal/testutil"
)

type exported struct {
	OK     bool `json:"ok"`
	Output *struct {
		Items []struct {
			Reprs  map[string]string `json:"reprs"`
			Errors []string          `json:"errors"`
		} `json:"items"`
	} `json:"output"`
	Log string `json:"log"`
}

func firstValue(t *testing.T, results []exported) string {
	t.Helper()
	if len(results) == 0 || results[0].Output == nil || len(results[0].Output.Items) == 0 {
		t.Fatalf("no items in %+v", results)
	}
	return results[0].Output.Items[0].Reprs["default"]
}

func TestIntegration_ExecHelp(t *testing.T) {
	w := testutil.NewTestWorkspace(t).Build()

	result := w.RunCLI("exec", "help").MustSucceed(t)
	result.AssertCount(t, 1)
	var results []exported
	result.DecodeData(t, &results)
	if got := firstValue(t, results); !strings.HasPrefix(got, "Currently available commands") {
		t.Fatalf("help = %q", got)
	}

	result = w.RunCLI("exec", "help", "construct").MustSucceed(t)
	result.DecodeData(t, &results)
	if got := firstValue(t, results); !strings.Contains(got, "Example calls") {
		t.Fatalf("help construct = %q", got)
	}
}

func TestIntegration_ExecUnknownCommand(t *testing.T) {
	w := testutil.NewTestWorkspace(t).Build()

	result := w.RunCLI("exec", "frobnicate").MustFail(t, "COMMAND_FAILED")
	if !strings.Contains(result.Error.Message, "frobnicate") {
		t.Fatalf("error = %q", result.Error.Message)
	}
}

func TestIntegration_ArchiveIsRemembered(t *testing.T) {
	w := testutil.NewTestWorkspace(t).Build()

	w.RunCLI("exec", `archive "demo/lessons" intro`).MustSucceed(t)
	w.AssertFileExists(filepath.Join(w.MathHub, "demo", "lessons", "source", "intro"))
	w.AssertFileContains(filepath.Join(filepath.Dir(w.Config), "state.toml"), `archive = "demo/lessons"`)

	result := w.RunCLI("exec", "status").MustSucceed(t)
	var results []exported
	result.DecodeData(t, &results)
	want := "Current working directory: " + filepath.Join(w.MathHub, "demo", "lessons", "source", "intro")
	if got := firstValue(t, results); !strings.HasPrefix(got, want) {
		t.Fatalf("status = %q, want prefix %q", got, want)
	}
}

func TestIntegration_CellFromStdin(t *testing.T) {
	w := testutil.NewTestWorkspace(t).Build()

	result := w.RunCLIWithStdin("help\n-- a comment\nhelp archive\n", "exec").MustSucceed(t)
	result.AssertCount(t, 2)
}

func TestIntegration_MMTCellWithoutMathHub(t *testing.T) {
	w := testutil.NewTestWorkspace(t).WithoutMathHub().Build()

	result := w.RunCLIWithStdin("theory T = \n", "exec", "--cell")
	if result.OK {
		t.Fatalf("expected failure, got %s", result.RawJSON)
	}
	var results []exported
	result.DecodeData(t, &results)
	if len(results) != 1 || !strings.Contains(results[0].Log, "No MMT archive selected") {
		t.Fatalf("results = %+v", results)
	}
}

func TestIntegration_RunNotebook(t *testing.T) {
	w := testutil.NewTestWorkspace(t).
		WithFile("notes.md", "# Commands\n\n```glif list\nhelp\n```\n\nSome prose.\n\n```python\nprint(1)\n```\n\n## Archives\n\n```glif\nhelp archive\n```\n").
		Build()

	result := w.RunCLI("run", "notes.md", "--out", "out").MustSucceed(t)
	result.AssertCount(t, 2)
	w.AssertFileContains(filepath.Join("out", "01-list.txt"), "Currently available commands")
	w.AssertFileContains(filepath.Join("out", "02-archives.txt"), "Switches to another MMT archive")
}

func TestIntegration_History(t *testing.T) {
	w := testutil.NewTestWorkspace(t).Build()

	w.RunCLI("exec", "help").MustSucceed(t)
	w.RunCLI("exec", "frobnicate")

	result := w.RunCLI("history").MustSucceed(t)
	result.AssertCount(t, 2)
	var entries []struct {
		Line string `json:"line"`
		OK   bool   `json:"ok"`
	}
	result.DecodeData(t, &entries)
	if entries[0].Line != "frobnicate" || entries[0].OK || entries[1].Line != "help" || !entries[1].OK {
		t.Fatalf("entries = %+v", entries)
	}

	w.RunCLI("history", "--grep", "help").MustSucceed(t).AssertCount(t, 1)
	w.RunCLI("history", "--clear").MustSucceed(t)
	w.RunCLI("history").MustSucceed(t).AssertCount(t, 0)
}

func TestIntegration_Config(t *testing.T) {
	w := testutil.NewTestWorkspace(t).Build()

	w.RunCLI("config", "set", "ui.accent=39", "default_archive=demo/main").MustSucceed(t)
	w.AssertFileContains(w.Config, `default_archive = "demo/main"`)
	w.RunCLI("config", "set", "startup_timeout=soon").MustFail(t, "INVALID_INPUT")

	// The new default archive is created by the next session.
	w.RunCLI("exec", "help").MustSucceed(t)
	w.AssertFileExists(filepath.Join(w.MathHub, "demo", "main", "META-INF", "MANIFEST.MF"))
}
