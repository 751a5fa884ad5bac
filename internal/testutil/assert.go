package testutil

import (
	"strings"
	"testing"
)

// AssertFileExists fails the test if the file does not exist.
func (w *TestWorkspace) AssertFileExists(relPath string) {
	w.t.Helper()
	if !w.FileExists(relPath) {
		w.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain the substring.
func (w *TestWorkspace) AssertFileContains(relPath, substr string) {
	w.t.Helper()
	content := w.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		w.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertHasWarning fails the test if no warning contains substr.
func (r *CLIResult) AssertHasWarning(t *testing.T, substr string) {
	t.Helper()
	for _, w := range r.Warnings {
		if strings.Contains(w.Message, substr) {
			return
		}
	}
	t.Errorf("expected a warning containing %q, got %+v", substr, r.Warnings)
}

// AssertNoWarnings fails the test if any warnings are present.
func (r *CLIResult) AssertNoWarnings(t *testing.T) {
	t.Helper()
	if len(r.Warnings) > 0 {
		t.Errorf("expected no warnings, got %+v", r.Warnings)
	}
}

// AssertCount fails the test unless meta.count equals expected.
func (r *CLIResult) AssertCount(t *testing.T, expected int) {
	t.Helper()
	got := 0
	if r.Meta != nil {
		got = r.Meta.Count
	}
	if got != expected {
		t.Errorf("expected count %d, got %d\nRaw output: %s", expected, got, r.RawJSON)
	}
}
