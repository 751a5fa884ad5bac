package ui

import (
	"strings"
	"testing"

	"github.com/jfschaefer/GLIFcore/internal/items"
)

func TestFormatItemsSingle(t *testing.T) {
	b := items.FromValues(items.ReprDefault, []string{"every dog barks"})
	out, warnings := FormatItems(b, items.ReprDefault)
	if out != "every dog barks\n" {
		t.Fatalf("out = %q", out)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestFormatItemsNumberedWithWarnings(t *testing.T) {
	b := items.FromValues(items.ReprDefault, []string{"a", "b\nc"}).WithErrors("batch problem")
	b.List[1].Errors = append(b.List[1].Errors, "item problem")

	out, warnings := FormatItems(b, items.ReprAST)
	if !strings.Contains(out, "1.") || !strings.Contains(out, "2.") {
		t.Fatalf("expected numbered output, got %q", out)
	}
	if !strings.Contains(out, "b\n   c") {
		t.Fatalf("continuation lines should be indented: %q", out)
	}
	// batch error, then per item: fallback warning (+ item error).
	if len(warnings) != 4 || warnings[0] != "batch problem" || warnings[3] != "item problem" {
		t.Fatalf("warnings = %q", warnings)
	}
	if !strings.Contains(warnings[1], "falling back") {
		t.Fatalf("expected fallback warning, got %q", warnings[1])
	}
}

func TestFormatItemsNil(t *testing.T) {
	out, warnings := FormatItems(nil, items.ReprDefault)
	if out != "" || warnings != nil {
		t.Fatalf("FormatItems(nil) = %q, %v", out, warnings)
	}
}

func TestTable(t *testing.T) {
	out := Table([]string{"ID", "LINE"}, [][]string{{"1", "help"}, {"2", "status -lm"}}, 0)
	for _, want := range []string{"ID", "LINE", "help", "status -lm"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
