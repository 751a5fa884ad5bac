package items

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestExport(t *testing.T) {
	it := New(3).WithRepr(ReprAST, "(barks dog)")
	it.Errors = append(it.Errors, "warn")
	b := NewItems(it).WithErrors("batch")

	got := b.Export()
	if len(got.Items) != 1 || got.Errors[0] != "batch" {
		t.Fatalf("Export() = %+v", got)
	}
	e := got.Items[0]
	if e.OriginalID != 3 || e.Reprs["ast"] != "(barks dog)" || e.Reprs["default"] != "(barks dog)" {
		t.Fatalf("item = %+v", e)
	}

	// The export is a copy.
	e.Errors[0] = "changed"
	if it.Errors[0] != "warn" {
		t.Fatal("export shares the errors slice")
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"original_id":3`) {
		t.Fatalf("json = %s", data)
	}
}

func TestExportReportsMissingDefault(t *testing.T) {
	it := New(4).WithRepr(ReprGraphDot, "digraph {}", KeepDefault())
	e := it.Export()
	if len(e.Errors) != 1 || e.Errors[0] != "item 4 has no default representation" {
		t.Fatalf("errors = %q", e.Errors)
	}
	if len(it.Errors) != 0 {
		t.Fatal("export must not change the item")
	}

	if e := New(5).Export(); len(e.Errors) != 1 || e.Errors[0] != "item 5 has no content" {
		t.Fatalf("empty item errors = %q", e.Errors)
	}
	if e := New(6).WithRepr(ReprAST, "t").Export(); len(e.Errors) != 0 {
		t.Fatalf("valid item errors = %q", e.Errors)
	}
}
