package notebook

import (
	"path/filepath"
	"testing"
)

const doc = "# Grammar tests\n" +
	"\n" +
	"Some prose.\n" +
	"\n" +
	"```glif\n" +
	"parse \"every dog barks\"\n" +
	"```\n" +
	"\n" +
	"```go\n" +
	"fmt.Println(\"not glif\")\n" +
	"```\n" +
	"\n" +
	"## Semantics\n" +
	"\n" +
	"```glif Construct all\n" +
	"parse \"every dog barks\" |\n" +
	"  construct\n" +
	"```\n"

func TestExtract(t *testing.T) {
	cells := Extract(doc)
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}

	first := cells[0]
	if first.Index != 0 || first.Heading != "Grammar tests" || first.Title != "" {
		t.Errorf("first cell = %+v", first)
	}
	if first.Source != "parse \"every dog barks\"\n" {
		t.Errorf("first source = %q", first.Source)
	}
	if first.Line != 6 {
		t.Errorf("first line = %d, want 6", first.Line)
	}

	second := cells[1]
	if second.Heading != "Semantics" || second.Title != "Construct all" {
		t.Errorf("second cell = %+v", second)
	}
	if second.Source != "parse \"every dog barks\" |\n  construct\n" {
		t.Errorf("second source = %q", second.Source)
	}
}

func TestExtractNoCells(t *testing.T) {
	if cells := Extract("just *text*\n\n    indented code\n"); len(cells) != 0 {
		t.Fatalf("expected no cells, got %+v", cells)
	}
}

func TestCellName(t *testing.T) {
	tests := []struct {
		cell Cell
		want string
	}{
		{Cell{Index: 0, Title: "Construct all"}, "01-construct-all.txt"},
		{Cell{Index: 1, Heading: "Grammar Tests"}, "02-grammar-tests.txt"},
		{Cell{Index: 9, Source: "help status\nhelp"}, "10-help-status.txt"},
		{Cell{Index: 2, Source: "|||"}, "03-cell.txt"},
	}
	for _, tt := range tests {
		if got := tt.cell.Name(); got != tt.want {
			t.Errorf("Name(%+v) = %q, want %q", tt.cell, got, tt.want)
		}
	}
	c := Cell{Index: 0, Title: "x"}
	if got := c.OutputPath("out"); got != filepath.Join("out", "01-x.txt") {
		t.Errorf("OutputPath = %q", got)
	}
}
