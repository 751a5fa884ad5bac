// Package notebook extracts GLIF cells from markdown documents.
package notebook

import (
	"fmt"
	"path/filepath"
	"strings"

	goslug "github.com/gosimple/slug"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Language is the fence info string that marks a GLIF cell.
const Language = "glif"

// Cell is one ```glif fenced block.
type Cell struct {
	Index   int    // 0-based among GLIF cells
	Line    int    // 1-indexed line of the first source line
	Heading string // closest heading above the cell
	Title   string // rest of the info string after the language
	Source  string
}

// Extract returns the GLIF cells of a markdown document in order.
func Extract(content string) []Cell {
	src := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	lineStarts := computeLineStarts(content)

	var (
		cells   []Cell
		heading string
	)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			heading = headingText(node, src)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			lang, title := splitInfo(node, src)
			if lang != Language {
				return ast.WalkSkipChildren, nil
			}
			var b strings.Builder
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			line := 0
			if lines.Len() > 0 {
				line = offsetToLine(lineStarts, lines.At(0).Start) + 1
			}
			cells = append(cells, Cell{
				Index:   len(cells),
				Line:    line,
				Heading: heading,
				Title:   title,
				Source:  b.String(),
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return cells
}

func splitInfo(node *ast.FencedCodeBlock, src []byte) (lang, title string) {
	if node.Info == nil {
		return "", ""
	}
	info := strings.TrimSpace(string(node.Info.Segment.Value(src)))
	lang, title, _ = strings.Cut(info, " ")
	return lang, strings.TrimSpace(title)
}

func headingText(h *ast.Heading, src []byte) string {
	var b strings.Builder
	for child := h.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
		}
	}
	return strings.TrimSpace(b.String())
}

// Name is a file name for the cell's output: NN-<slug>.txt, with the slug
// taken from the title, the heading, or the first source line.
func (c Cell) Name() string {
	label := c.Title
	if label == "" {
		label = c.Heading
	}
	if label == "" {
		label, _, _ = strings.Cut(strings.TrimSpace(c.Source), "\n")
	}
	s := goslug.Make(label)
	if s == "" {
		s = "cell"
	}
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}
	return fmt.Sprintf("%02d-%s.txt", c.Index+1, s)
}

// OutputPath joins dir and the cell's output name.
func (c Cell) OutputPath(dir string) string {
	return filepath.Join(dir, c.Name())
}

func computeLineStarts(content string) []int {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func offsetToLine(starts []int, offset int) int {
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
