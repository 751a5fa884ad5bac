package elpi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jfschaefer/GLIFcore/internal/items"
)

// EndOfItems terminates an encoded item stream.
const EndOfItems = "glif.endofitems."

// EncodeItems serializes a batch for the glif ELPI module, one fact per item:
//
//	glif.mkItem <index> <original id> <sentence> <ast> <elpi term>.
//
// Missing parts are glif.none. ASTs are only sent when withAST is set.
func EncodeItems(b *items.Items, withAST bool) string {
	lines := make([]string, 0, b.Len()+1)
	for idx, it := range b.List {
		var sb strings.Builder
		fmt.Fprintf(&sb, "glif.mkItem %d %d", idx, it.OriginalID)
		if s, ok := it.Get(items.ReprSentence); ok {
			sb.WriteString(" (glif.some " + quote(s) + ")")
		} else {
			sb.WriteString(" glif.none")
		}
		var ast string
		hasAST := false
		if withAST {
			ast, hasAST = it.Get(items.ReprAST)
		}
		writeTerm(&sb, ast, hasAST)
		term, hasTerm := it.Get(items.ReprLogicELPI)
		writeTerm(&sb, term, hasTerm)
		sb.WriteString(".")
		lines = append(lines, sb.String())
	}
	lines = append(lines, EndOfItems)
	return strings.Join(lines, "\n")
}

func writeTerm(sb *strings.Builder, term string, ok bool) {
	if !ok {
		sb.WriteString(" glif.none")
		return
	}
	sb.WriteString(" (glif.some " + term + ")")
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

const filterPrefix = "filter-output:"

// ParseFilterOutput reads the indices printed by glif.filter. Other
// non-empty lines are returned as messages.
func ParseFilterOutput(stdout string) (keep []int, messages []string, err error) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, filterPrefix):
			n, convErr := strconv.Atoi(strings.TrimSpace(line[len(filterPrefix):]))
			if convErr != nil {
				return nil, nil, fmt.Errorf("malformed filter output %q", line)
			}
			keep = append(keep, n)
		case line != "":
			messages = append(messages, line)
		}
	}
	return keep, messages, nil
}
