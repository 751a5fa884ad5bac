package dispatch

import (
	"fmt"
	"strings"
	"unicode"
)

// FileKind classifies a cell that holds source code rather than commands.
type FileKind string

const (
	FileMMTTheory       FileKind = "mmt-theory"
	FileMMTView         FileKind = "mmt-view"
	FileMMT             FileKind = "mmt"
	FileGFAbstract      FileKind = "gf-abstract"
	FileGFConcrete      FileKind = "gf-concrete"
	FileGFResource      FileKind = "gf-resource"
	FileGFInterface     FileKind = "gf-interface"
	FileGFInstance      FileKind = "gf-instance"
	FileGFIncomplete    FileKind = "gf-incomplete concrete"
	FileGF              FileKind = "gf"
	FileELPI            FileKind = "elpi"
	FileELPINoTypecheck FileKind = "elpi-notc"
	FileLexicon         FileKind = "lex"
)

// Extension returns the file extension for the kind ("mmt", "gf", "elpi", "lex").
func (k FileKind) Extension() string {
	ext, _, _ := strings.Cut(string(k), "-")
	return ext
}

// FileCell is a cell that defines a source file.
type FileCell struct {
	Kind    FileKind
	Name    string
	Content string
}

// Keywords in match order. Prefix markers ("mmt:") strip themselves and the
// name from the content; declaration keywords keep the whole cell.
var fileKeywords = []struct {
	prefix string
	kind   FileKind
}{
	{"theory", FileMMTTheory},
	{"view", FileMMTView},
	{"abstract", FileGFAbstract},
	{"concrete", FileGFConcrete},
	{"resource", FileGFResource},
	{"interface", FileGFInterface},
	{"instance", FileGFInstance},
	{"incomplete concrete", FileGFIncomplete},
	{"mmt:", FileMMT},
	{"elpi:", FileELPI},
	{"elpi-notc:", FileELPINoTypecheck},
	{"gf:", FileGF},
	{"MMT:", FileMMT},
	{"ELPI:", FileELPI},
	{"ELPI-NOTC:", FileELPINoTypecheck},
	{"GF:", FileGF},
	{"kind", FileELPI},
	{"type", FileELPI},
	{"Lexicon", FileLexicon},
}

// IdentifyFile reports whether text is a source file cell. Leading
// whitespace and comments of every supported language are skipped before
// looking for a declaration keyword.
func IdentifyFile(text string) (FileCell, bool, error) {
	i := 0
	for {
		if i < 0 || i >= len(text) {
			return FileCell{}, false, nil
		}
		switch {
		case text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r':
			i++
		case strings.HasPrefix(text[i:], "//"):
			i = skipPast(text, i, "❚")
		case strings.HasPrefix(text[i:], "--"):
			i = skipPast(text, i, "\n")
		case strings.HasPrefix(text[i:], "{-"):
			i = skipPast(text, i, "-}")
		case strings.HasPrefix(text[i:], "%"):
			i = skipPast(text, i, "\n")
		case strings.HasPrefix(text[i:], "/*"):
			i = skipPast(text, i, "*/")
		case strings.HasPrefix(text[i:], "namespace"):
			i = skipPast(text, i, "❚")
		case strings.HasPrefix(text[i:], "#"):
			i = skipPast(text, i, "\n")
		default:
			return matchKeyword(text, i)
		}
	}
}

func matchKeyword(text string, i int) (FileCell, bool, error) {
	for _, kw := range fileKeywords {
		if !strings.HasPrefix(text[i:], kw.prefix) {
			continue
		}
		after := strings.TrimSpace(text[i+len(kw.prefix):])
		name := leadingIdent(after)
		if name == "" {
			return FileCell{}, false, fmt.Errorf("expected identifier after %q", kw.prefix)
		}
		content := text
		if strings.HasSuffix(kw.prefix, ":") {
			content = after[len(name):]
		}
		return FileCell{Kind: kw.kind, Name: name, Content: content}, true, nil
	}
	return FileCell{}, false, nil
}

func leadingIdent(s string) string {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return s[:i]
	}
	return s
}

// skipPast returns the index after the next occurrence of marker, or -1.
func skipPast(text string, i int, marker string) int {
	j := strings.Index(text[i+1:], marker)
	if j < 0 {
		return -1
	}
	return i + 1 + j + len(marker)
}
