// Package cmdline parses GLIF command lines into a command name, flags and
// main arguments.
//
// The grammar is deliberately small:
//
//	name [-flag | -flag=value | --flag ...] [main arguments] [| next command]
//
// Flag values and main arguments may be double-quoted; inside quotes only \"
// and \\ are escapes.
package cmdline

import (
	"strings"
)

// SplitMode controls how unquoted main-argument text is tokenized.
type SplitMode int

const (
	// SplitAtSpace turns every whitespace-separated word into its own main argument.
	SplitAtSpace SplitMode = iota
	// KeepTogether keeps unquoted text as one main argument, e.g. the
	// abstract syntax tree in "linearize s everyone (love someone)".
	KeepTogether
)

func (m SplitMode) String() string {
	if m == KeepTogether {
		return "keep-together"
	}
	return "split-at-space"
}

// Argument is a parsed flag. HasValue is false for boolean flags like -lang.
type Argument struct {
	Key      string
	Value    string
	HasValue bool
}

// Flag returns a boolean argument.
func Flag(key string) Argument {
	return Argument{Key: key}
}

// KeyValue returns a key-valued argument.
func KeyValue(key, value string) Argument {
	return Argument{Key: key, Value: value, HasValue: true}
}

// String formats the argument the way it would be typed.
func (a Argument) String() string {
	if !a.HasValue {
		return "-" + a.Key
	}
	return "-" + a.Key + "=" + FormatArgValue(a.Value)
}

// BasicCommand is the parser output for a single pipe segment.
type BasicCommand struct {
	Name     string
	Args     []Argument
	MainArgs []string
}

// ValueOr returns the value of the first argument whose key is in names,
// or def if none was supplied.
func (c *BasicCommand) ValueOr(names []string, def string) string {
	for _, a := range c.Args {
		for _, n := range names {
			if a.Key == n && a.HasValue {
				return a.Value
			}
		}
	}
	return def
}

// GFFormat re-serializes the command for the grammar shell, optionally with
// mainArg appended. quote wraps mainArg in a string literal (sentences) rather
// than passing it verbatim (trees).
func (c *BasicCommand) GFFormat(mainArg string, quote bool) string {
	parts := make([]string, 0, len(c.Args)+2)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	if mainArg != "" {
		if quote {
			parts = append(parts, QuoteString(mainArg))
		} else {
			parts = append(parts, mainArg)
		}
	}
	return strings.Join(parts, " ")
}

// String formats the command so that parsing it in SplitAtSpace mode yields
// an equal command.
func (c *BasicCommand) String() string {
	parts := make([]string, 0, len(c.Args)+len(c.MainArgs)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	for _, m := range c.MainArgs {
		parts = append(parts, QuoteString(m))
	}
	return strings.Join(parts, " ")
}

// QuoteString wraps s in double quotes, escaping backslashes and quotes.
func QuoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// FormatArgValue leaves identifiers and alphanumeric values bare and quotes
// everything else.
func FormatArgValue(s string) string {
	if s != "" && (isIdentifier(s) || isAlnum(s)) {
		return s
	}
	return QuoteString(s)
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

func isAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isLetter(s[i]) && !isDigit(s[i]) {
			return false
		}
	}
	return s != ""
}
