// Package command declares the schema of pipeline commands, validates parsed
// command lines against it and binds the result to a runnable Command.
package command

import (
	"sort"
	"strings"
)

// DefaultFromContext is a default value that handlers resolve from session
// state (default view, default ELPI file, theory name).
const DefaultFromContext = "$DEFAULT"

// Arg declares one flag a command accepts.
type Arg struct {
	Names       []string // Synonyms; the first is canonical (e.g. "lang", "l")
	Description string
	TakesValue  bool
	Allowed     []string // Allowed values; empty means any value
	Default     string   // Default value; a value-taking Arg without one is mandatory
}

// Name returns the canonical name.
func (a Arg) Name() string {
	return a.Names[0]
}

// Mandatory reports whether the user must supply this argument.
func (a Arg) Mandatory() bool {
	return a.TakesValue && a.Default == ""
}

func (a Arg) allows(value string) bool {
	if len(a.Allowed) == 0 {
		return true
	}
	for _, v := range a.Allowed {
		if v == value {
			return true
		}
	}
	return false
}

func (a Arg) sortedAllowed() []string {
	vals := append([]string(nil), a.Allowed...)
	sort.Strings(vals)
	return vals
}

// String renders the flag for help output.
func (a Arg) String() string {
	var sb strings.Builder
	for i, n := range a.Names {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString("-" + n)
	}
	if len(a.Allowed) > 0 {
		sb.WriteString("\n    Possible values: " + strings.Join(a.sortedAllowed(), ", "))
	}
	if a.Default != "" {
		def := a.Default
		if def == DefaultFromContext {
			def = "chosen from context"
		}
		sb.WriteString("\n    Default value: " + def)
	}
	sb.WriteString("\n    " + a.Description)
	return sb.String()
}
