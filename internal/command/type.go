package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfschaefer/GLIFcore/internal/cmdline"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

// Unbounded is the MaxArgs value for commands without an upper arity bound.
const Unbounded = -1

// HelpFunc produces help text at runtime, e.g. by asking an engine.
type HelpFunc func(ctx context.Context) (string, error)

// Type is the schema of one command. Define it with a struct literal and
// register it through Define; it must not be modified afterwards.
type Type struct {
	Names       []string // First name is canonical; the rest are aliases
	Description string
	Args        []Arg
	MinArgs     int
	MaxArgs     int // Unbounded for no limit
	Split       cmdline.SplitMode
	// Input is the representation the command reads from items.
	Input items.Repr
	// MainArgsAsItems turns positional arguments into the input batch.
	MainArgsAsItems bool
	// ForwardFlags accepts any flag unchecked, for commands that hand their
	// flags on to an engine. Args is then only documentation.
	ForwardFlags bool
	Examples        []string
	Handler         Handler
	// Help replaces the generated long description when set.
	Help HelpFunc

	byName   map[string]*Arg
	longDesc string
}

// Define validates the schema, builds its lookup tables and returns it.
// It panics on a malformed schema.
func Define(t Type) *Type {
	if len(t.Names) == 0 {
		panic("command: type without names")
	}
	if t.Handler.shape == 0 {
		panic(fmt.Sprintf("command: %s has no handler", t.Names[0]))
	}
	if t.MaxArgs != Unbounded && t.MaxArgs < t.MinArgs {
		panic(fmt.Sprintf("command: %s has MaxArgs < MinArgs", t.Names[0]))
	}
	t.Args = append([]Arg(nil), t.Args...)
	t.byName = make(map[string]*Arg)
	for i := range t.Args {
		a := &t.Args[i]
		if len(a.Names) == 0 {
			panic(fmt.Sprintf("command: %s declares an argument without names", t.Names[0]))
		}
		if a.Default != "" && a.Default != DefaultFromContext && !a.allows(a.Default) {
			panic(fmt.Sprintf("command: %s: default %q of -%s is not an allowed value", t.Names[0], a.Default, a.Name()))
		}
		for _, n := range a.Names {
			if _, dup := t.byName[n]; dup {
				panic(fmt.Sprintf("command: %s declares -%s twice", t.Names[0], n))
			}
			t.byName[n] = a
		}
	}
	t.longDesc = t.buildLongDescription()
	return &t
}

// Name returns the canonical name.
func (t *Type) Name() string {
	return t.Names[0]
}

// Validate checks cmd against the schema and fills in defaults.
// Errors are *ValidationError.
func (t *Type) Validate(cmd *cmdline.BasicCommand) (Invocation, error) {
	inv := Invocation{
		Values:   make(map[string]string),
		Flags:    make(map[string]bool),
		MainArgs: append([]string(nil), cmd.MainArgs...),
		Raw:      cmd,
	}

	for _, a := range cmd.Args {
		if t.ForwardFlags {
			if a.HasValue {
				inv.Values[a.Key] = a.Value
			} else {
				inv.Flags[a.Key] = true
			}
			continue
		}
		decl, ok := t.byName[a.Key]
		if !ok {
			return Invocation{}, invalid(cmd.Name, "invalid argument %q for command %q", a.Key, cmd.Name)
		}
		if a.HasValue && !decl.TakesValue {
			return Invocation{}, invalid(cmd.Name, "argument %q must not have a value for command %q", a.Key, cmd.Name)
		}
		if !a.HasValue && decl.TakesValue {
			return Invocation{}, invalid(cmd.Name, "argument %q must have a value for command %q", a.Key, cmd.Name)
		}
		if a.HasValue && !decl.allows(a.Value) {
			return Invocation{}, invalid(cmd.Name, "invalid value %q for argument %q for command %q (allowed: %s)",
				a.Value, a.Key, cmd.Name, strings.Join(decl.sortedAllowed(), ", "))
		}
		canonical := decl.Name()
		_, seenValue := inv.Values[canonical]
		if seenValue || inv.Flags[canonical] {
			return Invocation{}, invalid(cmd.Name, "argument %q supplied twice for command %q", canonical, cmd.Name)
		}
		if decl.TakesValue {
			inv.Values[canonical] = a.Value
		} else {
			inv.Flags[canonical] = true
		}
	}

	n := len(cmd.MainArgs)
	if n < t.MinArgs {
		return Invocation{}, invalid(cmd.Name, "command %q requires at least %d arguments (found %d)", cmd.Name, t.MinArgs, n)
	}
	if t.MaxArgs != Unbounded && n > t.MaxArgs {
		return Invocation{}, invalid(cmd.Name, "command %q can have at most %d arguments (found %d)", cmd.Name, t.MaxArgs, n)
	}

	for i := range t.Args {
		decl := &t.Args[i]
		if !decl.TakesValue || t.ForwardFlags {
			continue
		}
		if _, ok := inv.Values[decl.Name()]; ok {
			continue
		}
		if decl.Mandatory() {
			return Invocation{}, invalid(cmd.Name, "command %q requires argument %q", cmd.Name, decl.Name())
		}
		inv.Values[decl.Name()] = decl.Default
	}
	return inv, nil
}

// Bind validates cmd and turns it into a runnable Command.
func (t *Type) Bind(cmd *cmdline.BasicCommand) (*Command, error) {
	inv, err := t.Validate(cmd)
	if err != nil {
		return nil, err
	}
	c := &Command{typ: t, inv: inv, exec: t.Handler.exec, apply: t.Handler.apply}
	switch {
	case t.MainArgsAsItems:
		c.seeded = items.FromValues(t.Input, inv.MainArgs)
	case t.Handler.shape == ShapePerItem && len(inv.MainArgs) > 0:
		c.seeded = items.FromValues(t.Input, inv.MainArgs)
	}
	return c, nil
}

// Parse parses the leading pipe segment of input with the type's split mode
// and binds it. rest is the text after the pipe.
func (t *Type) Parse(input string) (*Command, string, error) {
	bc, rest, err := cmdline.Parse(input, t.Split)
	if err != nil {
		return nil, "", err
	}
	c, err := t.Bind(bc)
	if err != nil {
		return nil, "", err
	}
	return c, rest, nil
}

// LongDescription returns the help text for the command.
func (t *Type) LongDescription(ctx context.Context) string {
	if t.Help != nil {
		text, err := t.Help(ctx)
		if err != nil {
			return fmt.Sprintf("Failed to get help for %s\nError: %v", t.Name(), err)
		}
		return text
	}
	return t.longDesc
}

func (t *Type) buildLongDescription() string {
	var sb strings.Builder
	desc := t.Description
	if desc == "" {
		desc = "No description provided"
	}
	sb.WriteString(desc)
	sb.WriteString("\n\nFlags:\n")
	if len(t.Args) == 0 {
		sb.WriteString("    None")
	}
	for i, a := range t.Args {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(indent(a.String(), 4))
	}
	sb.WriteString("\n\nExample calls:\n")
	if len(t.Examples) == 0 {
		sb.WriteString("    None")
	}
	for i, ex := range t.Examples {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(indent(ex, 4))
	}
	return sb.String()
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
