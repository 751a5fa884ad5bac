package command

import (
	"context"
	"fmt"

	"github.com/jfschaefer/GLIFcore/internal/cmdline"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

// Invocation is a validated command line: supplied or defaulted values,
// present boolean flags, and positional arguments.
type Invocation struct {
	Values   map[string]string
	Flags    map[string]bool
	MainArgs []string
	// Raw is the parsed command line the invocation was validated from.
	Raw *cmdline.BasicCommand
}

// Value returns the value of a value-taking argument by canonical name.
func (inv Invocation) Value(name string) string {
	return inv.Values[name]
}

// Flag reports whether a boolean flag was given.
func (inv Invocation) Flag(name string) bool {
	return inv.Flags[name]
}

// Command is a validated command bound to its handler.
type Command struct {
	typ    *Type
	inv    Invocation
	exec   ExecFunc
	apply  ApplyFunc
	seeded *items.Items
}

// Type returns the command's schema.
func (c *Command) Type() *Type {
	return c.typ
}

// Invocation returns the validated arguments.
func (c *Command) Invocation() Invocation {
	return c.inv
}

// Execute runs the command at the start of a pipeline.
func (c *Command) Execute(ctx context.Context) *items.Items {
	if c.seeded != nil {
		return c.applyTo(ctx, c.seeded)
	}
	if c.exec != nil {
		return c.exec(ctx, c.inv)
	}
	return items.Empty(fmt.Sprintf("no input was provided for command %s", c.typ.Name()))
}

// Apply runs the command on the items produced by the previous stage.
// Positional input, if any, wins over the piped items.
func (c *Command) Apply(ctx context.Context, in *items.Items) *items.Items {
	if c.seeded.Len() > 0 {
		return c.seeded.WithErrors(fmt.Sprintf("no input was expected for command %s (ignoring piped items)", c.typ.Name()))
	}
	return c.applyTo(ctx, in)
}

func (c *Command) applyTo(ctx context.Context, in *items.Items) *items.Items {
	if c.apply == nil {
		return in.WithErrors(fmt.Sprintf("no input was expected for command %s", c.typ.Name()))
	}
	return c.apply(ctx, c.inv, in)
}
