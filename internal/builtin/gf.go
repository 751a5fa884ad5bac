package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/golang-lru/v2"

	"github.com/jfschaefer/GLIFcore/internal/cmdline"
	"github.com/jfschaefer/GLIFcore/internal/command"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

// gfCommand describes a grammar shell command GLIF forwards. hasInput is
// false for generators, which never read items.
type gfCommand struct {
	names    []string
	input    items.Repr
	hasInput bool
	output   items.Repr
}

var gfCommands = []gfCommand{
	{names: []string{"parse", "p"}, input: items.ReprSentence, hasInput: true, output: items.ReprAST},
	{names: []string{"put_string", "ps"}, input: items.ReprSentence, hasInput: true, output: items.ReprSentence},
	{names: []string{"put_tree", "pt"}, input: items.ReprAST, hasInput: true, output: items.ReprAST},
	{names: []string{"linearize", "l"}, input: items.ReprAST, hasInput: true, output: items.ReprSentence},
	{names: []string{"visualize_tree", "vt"}, input: items.ReprAST, hasInput: true, output: items.ReprGraphDot},
	{names: []string{"visualize_parse", "vp"}, input: items.ReprAST, hasInput: true, output: items.ReprGraphDot},
	{names: []string{"generate_random", "gr"}, output: items.ReprAST},
	{names: []string{"generate_trees", "gt"}, output: items.ReprAST},
}

const helpCacheSize = 64

// gfHelp asks the grammar shell for "help <name>" once per command.
type gfHelp struct {
	env   Env
	cache *lru.Cache[string, string]
}

func newGFHelp(env Env) *gfHelp {
	cache, err := lru.New[string, string](helpCacheSize)
	if err != nil {
		panic(err)
	}
	return &gfHelp{env: env, cache: cache}
}

func (h *gfHelp) provider(name string) command.HelpFunc {
	return func(ctx context.Context) (string, error) {
		if text, ok := h.cache.Get(name); ok {
			return text, nil
		}
		shell, err := h.env.GF(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to get GF shell: %w", err)
		}
		text, err := shell.HandleCommand(ctx, "help "+name)
		if err != nil {
			return "", err
		}
		h.cache.Add(name, text)
		return text, nil
	}
}

func gfTypes(env Env, help *gfHelp) []*command.Type {
	types := make([]*command.Type, 0, len(gfCommands))
	for _, gc := range gfCommands {
		t := command.Type{
			Names:        gc.names,
			MaxArgs:      command.Unbounded,
			ForwardFlags: true,
			Input:        gc.input,
			Help:         help.provider(gc.names[0]),
		}
		// Trees contain spaces and parentheses, so they stay one argument.
		if gc.hasInput && gc.input == items.ReprAST {
			t.Split = cmdline.KeepTogether
		}
		if gc.hasInput {
			t.Handler = command.PerItem(func(ctx context.Context, inv command.Invocation, it *items.Item) *items.Items {
				return runGF(ctx, env, gc, inv, it)
			})
		} else {
			t.Handler = command.ExecuteOnly(func(ctx context.Context, inv command.Invocation) *items.Items {
				return runGF(ctx, env, gc, inv, nil)
			})
		}
		types = append(types, command.Define(t))
	}
	return types
}

// runGF sends the command to the grammar shell, once per item or once
// standalone. Each output line becomes an item; graphs stay whole.
func runGF(ctx context.Context, env Env, gc gfCommand, inv command.Invocation, it *items.Item) *items.Items {
	shell, err := env.GF(ctx)
	if err != nil {
		return failedOn(it, err.Error())
	}

	var line string
	if it != nil {
		value := it.Resolve(gc.input)
		line = inv.Raw.GFFormat(value, gc.input != items.ReprAST)
	} else {
		line = inv.Raw.GFFormat("", false)
	}
	output, err := shell.HandleCommand(ctx, line)
	if err != nil {
		return failedOn(it, err.Error())
	}

	values := splitGFOutput(output, gc.output)
	if it == nil {
		return items.FromValues(gc.output, values)
	}
	result := items.Empty()
	for _, v := range values {
		result.List = append(result.List, it.Clone().WithRepr(gc.output, v))
	}
	return result
}

func splitGFOutput(output string, out items.Repr) []string {
	if out == items.ReprGraphDot {
		return []string{output}
	}
	var values []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			values = append(values, line)
		}
	}
	return values
}

// failedOn drops it from the batch but keeps its errors, followed by errs.
func failedOn(it *items.Item, errs ...string) *items.Items {
	var all []string
	if it != nil {
		all = append(all, it.Errors...)
	}
	return items.Empty(append(all, errs...)...)
}
