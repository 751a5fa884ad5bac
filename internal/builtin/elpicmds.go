package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfschaefer/GLIFcore/internal/command"
	"github.com/jfschaefer/GLIFcore/internal/engine/elpi"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

var (
	noTypecheckArg = command.Arg{Names: []string{"no-typechecking", "notc", "no-tc"}, Description: "Disable type checking"}
	elpiFileArg    = command.Arg{Names: []string{"file", "f"}, TakesValue: true, Default: command.DefaultFromContext, Description: "Elpi file"}
)

// elpiProgram resolves the -file argument against the session default.
func elpiProgram(env Env, inv command.Invocation, cmd string) (string, error) {
	file := inv.Value("file")
	if file == command.DefaultFromContext {
		file = env.DefaultELPI()
	}
	if file == "" {
		return "", fmt.Errorf("No ELPI file was specified for the %q command and no default file is available.", cmd)
	}
	if !strings.HasSuffix(file, ".elpi") {
		file += ".elpi"
	}
	return file, nil
}

func filterType(env Env) *command.Type {
	return command.Define(command.Type{
		Names:       []string{"filter"},
		Description: "Keeps the items an ELPI predicate accepts",
		Args: []command.Arg{
			noTypecheckArg,
			elpiFileArg,
			{Names: []string{"predicate", "p"}, TakesValue: true, Default: "filter", Description: "Filter predicate"},
		},
		MaxArgs:         command.Unbounded,
		Input:           items.ReprLogicELPI,
		MainArgsAsItems: true,
		Examples:        []string{"parse \"someone sleeps\" | construct | filter -p=consistent"},
		Handler: command.ApplyOnly(func(ctx context.Context, inv command.Invocation, in *items.Items) *items.Items {
			file, err := elpiProgram(env, inv, "filter")
			if err != nil {
				return items.Empty(err.Error())
			}
			runner, err := env.ELPI()
			if err != nil {
				return in.WithErrors(err.Error())
			}
			stdout, _, err := runner.Run(ctx, elpi.Query{
				Dir:       env.Cwd(),
				File:      file,
				Goal:      "glif.filter " + inv.Value("predicate"),
				Typecheck: !inv.Flag("no-typechecking"),
				Stdin:     elpi.EncodeItems(in, true),
			})
			if err != nil {
				return in.WithErrors(err.Error())
			}
			keep, messages, err := elpi.ParseFilterOutput(stdout)
			if err != nil {
				return in.WithErrors(err.Error())
			}
			out := &items.Items{Errors: in.Errors}
			for _, i := range keep {
				if i < 0 || i >= in.Len() {
					out.Errors = append(out.Errors, fmt.Sprintf("filter returned unknown item index %d", i))
					continue
				}
				out.List = append(out.List, in.List[i])
			}
			return out.WithErrors(messages...)
		}),
	})
}

func queryType(env Env) *command.Type {
	return command.Define(command.Type{
		Names:       []string{"query"},
		Description: "Runs an elpi query",
		Args: []command.Arg{
			noTypecheckArg,
			elpiFileArg,
			{Names: []string{"number", "n"}, TakesValue: true, Default: "1", Description: "Number of results"},
		},
		MaxArgs:         command.Unbounded,
		Input:           items.ReprDefault,
		MainArgsAsItems: true,
		Examples:        []string{"query -n=3 \"prove X\""},
		Handler: command.ApplyOnly(func(ctx context.Context, inv command.Invocation, in *items.Items) *items.Items {
			file, err := elpiProgram(env, inv, "query")
			if err != nil {
				return items.Empty(err.Error())
			}
			runner, err := env.ELPI()
			if err != nil {
				return in.WithErrors(err.Error())
			}
			out := &items.Items{Errors: append([]string(nil), in.Errors...)}
			for _, it := range in.List {
				q := it.Resolve(items.ReprDefault)
				stdout, stderr, err := runner.Run(ctx, elpi.Query{
					Dir:       env.Cwd(),
					File:      file,
					Goal:      fmt.Sprintf("glif.query %s (%s)", inv.Value("number"), q),
					Typecheck: !inv.Flag("no-typechecking"),
				})
				if err != nil {
					out.Errors = append(out.Errors, err.Error())
					continue
				}
				out.List = append(out.List, it.Clone().WithRepr(items.ReprDefault, stdout+"\n\n"+strings.TrimSpace(stderr)))
			}
			return out
		}),
	})
}

func applyType(env Env) *command.Type {
	return command.Define(command.Type{
		Names:       []string{"apply"},
		Description: "Applies an ELPI predicate to logical expressions and returns the output",
		Args: []command.Arg{
			noTypecheckArg,
			elpiFileArg,
			{Names: []string{"predicate", "p"}, TakesValue: true, Default: "apply", Description: "Predicate to be applied"},
			{Names: []string{"with-AST", "wA"}, Description: "Include ASTs if available"},
			{Names: []string{"together", "t"}, Description: "Pass all items at once to the predicate (as a list)"},
		},
		MaxArgs:         command.Unbounded,
		Input:           items.ReprLogicELPI,
		MainArgsAsItems: true,
		Examples:        []string{"parse \"every dog barks\" | construct | apply -p=simplify", "apply -t -p=count"},
		Handler: command.ApplyOnly(func(ctx context.Context, inv command.Invocation, in *items.Items) *items.Items {
			file, err := elpiProgram(env, inv, "apply")
			if err != nil {
				return items.Empty(err.Error())
			}
			runner, err := env.ELPI()
			if err != nil {
				return in.WithErrors(err.Error())
			}
			q := elpi.Query{
				Dir:       env.Cwd(),
				File:      file,
				Typecheck: !inv.Flag("no-typechecking"),
			}
			withAST := inv.Flag("with-AST")
			predicate := inv.Value("predicate")

			if inv.Flag("together") {
				q.Goal = "glif.apply_to_items " + predicate
				q.Stdin = elpi.EncodeItems(in, withAST)
				stdout, _, err := runner.Run(ctx, q)
				if err != nil {
					return items.Empty(append(append([]string(nil), in.Errors...), err.Error())...)
				}
				return items.NewItems(items.New(0).WithRepr(items.ReprDefault, stdout))
			}

			q.Goal = "glif.apply_to_item " + predicate
			out := &items.Items{Errors: append([]string(nil), in.Errors...)}
			for _, it := range in.List {
				q.Stdin = elpi.EncodeItems(items.NewItems(it), withAST)
				stdout, _, err := runner.Run(ctx, q)
				if err != nil {
					// One failing item usually means a broken program; stop here.
					return in.WithErrors(err.Error())
				}
				out.List = append(out.List, it.Clone().WithRepr(items.ReprDefault, stdout))
			}
			return out
		}),
	})
}
