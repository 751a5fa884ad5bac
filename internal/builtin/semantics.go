package builtin

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jfschaefer/GLIFcore/internal/atomicfile"
	"github.com/jfschaefer/GLIFcore/internal/command"
	"github.com/jfschaefer/GLIFcore/internal/engine/mmt"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

func constructType(env Env) *command.Type {
	return command.Define(command.Type{
		Names:       []string{"construct", "c"},
		Description: "Applies the semantics construction",
		Args: []command.Arg{
			{Names: []string{"delta-expand", "de"}, Description: "Expand defined constants"},
			{Names: []string{"no-simplify"}, Description: "Don't simplify the resulting expression"},
			{Names: []string{"view", "v"}, TakesValue: true, Default: command.DefaultFromContext, Description: "Specify the semantics construction view"},
		},
		MaxArgs:         command.Unbounded,
		Input:           items.ReprAST,
		MainArgsAsItems: true,
		Examples:        []string{"parse \"every dog barks\" | construct", "construct -v=SemView \"(barks dog)\""},
		Handler: command.ApplyOnly(func(ctx context.Context, inv command.Invocation, in *items.Items) *items.Items {
			return construct(ctx, env, inv, in)
		}),
	})
}

func construct(ctx context.Context, env Env, inv command.Invocation, in *items.Items) *items.Items {
	view := inv.Value("view")
	if view == command.DefaultFromContext {
		view = env.DefaultView()
	}
	if view == "" {
		return items.Empty(`No semantics construction view has been specified for the "construct" command and no default view is available.`)
	}
	server, err := env.MMT(ctx)
	if err != nil {
		return items.Empty(err.Error())
	}
	archive, subdir, err := env.ArchiveSubdir()
	if err != nil {
		return items.Empty(`"construct" failed.`, err.Error())
	}

	// Each distinct tree is sent once; results are mapped back by tree.
	asts := make([]string, len(in.List))
	warnings := make([]string, len(in.List))
	index := make(map[string]int)
	var unique []string
	for i, it := range in.List {
		ast, exact, warning := it.TryGet(items.ReprAST)
		if !exact {
			warnings[i] = warning
		}
		asts[i] = ast
		if _, seen := index[ast]; !seen {
			index[ast] = len(unique)
			unique = append(unique, ast)
		}
	}

	res, err := server.Construct(ctx, unique, archive, subdir, view, mmt.ConstructOptions{
		ToELPI:      true,
		DeltaExpand: inv.Flag("delta-expand"),
		Simplify:    !inv.Flag("no-simplify"),
	})
	if err != nil {
		return items.Empty(`"construct" failed.`, err.Error())
	}

	out := &items.Items{Errors: append(append([]string(nil), in.Errors...), res.Warnings...)}
	for i, it := range in.List {
		j := index[asts[i]]
		next := it.Clone().WithRepr(items.ReprLogicStandard, res.MMT[j])
		if res.ELPI != nil {
			next.WithRepr(items.ReprLogicELPI, res.ELPI[j], items.KeepDefault())
		}
		if warnings[i] != "" {
			next.Errors = append(next.Errors, warnings[i])
		}
		out.List = append(out.List, next)
	}
	return out
}

func populateType(env Env) *command.Type {
	return command.Define(command.Type{
		Names:       []string{"populate"},
		Description: "Populates an MMT theory with the results of the semantics construction",
		Args: []command.Arg{
			{Names: []string{"meta", "m"}, TakesValue: true, Description: "The meta theory"},
			{Names: []string{"name", "n"}, TakesValue: true, Default: "generated", Description: "Name of the generated theory"},
			{Names: []string{"mode"}, TakesValue: true, Default: "default", Allowed: []string{"default", "events"}, Description: "Mode of population"},
		},
		MaxArgs:         command.Unbounded,
		Input:           items.ReprLogicStandard,
		MainArgsAsItems: true,
		Examples:        []string{"parse \"every dog barks\" | construct | populate -m=?FOL"},
		Handler: command.ApplyOnly(func(ctx context.Context, inv command.Invocation, in *items.Items) *items.Items {
			server, err := env.MMT(ctx)
			if err != nil {
				return items.Empty(err.Error())
			}
			archive, subdir, err := env.ArchiveSubdir()
			if err != nil {
				return items.Empty(`"populate" failed.`, err.Error())
			}
			terms := make([]string, 0, in.Len())
			for _, it := range in.List {
				terms = append(terms, it.Resolve(items.ReprLogicStandard))
			}
			pres, err := server.Populate(ctx, terms, archive, subdir, inv.Value("meta"), inv.Value("name"), inv.Value("mode"))
			if err != nil {
				return items.Empty(`"populate" failed.`, err.Error())
			}
			pres = strings.ReplaceAll(pres, "\n\t\t: ", " : ")
			pres = strings.ReplaceAll(pres, "\n\t❙", " ❙")
			return items.NewItems(items.New(0).WithRepr(items.ReprDefault, pres)).WithErrors(in.AllErrors()...)
		}),
	})
}

func elpigenType(env Env) *command.Type {
	return command.Define(command.Type{
		Names:       []string{"elpigen", "eg"},
		Description: "Generates ELPI code from an MMT theory",
		Args: []command.Arg{
			{Names: []string{"with-meta", "wm"}, Description: "Also generate ELPI code for meta theories"},
			{Names: []string{"no-includes", "ni"}, Description: "Don't generate ELPI code for included theories"},
			{Names: []string{"file", "f"}, TakesValue: true, Default: command.DefaultFromContext, Description: "The file to write the ELPI code to"},
			{Names: []string{"mode", "m"}, TakesValue: true, Default: "types", Allowed: []string{"types", "simpleprover"}, Description: "The mode of ELPI generation"},
		},
		MinArgs:  1,
		MaxArgs:  1,
		Examples: []string{"elpigen Grammar", "elpigen -m=simpleprover -f=prover FOL"},
		Handler: command.ExecuteOnly(func(ctx context.Context, inv command.Invocation) *items.Items {
			theory := inv.MainArgs[0]
			file := inv.Value("file")
			if file == command.DefaultFromContext {
				file = theory
			}
			if !strings.HasSuffix(file, ".elpi") {
				file += ".elpi"
			}
			server, err := env.MMT(ctx)
			if err != nil {
				return items.Empty("Failed to load MMT:\n" + err.Error())
			}
			archive, subdir, err := env.ArchiveSubdir()
			if err != nil {
				return items.Empty(err.Error())
			}
			code, err := server.GenerateELPI(ctx, inv.Value("mode"), archive, subdir, theory, mmt.ELPIOptions{
				WithMeta: inv.Flag("with-meta"),
				Includes: !inv.Flag("no-includes"),
			})
			if err != nil {
				return items.Empty("Failed to generate ELPI code:\n" + err.Error())
			}
			if err := atomicfile.WriteString(filepath.Join(env.Cwd(), file), code); err != nil {
				return items.Empty("Failed to write " + file + ": " + err.Error())
			}
			return items.FromValues(items.ReprDefault, []string{"Successfully created " + file})
		}),
	})
}
