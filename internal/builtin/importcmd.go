package builtin

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/jfschaefer/GLIFcore/internal/atomicfile"
	"github.com/jfschaefer/GLIFcore/internal/command"
	"github.com/jfschaefer/GLIFcore/internal/engine/mmt"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

func importType(env Env) *command.Type {
	return command.Define(command.Type{
		Names:       []string{"import", "i"},
		Description: "Imports a file",
		MaxArgs:     command.Unbounded,
		Examples:    []string{"import Grammar.gf", "import Semantics.mmt", "import \"my prover.elpi\""},
		Handler: command.ExecuteOnly(func(ctx context.Context, inv command.Invocation) *items.Items {
			var logs, errs []string
			for _, file := range inv.MainArgs {
				var (
					extra string
					err   error
				)
				switch filepath.Ext(file) {
				case ".gf":
					err = importGF(ctx, env, file)
				case ".mmt":
					err = importMMT(ctx, env, file)
				case ".elpi":
					extra, err = importELPI(ctx, env, file)
				default:
					errs = append(errs, "Unknown file extension in file "+file)
					continue
				}
				if err != nil {
					errs = append(errs, err.Error())
					continue
				}
				logs = append(logs, "Successfully imported "+file)
				if extra != "" {
					logs = append(logs, extra)
				}
			}
			return items.FromValues(items.ReprDefault, logs).WithErrors(errs...)
		}),
	})
}

// importGF loads a grammar into the GF shell, builds it with MMT and
// exports its types for ELPI. Every step runs and all failures are reported.
func importGF(ctx context.Context, env Env, file string) error {
	var failures []string

	shell, err := env.GF(ctx)
	if err == nil {
		var out string
		out, err = shell.HandleCommand(ctx, "import "+file)
		// The shell is silent on success.
		if err == nil && strings.TrimSpace(out) != "" {
			err = errors.New(strings.TrimSpace(out))
		}
	}
	if err != nil {
		failures = append(failures, "GF import failed:\n"+indent(err.Error()))
	}

	server, err := env.MMT(ctx)
	if err != nil {
		failures = append(failures, "MMT import failed:\n"+indent(err.Error()))
		return joinFailures(failures)
	}
	archive, subdir, err := env.ArchiveSubdir()
	if err != nil {
		failures = append(failures, "MMT import failed:\n"+indent(err.Error()))
		return joinFailures(failures)
	}
	err = server.Build(ctx, archive, subdir, file)
	var serverErr *mmt.ServerError
	switch {
	case err == nil:
		base := strings.TrimSuffix(file, filepath.Ext(file))
		theory := file + "/" + filepath.Base(base)
		code, genErr := server.GenerateELPI(ctx, "types", archive, subdir, theory, mmt.ELPIOptions{Includes: true})
		if genErr != nil {
			failures = append(failures, "ELPI export failed:\n"+indent(genErr.Error()))
			break
		}
		if writeErr := atomicfile.WriteString(filepath.Join(env.Cwd(), base+".elpi"), code); writeErr != nil {
			failures = append(failures, "ELPI export failed:\n"+indent(writeErr.Error()))
		}
	case errors.As(err, &serverErr) && serverErr.Message == "":
		// Concrete syntaxes fail to build without saying why; that is not an error.
	default:
		failures = append(failures, "MMT import failed:\n"+indent(err.Error()))
	}
	return joinFailures(failures)
}

func importMMT(ctx context.Context, env Env, file string) error {
	server, err := env.MMT(ctx)
	if err != nil {
		return errors.New("MMT import failed:\n" + indent(err.Error()))
	}
	archive, subdir, err := env.ArchiveSubdir()
	if err != nil {
		return errors.New("MMT import failed:\n" + indent(err.Error()))
	}
	return server.Build(ctx, archive, subdir, file)
}

// importELPI makes file the default program for ELPI commands, after an
// optional typecheck.
func importELPI(ctx context.Context, env Env, file string) (string, error) {
	path := filepath.Join(env.Cwd(), file)
	if env.TypecheckImports() {
		runner, err := env.ELPI()
		if err != nil {
			return "", err
		}
		if err := runner.Typecheck(ctx, env.Cwd(), path); err != nil {
			return "", err
		}
	}
	env.SetDefaultELPI(path)
	return file + " is the new default file for ELPI commands", nil
}

func joinFailures(failures []string) error {
	if len(failures) == 0 {
		return nil
	}
	return errors.New(strings.Join(failures, "\n"))
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
