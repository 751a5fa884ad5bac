package builtin

import (
	"context"
	"strings"

	"github.com/jfschaefer/GLIFcore/internal/command"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

func statusType(env Env) *command.Type {
	return command.Define(command.Type{
		Names:       []string{"status", "s"},
		Description: "Reports the state of GF, MMT and ELPI",
		Args: []command.Arg{
			{Names: []string{"load-gf", "lg"}, Description: "Load the GF shell if it hadn't been loaded before"},
			{Names: []string{"load-mmt", "lm"}, Description: "Load the MMT interface if it hadn't been loaded before"},
			{Names: []string{"gf-logs", "gl"}, Description: "Show the output of the GF start-up"},
			{Names: []string{"mmt-logs", "ml"}, Description: "Show MMT logs"},
		},
		Examples: []string{"status", "status -lm -ml"},
		Handler: command.ExecuteOnly(func(ctx context.Context, inv command.Invocation) *items.Items {
			return items.FromValues(items.ReprDefault, []string{statusReport(ctx, env, inv)})
		}),
	})
}

func statusReport(ctx context.Context, env Env, inv command.Invocation) string {
	lines := []string{"Current working directory: " + env.Cwd()}

	gf := env.GFStatus(ctx, inv.Flag("load-gf"))
	lines = append(lines, "", "GF STATUS")
	if gf.Running {
		lines = append(lines, "GF is running")
		if inv.Flag("gf-logs") {
			lines = append(lines, "GF LOGS")
			lines = append(lines, gf.Logs...)
		}
	} else {
		lines = append(lines, "GF is not running")
		if gf.Failure != "" {
			lines = append(lines, gf.Failure)
		}
	}

	m := env.MMTStatus(ctx, inv.Flag("load-mmt"))
	lines = append(lines, "", "MMT STATUS")
	if m.Running {
		lines = append(lines, "MMT is running "+m.Detail)
	} else {
		lines = append(lines, "MMT is not running")
	}
	lines = append(lines, "Logs from initialization")
	lines = append(lines, env.LocateLogs()...)
	if m.Failure != "" {
		lines = append(lines, m.Failure)
	}
	if inv.Flag("mmt-logs") {
		lines = append(lines, "MMT STARTUP LOGS")
		lines = append(lines, m.Logs...)
		if m.Running {
			lines = append(lines, "MMT MOST RECENT LOGS")
			lines = append(lines, m.Tail...)
		}
	}

	lines = append(lines, "", "ELPI STATUS")
	runner, err := env.ELPI()
	if err != nil {
		lines = append(lines, err.Error())
		return strings.Join(lines, "\n")
	}
	lines = append(lines, "ELPI location: "+runner.Path())
	if version, err := runner.Version(ctx); err == nil {
		lines = append(lines, "ELPI version: "+version)
	} else {
		lines = append(lines, `"elpi -version" failed`)
	}
	return strings.Join(lines, "\n")
}
