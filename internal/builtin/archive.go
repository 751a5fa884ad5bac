package builtin

import (
	"context"

	"github.com/jfschaefer/GLIFcore/internal/command"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

func archiveType(env Env) *command.Type {
	return command.Define(command.Type{
		Names:       []string{"archive", "a"},
		Description: "Switches to another MMT archive, optionally to a directory in it. Missing archives and directories are created",
		MinArgs:     1,
		MaxArgs:     2,
		Examples:    []string{"archive tmpGLIF/default", "archive tmpGLIF/default lesson1"},
		Handler: command.ExecuteOnly(func(ctx context.Context, inv command.Invocation) *items.Items {
			var subdir string
			if len(inv.MainArgs) > 1 {
				subdir = inv.MainArgs[1]
			}
			logs, err := env.SetArchive(inv.MainArgs[0], subdir, true)
			var output []string
			if logs != "" {
				output = append(output, logs)
			}
			if err != nil {
				return items.FromValues(items.ReprDefault, output).WithErrors(err.Error())
			}
			output = append(output, "Successfully changed archive")
			return items.FromValues(items.ReprDefault, output)
		}),
	})
}
