package builtin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jfschaefer/GLIFcore/internal/command"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

// helpType lists the registered commands. types is called lazily so the
// help command can describe itself.
func helpType(types func() []*command.Type) *command.Type {
	return command.Define(command.Type{
		Names:       []string{"help", "h"},
		Description: "Prints information about available GLIF commands",
		MaxArgs:     command.Unbounded,
		Examples:    []string{"help", "help construct"},
		Handler: command.ExecuteOnly(func(ctx context.Context, inv command.Invocation) *items.Items {
			all := types()
			if len(inv.MainArgs) == 0 {
				return items.FromValues(items.ReprDefault, []string{Overview(all)})
			}
			byName := make(map[string]*command.Type)
			for _, t := range all {
				for _, n := range t.Names {
					byName[n] = t
				}
			}
			var texts, errs []string
			for _, name := range inv.MainArgs {
				t, ok := byName[name]
				if !ok {
					errs = append(errs, fmt.Sprintf("Unknown command %q", name))
					continue
				}
				texts = append(texts, t.LongDescription(ctx))
			}
			return items.FromValues(items.ReprDefault, texts).WithErrors(errs...)
		}),
	})
}

// Overview renders the command list shown by a bare "help".
func Overview(types []*command.Type) string {
	lines := make([]string, 0, len(types))
	for _, t := range types {
		lines = append(lines, "    "+strings.Join(t.Names, ", "))
	}
	sort.Strings(lines)
	return "Currently available commands:\n" + strings.Join(lines, "\n") +
		"\n\nRun \"help [COMMAND]\" to learn more about a particular command"
}
