package builtin

import "github.com/jfschaefer/GLIFcore/internal/command"

// All returns every builtin command type bound to env: the grammar shell
// commands first, then the GLIF commands.
func All(env Env) []*command.Type {
	var all []*command.Type
	all = append(all, gfTypes(env, newGFHelp(env))...)
	all = append(all,
		importType(env),
		archiveType(env),
		statusType(env),
		constructType(env),
		populateType(env),
		elpigenType(env),
		filterType(env),
		helpType(func() []*command.Type { return all }),
		queryType(env),
		applyType(env),
	)
	return all
}
