// Package docs bundles long-form Markdown docs with the glif binary.
package docs

import _ "embed"

// Guide explains engines, pipelines and cells. It is served to MCP clients
// as glif://guide and printed by "glif guide".
//
//go:embed guide.md
var Guide string
