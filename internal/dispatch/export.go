package dispatch

import "github.com/jfschaefer/GLIFcore/internal/items"

// ExportedResult is the serializable form of a Result.
type ExportedResult struct {
	OK     bool                 `json:"ok"`
	Output *items.ExportedBatch `json:"output,omitempty"`
	Log    string               `json:"log,omitempty"`
}

// Export converts r for encoding/json.
func (r Result) Export() ExportedResult {
	out := ExportedResult{OK: r.OK, Log: r.Log}
	if r.Items != nil {
		b := r.Items.Export()
		out.Output = &b
	}
	return out
}
