package items

// Exported is the serializable form of an item, keyed by representation name.
type Exported struct {
	OriginalID int               `json:"original_id"`
	Reprs      map[string]string `json:"reprs"`
	Errors     []string          `json:"errors,omitempty"`
}

// ExportedBatch is the serializable form of a batch.
type ExportedBatch struct {
	Items  []Exported `json:"items"`
	Errors []string   `json:"errors,omitempty"`
}

// Export returns a copy of the item that encoding/json can marshal. An item
// that breaks the default representation invariant is exported with the
// violation among its errors.
func (it *Item) Export() Exported {
	out := Exported{
		OriginalID: it.OriginalID,
		Reprs:      make(map[string]string, len(it.content)),
		Errors:     append([]string(nil), it.Errors...),
	}
	if err := it.Validate(); err != nil {
		out.Errors = append(out.Errors, err.Error())
	}
	for r, v := range it.content {
		out.Reprs[r.String()] = v
	}
	return out
}

// Export returns a copy of the batch that encoding/json can marshal.
func (b *Items) Export() ExportedBatch {
	out := ExportedBatch{
		Items:  make([]Exported, 0, len(b.List)),
		Errors: append([]string(nil), b.Errors...),
	}
	for _, it := range b.List {
		out.Items = append(out.Items, it.Export())
	}
	return out
}
