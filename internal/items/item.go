package items

import (
	"fmt"
	"strings"
)

// Item is one unit of content flowing through the pipeline. It may hold
// several representations at once, e.g. a sentence and its parse tree.
type Item struct {
	// OriginalID is assigned at creation and survives every transformation.
	OriginalID int
	// Errors are diagnostics for this item. They are only ever appended.
	Errors []string

	content map[Repr]string
}

// New creates an empty item.
func New(originalID int) *Item {
	return &Item{OriginalID: originalID, content: make(map[Repr]string)}
}

// ReprOption adjusts how WithRepr stores a representation.
type ReprOption func(*reprOptions)

type reprOptions struct {
	keepDefault bool
	html        string
	hasHTML     bool
}

// KeepDefault stores a secondary view without replacing the default representation.
func KeepDefault() ReprOption {
	return func(o *reprOptions) { o.keepDefault = true }
}

// WithHTML attaches a rendered view together with the new representation.
func WithHTML(html string) ReprOption {
	return func(o *reprOptions) {
		o.html = html
		o.hasHTML = true
	}
}

// WithRepr sets representation r to value and returns the item for chaining.
// It mutates the item in place. Unless KeepDefault is given, the default
// representation is updated too. Any html rendering is dropped unless
// WithHTML supplies a new one.
//
// WithRepr panics if r is ReprHTML; use SetHTML instead.
func (it *Item) WithRepr(r Repr, value string, opts ...ReprOption) *Item {
	if r == ReprHTML {
		panic("items: html must be attached with SetHTML or WithHTML")
	}
	var o reprOptions
	for _, opt := range opts {
		opt(&o)
	}
	if it.content == nil {
		it.content = make(map[Repr]string)
	}
	if !o.keepDefault {
		it.content[ReprDefault] = value
	}
	it.content[r] = value
	if o.hasHTML {
		it.content[ReprHTML] = o.html
	} else {
		delete(it.content, ReprHTML)
	}
	return it
}

// SetHTML attaches a rendered view of the current content.
func (it *Item) SetHTML(html string) *Item {
	if it.content == nil {
		it.content = make(map[Repr]string)
	}
	it.content[ReprHTML] = html
	return it
}

// HTML returns the attached rendered view, if any.
func (it *Item) HTML() (string, bool) {
	html, ok := it.content[ReprHTML]
	return html, ok
}

// Get returns representation r if present.
func (it *Item) Get(r Repr) (string, bool) {
	v, ok := it.content[r]
	return v, ok
}

// Has reports whether representation r is present.
func (it *Item) Has(r Repr) bool {
	_, ok := it.content[r]
	return ok
}

// TryGet returns representation r. If it is missing, the default
// representation is returned instead with exact == false and a warning
// naming the available representations.
func (it *Item) TryGet(r Repr) (value string, exact bool, warning string) {
	if v, ok := it.content[r]; ok {
		return v, true, ""
	}
	available := make([]string, 0, len(it.content))
	for _, rr := range it.Reprs() {
		available = append(available, "["+rr.String()+"]")
	}
	warning = fmt.Sprintf("expected representation [%s], falling back to [%s]; available representations: %s",
		r, ReprDefault, strings.Join(available, " "))
	def, ok := it.content[ReprDefault]
	if !ok {
		warning += "; item has no default representation"
	}
	return def, false, warning
}

// Resolve is TryGet for callers that always tolerate a fallback: the
// fallback warning, if any, is appended to the item's errors.
func (it *Item) Resolve(r Repr) string {
	v, exact, warning := it.TryGet(r)
	if !exact {
		it.Errors = append(it.Errors, warning)
	}
	return v
}

// Reprs lists the representations present, in declaration order.
func (it *Item) Reprs() []Repr {
	out := make([]Repr, 0, len(it.content))
	for _, r := range AllReprs() {
		if it.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns a deep copy sharing no mutable state with it.
func (it *Item) Clone() *Item {
	c := &Item{
		OriginalID: it.OriginalID,
		Errors:     append([]string(nil), it.Errors...),
		content:    make(map[Repr]string, len(it.content)),
	}
	for r, v := range it.content {
		c.content[r] = v
	}
	return c
}

// Validate checks that a non-empty item carries a default representation.
func (it *Item) Validate() error {
	if len(it.content) == 0 {
		return fmt.Errorf("item %d has no content", it.OriginalID)
	}
	if _, ok := it.content[ReprDefault]; !ok {
		return fmt.Errorf("item %d has no default representation", it.OriginalID)
	}
	return nil
}

// String renders the default representation preceded by any errors.
func (it *Item) String() string {
	def, ok := it.content[ReprDefault]
	if !ok {
		return "[item has no default representation]"
	}
	if len(it.Errors) > 0 {
		return "Errors:\n    " + strings.Join(it.Errors, "\n    ") + "\n" + def
	}
	return def
}
