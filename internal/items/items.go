package items

import "strings"

// Items is an ordered batch of items plus diagnostics that belong to the
// batch as a whole. Batches are what stages exchange.
type Items struct {
	List   []*Item
	Errors []string
}

// NewItems creates a batch from the given items.
func NewItems(list ...*Item) *Items {
	return &Items{List: list}
}

// Empty returns a batch with no items, optionally carrying errors.
func Empty(errs ...string) *Items {
	return &Items{Errors: append([]string(nil), errs...)}
}

// FromValues creates one item per value, numbered from 0. Sentences also
// record the literal input as the original sentence.
func FromValues(r Repr, values []string) *Items {
	b := &Items{List: make([]*Item, 0, len(values))}
	for i, v := range values {
		it := New(i).WithRepr(r, v)
		if r == ReprSentence {
			it.content[ReprSentenceOriginal] = v
		}
		b.List = append(b.List, it)
	}
	return b
}

// Len returns the number of items.
func (b *Items) Len() int {
	if b == nil {
		return 0
	}
	return len(b.List)
}

// Merge appends other's items and errors to b.
func (b *Items) Merge(other *Items) {
	if other == nil {
		return
	}
	b.List = append(b.List, other.List...)
	b.Errors = append(b.Errors, other.Errors...)
}

// WithErrors appends batch-level errors and returns b.
func (b *Items) WithErrors(errs ...string) *Items {
	b.Errors = append(b.Errors, errs...)
	return b
}

// FlatMap applies f to every item in order and concatenates the results.
// The returned batch starts with b's own errors.
func (b *Items) FlatMap(f func(*Item) *Items) *Items {
	out := &Items{Errors: append([]string(nil), b.Errors...)}
	for _, it := range b.List {
		out.Merge(f(it))
	}
	return out
}

// AllErrors returns batch errors followed by every item's errors.
func (b *Items) AllErrors() []string {
	errs := append([]string(nil), b.Errors...)
	for _, it := range b.List {
		errs = append(errs, it.Errors...)
	}
	return errs
}

// Values returns the default representation of every item.
func (b *Items) Values() []string {
	out := make([]string, 0, len(b.List))
	for _, it := range b.List {
		v, _ := it.Get(ReprDefault)
		out = append(out, v)
	}
	return out
}

// String renders batch errors, a blank line, then one item per line.
func (b *Items) String() string {
	parts := make([]string, 0, len(b.List))
	for _, it := range b.List {
		parts = append(parts, it.String())
	}
	s := strings.Join(parts, "\n")
	if len(b.Errors) > 0 {
		return strings.Join(b.Errors, "\n") + "\n\n" + s
	}
	return s
}
