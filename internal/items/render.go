package items

import (
	"html"
	"strings"
)

// RenderHTML renders the item for notebook front-ends. An attached html view
// wins; otherwise the escaped default representation is used.
func (it *Item) RenderHTML() string {
	var sb strings.Builder
	if h, ok := it.content[ReprHTML]; ok {
		sb.WriteString(h)
	} else if def, ok := it.content[ReprDefault]; ok {
		sb.WriteString(`<span class="glif-stdout">`)
		sb.WriteString(escapeBlock(def))
		sb.WriteString(`</span>`)
	}
	sb.WriteString(errorSpan(it.Errors))
	return sb.String()
}

// RenderHTML renders all items separated by line breaks, followed by the batch errors.
func (b *Items) RenderHTML() string {
	parts := make([]string, 0, len(b.List))
	for _, it := range b.List {
		parts = append(parts, it.RenderHTML())
	}
	return strings.Join(parts, "<br/>") + errorSpan(b.Errors)
}

func escapeBlock(s string) string {
	s = html.EscapeString(s)
	s = strings.ReplaceAll(s, "\n", "<br/>")
	return strings.ReplaceAll(s, "  ", "&nbsp;&nbsp;")
}

func errorSpan(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = strings.ReplaceAll(html.EscapeString(e), "\n", "<br/>")
	}
	return "\n<br/><span class=\"glif-stderr\"><b>Errors</b><br/>" + strings.Join(lines, "<br/>") + "</span>"
}
