package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jfschaefer/GLIFcore/internal/dispatch"
	"github.com/jfschaefer/GLIFcore/internal/items"
	"github.com/jfschaefer/GLIFcore/internal/ui"
)

// printResult writes res in the text or html format. Values go to out,
// diagnostics to stderr.
func printResult(out io.Writer, res dispatch.Result, repr items.Repr) {
	if !res.OK {
		fmt.Fprintln(os.Stderr, ui.Error(res.Log))
		return
	}
	if outputFormat == formatHTML {
		if res.Items != nil {
			fmt.Fprintln(out, res.Items.RenderHTML())
		}
		printLog(res.Log)
		return
	}
	text, warnings := ui.FormatItems(res.Items, repr)
	fmt.Fprint(out, text)
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, ui.Warning(w))
	}
	printLog(res.Log)
}

func printLog(log string) {
	if log = strings.TrimSpace(log); log != "" {
		fmt.Fprintln(os.Stderr, ui.Muted.Render(log))
	}
}

// plainText renders results without styling, for files.
func plainText(results []dispatch.Result, repr items.Repr) string {
	var sb strings.Builder
	for _, res := range results {
		if !res.OK {
			sb.WriteString("Error: " + res.Log + "\n")
			continue
		}
		if res.Items != nil {
			for _, it := range res.Items.List {
				sb.WriteString(it.Resolve(repr))
				sb.WriteString("\n")
				for _, e := range it.Errors {
					sb.WriteString("Error: " + e + "\n")
				}
			}
			for _, e := range res.Items.Errors {
				sb.WriteString("Error: " + e + "\n")
			}
		}
		if log := strings.TrimSpace(res.Log); log != "" {
			sb.WriteString(log + "\n")
		}
	}
	return sb.String()
}

func anyFailed(results []dispatch.Result) bool {
	for _, r := range results {
		if !r.OK {
			return true
		}
	}
	return false
}

func exportAll(results []dispatch.Result) []dispatch.ExportedResult {
	out := make([]dispatch.ExportedResult, 0, len(results))
	for _, r := range results {
		out = append(out, r.Export())
	}
	return out
}

func allItemErrors(results []dispatch.Result) []string {
	var errs []string
	for _, r := range results {
		if r.Items != nil {
			errs = append(errs, r.Items.AllErrors()...)
		}
	}
	return errs
}

func parseReprFlag(name string) (items.Repr, error) {
	if name == "" {
		return items.ReprDefault, nil
	}
	r, err := items.ParseRepr(name)
	if err == nil && r == items.ReprHTML {
		return 0, fmt.Errorf("html is not a --repr value; use --format=html")
	}
	return r, err
}
