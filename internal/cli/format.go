package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// format is the --format flag. It implements pflag.Value.
type format string

const (
	formatText format = "text"
	formatHTML format = "html"
	formatJSON format = "json"
)

var outputFormat = formatText

var _ pflag.Value = (*format)(nil)

func (f *format) String() string {
	return string(*f)
}

func (f *format) Set(v string) error {
	switch format(strings.ToLower(strings.TrimSpace(v))) {
	case formatText:
		*f = formatText
	case formatHTML:
		*f = formatHTML
	case formatJSON:
		*f = formatJSON
	default:
		return fmt.Errorf("must be one of text, html, json")
	}
	return nil
}

func (f *format) Type() string {
	return "format"
}
