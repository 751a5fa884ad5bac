package cmdline

import (
	"fmt"
	"strings"
)

// ParseError reports malformed command text.
type ParseError struct {
	Message string
	Input   string // the segment being parsed
}

func (e *ParseError) Error() string {
	return e.Message
}

func parseErrorf(input, format string, args ...interface{}) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Input: input}
}

// Name returns the leading command name of input and the trimmed text after
// it. If input contains no whitespace the whole input is the name.
func Name(input string) (string, string) {
	s := strings.TrimSpace(input)
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) {
			return s[:i], strings.TrimSpace(s[i+1:])
		}
	}
	return s, ""
}

// Parse parses one pipe segment of input. It returns the command and the
// text after the next unquoted pipe (trimmed), or "" if there is none.
func Parse(input string, mode SplitMode) (*BasicCommand, string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, "", parseErrorf(input, "empty command")
	}

	name, rest := Name(input)
	cmd := &BasicCommand{Name: name}

	for {
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "-") {
			break
		}
		arg, r, err := parseArgument(rest)
		if err != nil {
			return nil, "", err
		}
		cmd.Args = append(cmd.Args, arg)
		rest = r
	}

	if rest == "" {
		return cmd, "", nil
	}
	if rest[0] == '|' {
		return cmd, strings.TrimSpace(rest[1:]), nil
	}
	return parseMainArgs(cmd, rest, mode)
}

// parseArgument parses "-name", "--name" or "-name=value" at the start of s.
func parseArgument(s string) (Argument, string, error) {
	orig := s
	if len(s) < 2 {
		return Argument{}, "", parseErrorf(orig, `expected argument name after "-" in "%s"`, orig)
	}
	if s[1] == '-' {
		s = s[2:]
	} else {
		s = s[1:]
	}
	if s == "" || !isIdentStart(s[0]) {
		return Argument{}, "", parseErrorf(orig, `expected argument name after "-" in "%s"`, orig)
	}

	key, s := scanIdent(s, true)
	if s == "" {
		return Flag(key), "", nil
	}
	if isSpace(s[0]) {
		return Flag(key), s[1:], nil
	}
	if s[0] != '=' {
		return Argument{}, "", parseErrorf(orig, `unexpected character "%c" when parsing "%s"`, s[0], orig)
	}

	s = s[1:]
	if s == "" || isSpace(s[0]) {
		return Argument{}, "", parseErrorf(orig, `missing argument value in "%s"`, orig)
	}
	if s[0] == '"' {
		value, r, ok := scanQuoted(s)
		if !ok {
			return Argument{}, "", parseErrorf(orig, `string not closed: %s`, s)
		}
		return KeyValue(key, value), r, nil
	}
	value, r := scanUntilSpace(s)
	return KeyValue(key, value), r, nil
}

// parseMainArgs scans s for main arguments up to the next unquoted pipe.
func parseMainArgs(cmd *BasicCommand, s string, mode SplitMode) (*BasicCommand, string, error) {
	var pending strings.Builder
	flush := func() {
		if arg := strings.TrimSpace(pending.String()); arg != "" {
			cmd.MainArgs = append(cmd.MainArgs, arg)
		}
		pending.Reset()
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '|':
			flush()
			return cmd, strings.TrimSpace(s[i+1:]), nil
		case ch == '"':
			flush()
			value, r, ok := scanQuoted(s[i:])
			if !ok {
				return nil, "", parseErrorf(s, `string not closed: %s`, s[i:])
			}
			cmd.MainArgs = append(cmd.MainArgs, value)
			// Continue right after the closing quote.
			s = r
			i = -1
		case mode == SplitAtSpace && isSpace(ch):
			flush()
		default:
			pending.WriteByte(ch)
		}
	}
	flush()
	return cmd, "", nil
}
