package cmdline

import "strings"

// scanQuoted reads a double-quoted string starting at s[0] == '"'.
// Only \" and \\ are escapes; any other backslash is kept literally.
// It returns the unescaped content and the text after the closing quote.
func scanQuoted(s string) (string, string, bool) {
	var b strings.Builder
	escaped := false
	for i := 1; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			if ch != '"' && ch != '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(ch)
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			return b.String(), s[i+1:], true
		default:
			b.WriteByte(ch)
		}
	}
	return "", "", false
}

// scanIdent reads an identifier; allowMinus admits '-' after the first character.
func scanIdent(s string, allowMinus bool) (string, string) {
	i := 1
	for i < len(s) && (isIdentChar(s[i]) || (allowMinus && s[i] == '-')) {
		i++
	}
	return s[:i], s[i:]
}

// scanUntilSpace reads a non-empty run of non-whitespace characters.
func scanUntilSpace(s string) (string, string) {
	i := 0
	for i < len(s) && !isSpace(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

// isLetter treats bytes of multi-byte UTF-8 sequences as letters so that
// non-ASCII identifiers pass through.
func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
