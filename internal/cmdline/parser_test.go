package cmdline

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		mode     SplitMode
		wantName string
		wantArgs []Argument
		wantMain []string
		wantRest string
	}{
		{
			name:     "flag and quoted sentence",
			input:    `parse -lang=Eng "hello world"`,
			wantName: "parse",
			wantArgs: []Argument{KeyValue("lang", "Eng")},
			wantMain: []string{"hello world"},
		},
		{
			name:     "pipe to next command",
			input:    `parse -lang=Eng "hello world" | l -lang=Ger`,
			wantName: "parse",
			wantArgs: []Argument{KeyValue("lang", "Eng")},
			wantMain: []string{"hello world"},
			wantRest: "l -lang=Ger",
		},
		{
			name:     "tree kept together",
			input:    "linearize s everyone (love someone)",
			mode:     KeepTogether,
			wantName: "linearize",
			wantMain: []string{"s everyone (love someone)"},
		},
		{
			name:     "words split at space",
			input:    "archive myarchive mysubdir extra",
			wantName: "archive",
			wantMain: []string{"myarchive", "mysubdir", "extra"},
		},
		{
			name:     "name only",
			input:    "status",
			wantName: "status",
		},
		{
			name:     "boolean flags and double dash",
			input:    "status -load-gf --mmt-logs",
			wantName: "status",
			wantArgs: []Argument{Flag("load-gf"), Flag("mmt-logs")},
		},
		{
			name:     "quoted flag value with escapes",
			input:    `ps -val="te st\\" x`,
			wantName: "ps",
			wantArgs: []Argument{KeyValue("val", `te st\`)},
			wantMain: []string{"x"},
		},
		{
			name:     "escaped quote inside value",
			input:    `ps -val="test\""`,
			wantName: "ps",
			wantArgs: []Argument{KeyValue("val", `test"`)},
		},
		{
			name:     "unknown escape keeps backslash",
			input:    `ps "a\nb"`,
			wantName: "ps",
			wantMain: []string{`a\nb`},
		},
		{
			name:     "empty quoted value",
			input:    `ps -val=""`,
			wantName: "ps",
			wantArgs: []Argument{KeyValue("val", "")},
		},
		{
			name:     "pipe directly after flags",
			input:    "gr -number=3 | l",
			wantName: "gr",
			wantArgs: []Argument{KeyValue("number", "3")},
			wantRest: "l",
		},
		{
			name:     "pipe directly after name",
			input:    "gr | l",
			wantName: "gr",
			wantRest: "l",
		},
		{
			name:     "quoted pipe is not a boundary",
			input:    `ps "a | b" | ps -unchars`,
			wantName: "ps",
			wantMain: []string{"a | b"},
			wantRest: "ps -unchars",
		},
		{
			name:     "mixed quoted and bare arguments keep order",
			input:    `linearize abc "def" ghi`,
			mode:     KeepTogether,
			wantName: "linearize",
			wantMain: []string{"abc", "def", "ghi"},
		},
		{
			name:     "only the next segment is consumed",
			input:    "p a | l | vt",
			wantName: "p",
			wantMain: []string{"a"},
			wantRest: "l | vt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, rest, err := Parse(tt.input, tt.mode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", cmd.Name, tt.wantName)
			}
			if !argsEqual(cmd.Args, tt.wantArgs) {
				t.Errorf("Args = %v, want %v", cmd.Args, tt.wantArgs)
			}
			if !stringsEqual(cmd.MainArgs, tt.wantMain) {
				t.Errorf("MainArgs = %q, want %q", cmd.MainArgs, tt.wantMain)
			}
			if rest != tt.wantRest {
				t.Errorf("rest = %q, want %q", rest, tt.wantRest)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "stray character after flag", input: "parse -lang+Eng", wantMsg: `unexpected character "+"`},
		{name: "unterminated main argument", input: `parse "hello`, wantMsg: "string not closed"},
		{name: "unterminated flag value", input: `parse -lang="Eng`, wantMsg: "string not closed"},
		{name: "missing value", input: "parse -lang=", wantMsg: "missing argument value"},
		{name: "missing value before space", input: "parse -lang= x", wantMsg: "missing argument value"},
		{name: "lone dash", input: "parse -", wantMsg: "expected argument name"},
		{name: "dash then equals", input: "parse -=x", wantMsg: "expected argument name"},
		{name: "empty input", input: "   ", wantMsg: "empty command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.input, SplitAtSpace)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			perr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if !strings.Contains(perr.Message, tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", perr.Message, tt.wantMsg)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantRest string
	}{
		{"parse -lang=Eng x", "parse", "-lang=Eng x"},
		{"  status  ", "status", ""},
		{"gr\t| l", "gr", "| l"},
	}
	for _, tt := range tests {
		name, rest := Name(tt.input)
		if name != tt.wantName || rest != tt.wantRest {
			t.Errorf("Name(%q) = (%q, %q), want (%q, %q)", tt.input, name, rest, tt.wantName, tt.wantRest)
		}
	}
}

func TestGFFormat(t *testing.T) {
	cmd, _, err := Parse(`parse -lang=Eng -cat="S" -all`, SplitAtSpace)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cmd.GFFormat("hello \"world\"", true); got != `parse -lang=Eng -cat=S -all "hello \"world\""` {
		t.Errorf("GFFormat(quoted) = %q", got)
	}
	if got := cmd.GFFormat("s a (b c)", false); got != `parse -lang=Eng -cat=S -all s a (b c)` {
		t.Errorf("GFFormat(tree) = %q", got)
	}
	if got := cmd.GFFormat("", false); got != `parse -lang=Eng -cat=S -all` {
		t.Errorf("GFFormat(no arg) = %q", got)
	}
}

func TestFormatArgValue(t *testing.T) {
	tests := map[string]string{
		"Eng":       "Eng",
		"3":         "3",
		"a.b":       `"a.b"`,
		"two words": `"two words"`,
		"":          `""`,
		`q"`:        `"q\""`,
	}
	for in, want := range tests {
		if got := FormatArgValue(in); got != want {
			t.Errorf("FormatArgValue(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValueOr(t *testing.T) {
	cmd := &BasicCommand{Name: "x", Args: []Argument{Flag("all"), KeyValue("l", "Ger")}}
	if got := cmd.ValueOr([]string{"lang", "l"}, "Eng"); got != "Ger" {
		t.Errorf("ValueOr = %q, want Ger", got)
	}
	if got := cmd.ValueOr([]string{"all"}, "d"); got != "d" {
		t.Errorf("ValueOr on boolean flag = %q, want default", got)
	}
}

func argsEqual(a, b []Argument) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
