package dispatch

import "testing"

func TestIdentifyFile(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantOK      bool
		wantKind    FileKind
		wantName    string
		wantContent string
	}{
		{name: "commands", text: "parse \"hello\"", wantOK: false},
		{name: "gf abstract", text: "abstract Grammar = {\n cat S;\n}", wantOK: true, wantKind: FileGFAbstract, wantName: "Grammar", wantContent: "abstract Grammar = {\n cat S;\n}"},
		{name: "gf comment first", text: "-- grammar\nconcrete GrammarEng of Grammar = {}", wantOK: true, wantKind: FileGFConcrete, wantName: "GrammarEng"},
		{name: "mmt theory after namespace", text: "namespace http://mathhub.info/x ❚\ntheory Sem : ur:?LF = ❚", wantOK: true, wantKind: FileMMTTheory, wantName: "Sem"},
		{name: "elpi prefix strips marker", text: "elpi: prover\nfoo X :- bar X.", wantOK: true, wantKind: FileELPI, wantName: "prover", wantContent: "\nfoo X :- bar X."},
		{name: "upper case prefix", text: "ELPI-NOTC: p2 x.", wantOK: true, wantKind: FileELPINoTypecheck, wantName: "p2", wantContent: " x."},
		{name: "elpi comment then kind", text: "% comment\nkind person type.", wantOK: true, wantKind: FileELPI, wantName: "person"},
		{name: "unterminated block comment", text: "{- never closed", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, ok, err := IdentifyFile(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if fc.Kind != tt.wantKind || fc.Name != tt.wantName {
				t.Errorf("got (%q, %q), want (%q, %q)", fc.Kind, fc.Name, tt.wantKind, tt.wantName)
			}
			if tt.wantContent != "" && fc.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", fc.Content, tt.wantContent)
			}
		})
	}
}

func TestIdentifyFileMissingName(t *testing.T) {
	if _, _, err := IdentifyFile("theory = x"); err == nil {
		t.Error("expected error for missing identifier")
	}
}

func TestFileKindExtension(t *testing.T) {
	tests := map[FileKind]string{
		FileMMTView:         "mmt",
		FileGFIncomplete:    "gf",
		FileELPINoTypecheck: "elpi",
		FileLexicon:         "lex",
	}
	for k, want := range tests {
		if got := k.Extension(); got != want {
			t.Errorf("%q.Extension() = %q, want %q", k, got, want)
		}
	}
}
