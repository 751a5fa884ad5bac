package builtin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jfschaefer/GLIFcore/internal/dispatch"
	"github.com/jfschaefer/GLIFcore/internal/engine/elpi"
	"github.com/jfschaefer/GLIFcore/internal/engine/mmt"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

type fakeGF struct {
	lines   []string
	respond func(line string) string
}

func (f *fakeGF) HandleCommand(ctx context.Context, text string) (string, error) {
	f.lines = append(f.lines, text)
	if f.respond == nil {
		return "", nil
	}
	return f.respond(text), nil
}

type fakeMMT struct {
	built      []string
	constructs [][]string
	buildErr   error
	elpigen    []string
	populate   []string
}

func (f *fakeMMT) Build(ctx context.Context, archive, subdir, file string) error {
	f.built = append(f.built, file)
	return f.buildErr
}

func (f *fakeMMT) Construct(ctx context.Context, asts []string, archive, subdir, view string, opts mmt.ConstructOptions) (*mmt.ConstructResult, error) {
	f.constructs = append(f.constructs, asts)
	res := &mmt.ConstructResult{}
	for _, a := range asts {
		res.MMT = append(res.MMT, "sem("+a+")")
		res.ELPI = append(res.ELPI, "(elpi "+a+")")
	}
	return res, nil
}

func (f *fakeMMT) GenerateELPI(ctx context.Context, mode, archive, subdir, theory string, opts mmt.ELPIOptions) (string, error) {
	f.elpigen = append(f.elpigen, mode+" "+theory)
	return "kind prop type.", nil
}

func (f *fakeMMT) Populate(ctx context.Context, terms []string, archive, subdir, meta, name, mode string) (string, error) {
	f.populate = terms
	return "theory " + name + " : " + meta + " =\n\tc1\n\t\t: prop\n\t❙", nil
}

type fakeELPI struct {
	queries []elpi.Query
	run     func(q elpi.Query) (string, string, error)
}

func (f *fakeELPI) Path() string { return "/usr/bin/elpi" }

func (f *fakeELPI) Run(ctx context.Context, q elpi.Query) (string, string, error) {
	f.queries = append(f.queries, q)
	return f.run(q)
}

func (f *fakeELPI) Typecheck(ctx context.Context, dir, file string) error { return nil }

func (f *fakeELPI) Version(ctx context.Context) (string, error) { return "1.18.2", nil }

type fakeEnv struct {
	gf          *fakeGF
	gfErr       error
	mmt         *fakeMMT
	elpi        *fakeELPI
	cwd         string
	defaultView string
	defaultELPI string
	archiveLogs string
}

func newFakeEnv(t *testing.T) *fakeEnv {
	return &fakeEnv{
		gf:   &fakeGF{},
		mmt:  &fakeMMT{},
		elpi: &fakeELPI{run: func(elpi.Query) (string, string, error) { return "", "", nil }},
		cwd:  t.TempDir(),
	}
}

func (e *fakeEnv) GF(ctx context.Context) (GFShell, error) {
	if e.gfErr != nil {
		return nil, e.gfErr
	}
	return e.gf, nil
}

func (e *fakeEnv) MMT(ctx context.Context) (MMT, error) { return e.mmt, nil }
func (e *fakeEnv) ELPI() (ELPI, error) { return e.elpi, nil }

func (e *fakeEnv) ArchiveSubdir() (string, string, error) { return DefaultArchive, "", nil }

func (e *fakeEnv) SetArchive(archive, subdir string, create bool) (string, error) {
	if archive == "broken" {
		return "", errors.New("Error: MathHub folder not found")
	}
	return e.archiveLogs, nil
}

func (e *fakeEnv) Cwd() string { return e.cwd }
func (e *fakeEnv) DefaultView() string { return e.defaultView }
func (e *fakeEnv) DefaultELPI() string { return e.defaultELPI }
func (e *fakeEnv) SetDefaultELPI(path string) { e.defaultELPI = path }
func (e *fakeEnv) TypecheckImports() bool { return false }
func (e *fakeEnv) LocateLogs() []string { return []string{"Finding mmt.jar: \"Lucky guess\""} }
func (e *fakeEnv) GFStatus(ctx context.Context, load bool) EngineStatus {
	return EngineStatus{Running: load, Logs: []string{"GF banner"}}
}
func (e *fakeEnv) MMTStatus(ctx context.Context, load bool) EngineStatus {
	return EngineStatus{Running: false, Failure: "no java"}
}

func run(t *testing.T, env *fakeEnv, line string) dispatch.Result {
	t.Helper()
	reg, err := dispatch.NewRegistry(All(env)...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return dispatch.New(reg).Run(context.Background(), line)
}

func reprs(b *items.Items, r items.Repr) []string {
	var out []string
	for _, it := range b.List {
		v, _ := it.Get(r)
		out = append(out, v)
	}
	return out
}

func TestAllNames(t *testing.T) {
	reg, err := dispatch.NewRegistry(All(newFakeEnv(t))...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	for _, name := range []string{"parse", "p", "ps", "pt", "l", "vt", "vp", "gr", "gt", "i", "a", "s", "c", "populate", "eg", "filter", "h", "query", "apply"} {
		if _, ok := reg.Lookup(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestGFPipeline(t *testing.T) {
	env := newFakeEnv(t)
	env.gf.respond = func(line string) string {
		switch {
		case line == "gr -number=2":
			return "t1\nt2\n"
		case strings.HasPrefix(line, "l "):
			return "lin " + strings.TrimPrefix(line, "l ") + "\n"
		}
		return ""
	}
	res := run(t, env, "gr -number=2 | l")
	if !res.OK {
		t.Fatalf("Run failed: %s", res.Log)
	}
	if got := reprs(res.Items, items.ReprSentence); !reflect.DeepEqual(got, []string{"lin t1", "lin t2"}) {
		t.Errorf("sentences = %q", got)
	}
	if got := reprs(res.Items, items.ReprAST); !reflect.DeepEqual(got, []string{"t1", "t2"}) {
		t.Errorf("trees = %q", got)
	}
	if res.Items.List[1].OriginalID != 1 {
		t.Errorf("OriginalID = %d", res.Items.List[1].OriginalID)
	}
}

func TestGFQuotesSentences(t *testing.T) {
	env := newFakeEnv(t)
	env.gf.respond = func(line string) string { return "(Pred John Sleep)\n\n(Pred John Sleep2)" }
	res := run(t, env, `parse -lang=Eng "john sleeps"`)
	if !res.OK {
		t.Fatalf("Run failed: %s", res.Log)
	}
	if env.gf.lines[0] != `parse -lang=Eng "john sleeps"` {
		t.Errorf("sent %q", env.gf.lines[0])
	}
	if res.Items.Len() != 2 {
		t.Errorf("got %d items, want 2", res.Items.Len())
	}
	if v, _ := res.Items.List[0].Get(items.ReprSentenceOriginal); v != "john sleeps" {
		t.Errorf("original sentence = %q", v)
	}
}

func TestGFGraphStaysWhole(t *testing.T) {
	env := newFakeEnv(t)
	env.gf.respond = func(line string) string { return "digraph {\n  a -> b\n}" }
	res := run(t, env, `vt (Pred John Sleep)`)
	if !res.OK || res.Items.Len() != 1 {
		t.Fatalf("result = %+v", res)
	}
	if env.gf.lines[0] != "vt (Pred John Sleep)" {
		t.Errorf("sent %q", env.gf.lines[0])
	}
	if v, _ := res.Items.List[0].Get(items.ReprGraphDot); !strings.Contains(v, "a -> b") {
		t.Errorf("graph = %q", v)
	}
}

func TestGFUnavailable(t *testing.T) {
	env := newFakeEnv(t)
	env.gfErr = errors.New(`failed to locate executable "gf"`)
	res := run(t, env, `ps "a"`)
	if !res.OK {
		t.Fatalf("runtime errors must not fail the line: %s", res.Log)
	}
	if res.Items.Len() != 0 || !strings.Contains(res.Log, `"gf"`) {
		t.Errorf("result = %+v", res)
	}
}

func TestHelp(t *testing.T) {
	env := newFakeEnv(t)
	env.gf.respond = func(line string) string { return "GF help for " + line }

	res := run(t, env, "help")
	overview := res.Items.Values()[0]
	if !strings.HasPrefix(overview, "Currently available commands:\n") || !strings.Contains(overview, "    construct, c") {
		t.Errorf("overview = %q", overview)
	}

	res = run(t, env, "help construct nope")
	if !strings.Contains(res.Items.Values()[0], "Applies the semantics construction\n\nFlags:\n    -delta-expand | -de") {
		t.Errorf("construct help = %q", res.Items.Values()[0])
	}
	if !reflect.DeepEqual(res.Items.Errors, []string{`Unknown command "nope"`}) {
		t.Errorf("errors = %q", res.Items.Errors)
	}

	reg, _ := dispatch.NewRegistry(All(env)...)
	d := dispatch.New(reg)
	for i := 0; i < 2; i++ {
		res = d.Run(context.Background(), "help l")
		if res.Items.Values()[0] != "GF help for help linearize" {
			t.Errorf("GF help = %q", res.Items.Values()[0])
		}
	}
	if len(env.gf.lines) != 1 {
		t.Errorf("GF asked %d times, want 1", len(env.gf.lines))
	}
}

func TestConstruct(t *testing.T) {
	env := newFakeEnv(t)
	res := run(t, env, `construct "a" "b"`)
	if res.Items.Len() != 0 || !strings.Contains(res.Log, "no default view is available") {
		t.Fatalf("without view: %+v", res)
	}

	env.defaultView = "SemView"
	res = run(t, env, `construct "(f x)" "b" "(f x)"`)
	if !res.OK {
		t.Fatalf("Run failed: %s", res.Log)
	}
	if !reflect.DeepEqual(env.mmt.constructs, [][]string{{"(f x)", "b"}}) {
		t.Errorf("sent trees %q", env.mmt.constructs)
	}
	if got := reprs(res.Items, items.ReprLogicStandard); !reflect.DeepEqual(got, []string{"sem((f x))", "sem(b)", "sem((f x))"}) {
		t.Errorf("logic = %q", got)
	}
	if got := res.Items.Values(); got[1] != "sem(b)" {
		t.Errorf("default should follow logic-standard, got %q", got)
	}
	if v, _ := res.Items.List[0].Get(items.ReprLogicELPI); v != "(elpi (f x))" {
		t.Errorf("elpi = %q", v)
	}
}

func TestPopulate(t *testing.T) {
	env := newFakeEnv(t)
	res := run(t, env, `populate "x"`)
	if res.OK || !strings.Contains(res.Log, `requires argument "meta"`) {
		t.Fatalf("missing meta: %+v", res)
	}
	res = run(t, env, `populate -m=?FOL "p" "q"`)
	if !res.OK {
		t.Fatalf("Run failed: %s", res.Log)
	}
	if want := "theory generated : ?FOL =\n\tc1 : prop ❙"; res.Items.Values()[0] != want {
		t.Errorf("presentation = %q, want %q", res.Items.Values()[0], want)
	}
	if !reflect.DeepEqual(env.mmt.populate, []string{"p", "q"}) {
		t.Errorf("terms = %q", env.mmt.populate)
	}
}

func TestElpigen(t *testing.T) {
	env := newFakeEnv(t)
	res := run(t, env, "eg -m=simpleprover FOL")
	if got := res.Items.Values(); !reflect.DeepEqual(got, []string{"Successfully created FOL.elpi"}) {
		t.Fatalf("output = %q (%s)", got, res.Log)
	}
	data, err := os.ReadFile(filepath.Join(env.cwd, "FOL.elpi"))
	if err != nil || string(data) != "kind prop type." {
		t.Errorf("file = %q, %v", data, err)
	}
	if env.mmt.elpigen[0] != "simpleprover FOL" {
		t.Errorf("request = %q", env.mmt.elpigen)
	}
}

func TestImport(t *testing.T) {
	env := newFakeEnv(t)
	res := run(t, env, "import Grammar.gf prover.elpi notes.txt")
	if got := res.Items.Values(); !reflect.DeepEqual(got, []string{
		"Successfully imported Grammar.gf",
		"Successfully imported prover.elpi",
		"prover.elpi is the new default file for ELPI commands",
	}) {
		t.Errorf("output = %q", got)
	}
	if !reflect.DeepEqual(res.Items.Errors, []string{"Unknown file extension in file notes.txt"}) {
		t.Errorf("errors = %q", res.Items.Errors)
	}
	if env.gf.lines[0] != "import Grammar.gf" || env.mmt.built[0] != "Grammar.gf" {
		t.Errorf("gf %q, mmt %q", env.gf.lines, env.mmt.built)
	}
	if env.mmt.elpigen[0] != "types Grammar.gf/Grammar" {
		t.Errorf("elpigen = %q", env.mmt.elpigen)
	}
	if _, err := os.Stat(filepath.Join(env.cwd, "Grammar.elpi")); err != nil {
		t.Errorf("exported types missing: %v", err)
	}
	if env.defaultELPI != filepath.Join(env.cwd, "prover.elpi") {
		t.Errorf("default ELPI = %q", env.defaultELPI)
	}
}

func TestImportToleratesSilentBuildFailure(t *testing.T) {
	env := newFakeEnv(t)
	env.mmt.buildErr = &mmt.ServerError{}
	res := run(t, env, "import GrammarEng.gf")
	if len(res.Items.Errors) != 0 || len(env.mmt.elpigen) != 0 {
		t.Errorf("errors = %q, elpigen = %q", res.Items.Errors, env.mmt.elpigen)
	}

	env.gf.respond = func(string) string { return "syntax error" }
	env.mmt.buildErr = &mmt.ServerError{Message: "parse error"}
	res = run(t, env, "import GrammarEng.gf")
	want := "GF import failed:\n    syntax error\nMMT import failed:\n    parse error"
	if !reflect.DeepEqual(res.Items.Errors, []string{want}) {
		t.Errorf("errors = %q", res.Items.Errors)
	}
}

func TestFilter(t *testing.T) {
	env := newFakeEnv(t)
	res := run(t, env, `filter "a" "b"`)
	if !strings.Contains(res.Log, `No ELPI file was specified for the "filter" command`) {
		t.Fatalf("without file: %+v", res)
	}

	env.defaultELPI = "/tmp/prover.elpi"
	env.elpi.run = func(q elpi.Query) (string, string, error) {
		return "filter-output: 1\nconsidered 2 items\n", "", nil
	}
	res = run(t, env, `filter -p=consistent "a" "b"`)
	if got := res.Items.Values(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("kept %q", got)
	}
	if !reflect.DeepEqual(res.Items.Errors, []string{"considered 2 items"}) {
		t.Errorf("errors = %q", res.Items.Errors)
	}
	q := env.elpi.queries[0]
	if q.Goal != "glif.filter consistent" || !q.Typecheck || q.File != "/tmp/prover.elpi" {
		t.Errorf("query = %+v", q)
	}
	if !strings.HasSuffix(q.Stdin, elpi.EndOfItems) {
		t.Errorf("stdin = %q", q.Stdin)
	}
}

func TestQuery(t *testing.T) {
	env := newFakeEnv(t)
	env.defaultELPI = "prover.elpi"
	env.elpi.run = func(q elpi.Query) (string, string, error) {
		if strings.Contains(q.Goal, "bad") {
			return "", "", &elpi.RunError{ExitCode: 1}
		}
		return "X = 1", " Success:\n", nil
	}
	res := run(t, env, `query -n=2 -notc "good X" "bad X"`)
	if got := res.Items.Values(); !reflect.DeepEqual(got, []string{"X = 1\n\nSuccess:"}) {
		t.Errorf("answers = %q", got)
	}
	if len(res.Items.Errors) != 1 || !strings.HasPrefix(res.Items.Errors[0], "ELPI ERROR: 1") {
		t.Errorf("errors = %q", res.Items.Errors)
	}
	if q := env.elpi.queries[0]; q.Goal != "glif.query 2 (good X)" || q.Typecheck {
		t.Errorf("query = %+v", q)
	}
}

func TestApply(t *testing.T) {
	env := newFakeEnv(t)
	env.defaultELPI = "prover.elpi"
	env.elpi.run = func(q elpi.Query) (string, string, error) {
		return "out:" + q.Goal, "", nil
	}
	res := run(t, env, `apply "a" "b"`)
	if got := res.Items.Values(); !reflect.DeepEqual(got, []string{"out:glif.apply_to_item apply", "out:glif.apply_to_item apply"}) {
		t.Errorf("per item = %q", got)
	}
	res = run(t, env, `apply -t -p=count "a" "b"`)
	if got := res.Items.Values(); !reflect.DeepEqual(got, []string{"out:glif.apply_to_items count"}) {
		t.Errorf("together = %q", got)
	}
	last := env.elpi.queries[len(env.elpi.queries)-1]
	if strings.Count(last.Stdin, "glif.mkItem") != 2 {
		t.Errorf("stdin = %q", last.Stdin)
	}
}

func TestStatus(t *testing.T) {
	env := newFakeEnv(t)
	res := run(t, env, "status -lg -gl")
	report := res.Items.Values()[0]
	for _, want := range []string{
		"Current working directory: " + env.cwd,
		"GF STATUS\nGF is running\nGF LOGS\nGF banner",
		"MMT STATUS\nMMT is not running\nLogs from initialization\nFinding mmt.jar: \"Lucky guess\"\nno java",
		"ELPI location: /usr/bin/elpi\nELPI version: 1.18.2",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report lacks %q:\n%s", want, report)
		}
	}
	if res := run(t, env, "status x"); res.OK {
		t.Error("status takes no arguments")
	}
}

func TestArchive(t *testing.T) {
	env := newFakeEnv(t)
	env.archiveLogs = "Successfully created archive a/b"
	res := run(t, env, "archive a/b sub")
	if got := res.Items.Values(); !reflect.DeepEqual(got, []string{"Successfully created archive a/b", "Successfully changed archive"}) {
		t.Errorf("output = %q", got)
	}
	res = run(t, env, "archive broken")
	if res.Items.Len() != 0 || !strings.Contains(res.Log, "MathHub folder not found") {
		t.Errorf("broken = %+v", res)
	}
}
