package gfshell

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// fakeGF echoes put_string arguments without quotes, answers "help x" with
// two lines, floods or hangs on request and prints "got: <line>" for
// anything else.
const fakeGF = `#!/bin/sh
echo "banner line"
while IFS= read -r line; do
  case "$line" in
    q) exit 0 ;;
    ps*) echo "${line#ps }" | tr -d '"' ;;
    help*) echo "help text"; echo "  second line" ;;
    die) exit 1 ;;
    flood) i=0; while [ $i -lt 200 ]; do echo "line $i"; i=$((i+1)); done ;;
    hang) exec sleep 30 ;;
    *) echo "got: $line" ;;
  esac
done
`

func startFake(t *testing.T) *Shell {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "gf")
	if err := os.WriteFile(path, []byte(fakeGF), 0o755); err != nil {
		t.Fatalf("write fake gf: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Start(ctx, path, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestShellRoundTrip(t *testing.T) {
	s := startFake(t)
	if !s.Alive() {
		t.Fatal("fresh shell is not alive")
	}
	if got := s.InitialOutput(); got != "banner line" {
		t.Errorf("InitialOutput = %q", got)
	}

	ctx := context.Background()
	out, err := s.HandleCommand(ctx, "parse -lang=Eng \"x\"")
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	if out != `got: parse -lang=Eng "x"` {
		t.Errorf("output = %q", out)
	}

	out, err = s.HandleCommand(ctx, "help\np")
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	if out != "help text\n  second line" {
		t.Errorf("multi-line output = %q", out)
	}
}

func TestShellDies(t *testing.T) {
	s := startFake(t)
	_, err := s.HandleCommand(context.Background(), "die")
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("error = %v, want ErrClosed", err)
	}
	if s.Alive() {
		t.Error("shell is alive after the process exited")
	}
	if _, err := s.HandleCommand(context.Background(), "l"); !errors.Is(err, ErrClosed) {
		t.Errorf("command after exit: error = %v, want ErrClosed", err)
	}
}

func TestShellCancelledCommand(t *testing.T) {
	s := startFake(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := s.HandleCommand(ctx, "hang"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want DeadlineExceeded", err)
	}
	if s.Alive() {
		t.Error("shell is alive after a cancelled command killed it")
	}
}

func TestCloseReleasesReader(t *testing.T) {
	s := startFake(t)
	if _, err := io.WriteString(s.stdin, "flood\n"); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for len(s.lines) < cap(s.lines) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		t.Fatal("reader still blocked on unread output after Close")
	}
}

func TestShellClose(t *testing.T) {
	s := startFake(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s.Alive() {
		t.Error("shell is alive after Close")
	}
	if _, err := s.HandleCommand(context.Background(), "l"); !errors.Is(err, ErrClosed) {
		t.Errorf("error = %v, want ErrClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestLocateMissing(t *testing.T) {
	_, err := Locate(filepath.Join(t.TempDir(), "no-gf-here"))
	if !errors.Is(err, ErrNotFound) || !strings.Contains(err.Error(), `"gf"`) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
