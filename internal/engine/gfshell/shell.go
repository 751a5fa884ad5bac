// Package gfshell drives a long-running GF (Grammatical Framework) shell
// over its stdin and stdout.
package gfshell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNotFound is returned when no gf executable can be located.
var ErrNotFound = errors.New(`failed to locate executable "gf"`)

// ErrClosed is returned for commands sent after Close or after the process died.
var ErrClosed = errors.New("gf shell is not running")

const shutdownGrace = 2 * time.Second

// Locate resolves the gf binary. A configured path wins over $PATH.
func Locate(configured string) (string, error) {
	name := configured
	if name == "" {
		name = "gf"
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", ErrNotFound
	}
	return p, nil
}

// Shell is a running GF process. Every command is followed by a put_string
// of a unique marker; output up to the echoed marker is the command's response.
type Shell struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	lines   chan string
	done    chan struct{}
	stop    chan struct{}
	stopped sync.Once
	seq     int
	initial string
	logger  *log.Logger
	closed  atomic.Bool
}

// Start launches "gf --run" in dir and waits for its start-up output.
func Start(ctx context.Context, path, dir string, logger *log.Logger) (*Shell, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	cmd := exec.Command(path, "--run")
	cmd.Dir = dir
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("gf stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("gf stdout: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start gf: %w", err)
	}
	logger.Printf("gf: started %s (pid %d) in %s", path, cmd.Process.Pid, dir)

	s := &Shell{
		cmd:    cmd,
		stdin:  stdin,
		lines:  make(chan string, 64),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
		logger: logger,
	}
	go s.readLoop(stdout)

	initial, err := s.roundTrip(ctx, "")
	if err != nil {
		s.kill()
		return nil, fmt.Errorf("gf start-up: %w", err)
	}
	s.initial = initial
	return s, nil
}

func (s *Shell) readLoop(r io.Reader) {
	defer close(s.done)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		select {
		case s.lines <- sc.Text():
		case <-s.stop:
			return
		}
	}
}

// Alive reports whether the process is still there to take commands.
func (s *Shell) Alive() bool {
	if s.closed.Load() {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// InitialOutput returns what GF printed while starting.
func (s *Shell) InitialOutput() string {
	return s.initial
}

// HandleCommand sends one command and returns its output. Newlines in text
// are replaced by spaces since GF reads one command per line.
func (s *Shell) HandleCommand(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return "", ErrClosed
	}
	line := strings.ReplaceAll(text, "\n", " ")
	s.logger.Printf("gf> %s", line)
	return s.roundTrip(ctx, line)
}

func (s *Shell) roundTrip(ctx context.Context, line string) (string, error) {
	s.seq++
	marker := fmt.Sprintf("__glif_end_%d__", s.seq)
	var req strings.Builder
	if line != "" {
		req.WriteString(line + "\n")
	}
	req.WriteString(`ps "` + marker + "\"\n")
	if _, err := io.WriteString(s.stdin, req.String()); err != nil {
		s.closed.Store(true)
		return "", fmt.Errorf("write to gf: %w", err)
	}

	var out []string
	for {
		select {
		case l := <-s.lines:
			if strings.TrimSpace(l) == marker {
				return strings.Join(out, "\n"), nil
			}
			out = append(out, l)
		case <-s.done:
			// Drain what the reader delivered before exiting.
			for {
				select {
				case l := <-s.lines:
					out = append(out, l)
				default:
					s.closed.Store(true)
					return strings.Join(out, "\n"), ErrClosed
				}
			}
		case <-ctx.Done():
			s.closed.Store(true)
			s.kill()
			return strings.Join(out, "\n"), ctx.Err()
		}
	}
}

// Close asks GF to quit and kills it if it does not exit promptly.
func (s *Shell) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() && s.cmd.ProcessState != nil {
		return nil
	}
	s.closed.Store(true)
	_, _ = io.WriteString(s.stdin, "q\n")
	_ = s.stdin.Close()
	s.stopReading()

	waitErr := make(chan error, 1)
	go func() { waitErr <- s.cmd.Wait() }()
	select {
	case <-waitErr:
	case <-time.After(shutdownGrace):
		s.kill()
		<-waitErr
	}
	s.logger.Printf("gf: stopped")
	return nil
}

func (s *Shell) kill() {
	s.stopReading()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}

func (s *Shell) stopReading() {
	s.stopped.Do(func() { close(s.stop) })
}
