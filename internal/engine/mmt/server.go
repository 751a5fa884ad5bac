package mmt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultStartupTimeout bounds how long StartServer waits for MMT.
const DefaultStartupTimeout = 60 * time.Second

const (
	startedMarker = "Server started at"
	maxStartLog   = 500
	maxTailLog    = 1000
)

// ServerOptions configures the MMT server process.
type ServerOptions struct {
	Java           string // java binary, "java" if empty
	Jar            string // path to mmt.jar
	Port           int    // 0 picks a free port
	StartupTimeout time.Duration
	Logger         *log.Logger
}

// Server is a running MMT shell with its HTTP server enabled.
type Server struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	port   int
	logger *log.Logger
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error

	mu       sync.Mutex
	startLog []string
	tailLog  []string
}

// FreePort asks the kernel for an unused local port.
func FreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, fmt.Errorf("find free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// ShellCommands returns the MMT shell script that loads the GLIF
// extensions and starts the HTTP server.
func ShellCommands(port int) string {
	cmds := []string{
		"extension " + BuildExtension,
		"extension " + ConstructExtension,
		"extension " + ELPIExtension,
		fmt.Sprintf("server on %d", port),
	}
	return strings.Join(cmds, " ; ")
}

// StartServer launches MMT and blocks until it reports that its HTTP server
// is up, the process exits, or the startup timeout passes.
func StartServer(ctx context.Context, opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	java := opts.Java
	if java == "" {
		java = "java"
	}
	timeout := opts.StartupTimeout
	if timeout <= 0 {
		timeout = DefaultStartupTimeout
	}
	port := opts.Port
	if port == 0 {
		p, err := FreePort()
		if err != nil {
			return nil, err
		}
		port = p
	}

	cmd := exec.Command(java, "-jar", opts.Jar, "--keepalive", "--shell", ShellCommands(port))
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("mmt stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("mmt stdout: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mmt: %w", err)
	}
	logger.Printf("mmt: started %s -jar %s on port %d (pid %d)", java, opts.Jar, port, cmd.Process.Pid)

	s := &Server{cmd: cmd, stdin: stdin, port: port, logger: logger, done: make(chan struct{})}
	started := make(chan struct{})
	go s.readLogs(stdout, started)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-started:
		return s, nil
	case <-s.done:
		_ = cmd.Wait()
		return nil, &StartError{Reason: "MMT exited during start-up", Logs: s.StartLog()}
	case <-timer.C:
		s.kill()
		_ = cmd.Wait()
		return nil, &StartError{Reason: fmt.Sprintf("MMT did not start within %s", timeout), Logs: s.StartLog()}
	case <-ctx.Done():
		s.kill()
		_ = cmd.Wait()
		return nil, ctx.Err()
	}
}

// StartError reports a failed server start together with what MMT printed.
type StartError struct {
	Reason string
	Logs   []string
}

func (e *StartError) Error() string {
	if len(e.Logs) == 0 {
		return e.Reason
	}
	return e.Reason + "\n" + strings.Join(e.Logs, "\n")
}

func (s *Server) readLogs(r io.Reader, started chan<- struct{}) {
	defer close(s.done)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	signalled := false
	for sc.Scan() {
		line := sc.Text()
		s.mu.Lock()
		if len(s.startLog) < maxStartLog || !signalled {
			s.startLog = append(s.startLog, line)
		} else {
			if len(s.tailLog) > maxTailLog {
				s.tailLog = append([]string(nil), s.tailLog[maxTailLog/2:]...)
			}
			s.tailLog = append(s.tailLog, line)
		}
		s.mu.Unlock()
		if !signalled && strings.Contains(line, startedMarker) {
			signalled = true
			close(started)
		}
	}
}

// Port returns the HTTP port.
func (s *Server) Port() int {
	return s.port
}

// BaseURL returns the root URL of the HTTP server.
func (s *Server) BaseURL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// StartLog returns the first lines MMT printed.
func (s *Server) StartLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.startLog...)
}

// TailLog returns the most recent lines after the start log filled up.
func (s *Server) TailLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tailLog...)
}

// Close stops the HTTP server and the MMT shell. It is safe to call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		_, _ = io.WriteString(s.stdin, "server off\nexit\n")
		_ = s.stdin.Close()
		s.kill()
		err := s.cmd.Wait()
		<-s.done
		s.logger.Printf("mmt: stopped")
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			s.closeErr = fmt.Errorf("stop mmt: %w", err)
		}
	})
	return s.closeErr
}

func (s *Server) kill() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}
