package agent

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ExitKind classifies how a command finished.
type ExitKind int

const (
	// ExitNormal means the process exited on its own; Code holds the
	// exit status.
	ExitNormal ExitKind = iota
	// ExitTimeout means the process was killed after the deadline.
	ExitTimeout
	// ExitSpawnError means the process could not be started at all.
	ExitSpawnError
)

// CommandResult is the observable outcome of one shell command. It is
// built once per run action, folded into feedback text, and discarded.
type CommandResult struct {
	Stdout string
	Stderr string
	Kind   ExitKind
	Code   int
}

// Success reports a clean zero exit.
func (r CommandResult) Success() bool {
	return r.Kind == ExitNormal && r.Code == 0
}

// ExitLabel renders the exit status for feedback text.
func (r CommandResult) ExitLabel() string {
	switch r.Kind {
	case ExitTimeout:
		return "TIMEOUT"
	case ExitSpawnError:
		return "SPAWN_ERROR"
	default:
		return strconv.Itoa(r.Code)
	}
}

// StreamName identifies which output channel a live line came from.
type StreamName string

const (
	StreamStdout StreamName = "stdout"
	StreamStderr StreamName = "stderr"
)

// ShellRunner executes one shell command at a time in the current
// working directory under a hard timeout.
type ShellRunner struct {
	// Shell is the interpreter, "sh" by default.
	Shell string
	// Timeout is the hard deadline per command.
	Timeout time.Duration
	// StdoutTail/StderrTail bound the accumulated output returned to
	// the caller (most recent N characters).
	StdoutTail int
	StderrTail int
	// OnLine, when set, receives every output line as it arrives, for
	// live display. It is called from the reader goroutines.
	OnLine func(stream StreamName, line string)
}

// Run executes command and always returns a CommandResult: spawn
// failures and timeouts are encoded in the result, never raised. Both
// output streams are drained concurrently and fully joined before the
// result is returned.
func (r *ShellRunner) Run(ctx context.Context, command string) CommandResult {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, shell, "-c", command)
	// The shell runs in its own process group so the deadline kills
	// every descendant, not just the shell. Without this a forked
	// grandchild survives and keeps the pipes open past the deadline.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	// Backstop for commands that exit while a backgrounded child still
	// holds the pipes: force-close them after a short grace period.
	cmd.WaitDelay = time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return CommandResult{Kind: ExitSpawnError, Stderr: err.Error()}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return CommandResult{Kind: ExitSpawnError, Stderr: err.Error()}
	}

	if err := cmd.Start(); err != nil {
		return CommandResult{Kind: ExitSpawnError, Stderr: err.Error()}
	}

	var outLines, errLines []string
	g := new(errgroup.Group)
	g.Go(func() error {
		sc := bufio.NewScanner(stdout)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := sc.Text()
			outLines = append(outLines, line)
			if r.OnLine != nil {
				r.OnLine(StreamStdout, line)
			}
		}
		return nil
	})
	g.Go(func() error {
		sc := bufio.NewScanner(stderr)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := sc.Text()
			errLines = append(errLines, line)
			if r.OnLine != nil {
				r.OnLine(StreamStderr, line)
			}
		}
		return nil
	})

	// Wait first: once the child exits (or the group is killed), the
	// WaitDelay grace period guarantees the pipes get closed, which
	// unblocks the readers. Both are joined before any result is
	// reported.
	waitErr := cmd.Wait()
	_ = g.Wait()

	result := CommandResult{}
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.Kind = ExitTimeout
		errLines = append(errLines, "Timed out after "+timeout.String()+".")
		if r.OnLine != nil {
			r.OnLine(StreamStderr, "[timed out]")
		}
	case errors.Is(waitErr, exec.ErrWaitDelay):
		// Clean exit, but an abandoned descendant kept the pipes open
		// until the grace period expired. The command itself succeeded.
	case waitErr != nil:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.Code = exitErr.ExitCode()
		} else {
			result.Kind = ExitSpawnError
			errLines = append(errLines, waitErr.Error())
		}
	}

	result.Stdout = tail(strings.Join(outLines, "\n"), r.StdoutTail)
	result.Stderr = tail(strings.Join(errLines, "\n"), r.StderrTail)

	log.Debug().
		Str("component", "exec").
		Str("exit", result.ExitLabel()).
		Int("stdout_lines", len(outLines)).
		Int("stderr_lines", len(errLines)).
		Msg("command finished")
	return result
}

// tail keeps the most recent max characters of s.
func tail(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
