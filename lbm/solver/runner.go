package solver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Runner executes a launcher script from a working directory and blocks
// until it exits.
type Runner interface {
	Run(ctx context.Context, dir, script string) error
}

// ExecRunner runs scripts with a shell, streaming the solver's stdout to the
// log at info level and stderr at warn level.
type ExecRunner struct {
	Shell string // defaults to "bash"
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, dir, script string) error {
	shell := r.Shell
	if shell == "" {
		shell = "bash"
	}
	stdout := logrus.StandardLogger().WriterLevel(logrus.InfoLevel)
	defer func() { _ = stdout.Close() }()
	stderr := logrus.StandardLogger().WriterLevel(logrus.WarnLevel)
	defer func() { _ = stderr.Close() }()

	// script is relative to the caller's working directory, not to dir
	abs, err := filepath.Abs(script)
	if err != nil {
		return fmt.Errorf("run %s: %w", script, err)
	}
	cmd := exec.CommandContext(ctx, shell, abs)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	logrus.Debugf("Executing: %s %s (dir=%s)", shell, script, dir)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", script, err)
	}
	return nil
}

// WriteScript writes a one-line launcher script.
func WriteScript(path, command string) error {
	if err := os.WriteFile(path, []byte(command+"\n"), 0o755); err != nil {
		return fmt.Errorf("write launcher script: %w", err)
	}
	return nil
}

// Command builds the MPI launch line of a solver executable.
func Command(launcher string, procs int, executable, inputFile string) string {
	return strings.Join([]string{launcher, "-np", fmt.Sprint(procs), executable, inputFile}, " ")
}

// Call is one FakeRunner invocation.
type Call struct {
	Dir     string
	Script  string
	Command string // script content without the trailing newline
}

// FakeRunner records invocations instead of executing them. If OnRun is not
// nil it is run in place of the script, e.g. to write the output a real
// solver would produce.
type FakeRunner struct {
	OnRun func(call Call) error

	mu    sync.Mutex
	calls []Call
}

// Run implements Runner.
func (f *FakeRunner) Run(ctx context.Context, dir, script string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(script)
	if err != nil {
		return fmt.Errorf("run %s: %w", script, err)
	}
	call := Call{Dir: dir, Script: script, Command: strings.TrimRight(string(data), "\n")}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	if f.OnRun != nil {
		return f.OnRun(call)
	}
	return nil
}

// Calls returns the recorded invocations.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
