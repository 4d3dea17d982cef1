// Package execbridge runs external command-line tools and captures their
// output. The ledger tooling is reached exclusively through this bridge, so
// every caller sees one uniform result shape regardless of how the process
// failed.
package execbridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"
)

// SpawnExitCode is the sentinel exit code reported when the process could not
// be started at all (binary missing, permission denied, context canceled
// before start). Callers get one failure path: inspect ExitCode and Stderr.
const SpawnExitCode = -1

// Command describes one external tool invocation. Argv is passed to the OS
// directly; nothing is ever interpreted by a shell.
type Command struct {
	Argv    []string
	Dir     string
	Env     map[string]string
	Timeout time.Duration
}

// Result is what every invocation produces. A non-zero ExitCode is not an
// error at this layer; the caller decides what success means.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Ok reports whether the process exited with status zero.
func (r Result) Ok() bool {
	return r.ExitCode == 0
}

// Runner executes external commands. The concrete implementation spawns real
// processes; tests substitute their own.
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// Local runs commands on the host via os/exec.
type Local struct{}

func NewLocal() *Local {
	return &Local{}
}

// Run spawns the command and blocks until it exits or the context (plus the
// optional per-command timeout) is done. Both output streams are drained
// concurrently with the process so a full pipe buffer can never stall it.
func (l *Local) Run(ctx context.Context, cmd Command) Result {
	if len(cmd.Argv) == 0 {
		return Result{ExitCode: SpawnExitCode, Stderr: "execbridge: empty argv"}
	}

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	proc := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	proc.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		env := os.Environ()
		for k, v := range cmd.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		proc.Env = env
	}

	stdout, err := proc.StdoutPipe()
	if err != nil {
		return Result{ExitCode: SpawnExitCode, Stderr: err.Error()}
	}
	stderr, err := proc.StderrPipe()
	if err != nil {
		return Result{ExitCode: SpawnExitCode, Stderr: err.Error()}
	}

	if err := proc.Start(); err != nil {
		return Result{ExitCode: SpawnExitCode, Stderr: err.Error()}
	}

	var outBuf, errBuf bytes.Buffer
	g := new(errgroup.Group)
	g.Go(func() error {
		_, copyErr := io.Copy(&outBuf, stdout)
		return copyErr
	})
	g.Go(func() error {
		_, copyErr := io.Copy(&errBuf, stderr)
		return copyErr
	})
	// Pipes must be fully drained before Wait closes them.
	drainErr := g.Wait()
	waitErr := proc.Wait()

	result := Result{Stdout: outBuf.String(), Stderr: errBuf.String()}

	switch {
	case waitErr == nil:
		result.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = SpawnExitCode
			result.Stderr = appendLine(result.Stderr, waitErr.Error())
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		// The process was killed by timeout or cancellation; make the cause
		// visible to the caller instead of a bare "signal: killed".
		result.Stderr = appendLine(result.Stderr, ctxErr.Error())
	}
	if drainErr != nil {
		result.Stderr = appendLine(result.Stderr, drainErr.Error())
	}

	return result
}

func appendLine(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}
