package ipmi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner abstracts the sensor utility invocation so the poll loop can
// be tested with canned output.
type Runner interface {
	// Output runs the utility once and returns its stdout. A non-zero
	// exit or I/O failure is returned as an error; the caller skips
	// the cycle and retries on the next tick.
	Output(ctx context.Context) ([]byte, error)
}

// CLIRunner executes a configured command line with a bounded timeout.
// The command is split on whitespace; shell quoting is not supported,
// which matches how ipmitool invocations are actually written.
type CLIRunner struct {
	name    string
	args    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCLIRunner creates a runner for the given command line. Returns an
// error for an empty command so misconfiguration surfaces at startup
// rather than on the first poll.
func NewCLIRunner(command string, timeout time.Duration, logger *slog.Logger) (*CLIRunner, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("empty sensor command")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIRunner{
		name:    fields[0],
		args:    fields[1:],
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Output implements [Runner].
func (r *CLIRunner) Output(ctx context.Context) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.name, r.args...)
	r.logger.Debug("executing sensor command", "command", r.name, "args", r.args)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			return nil, fmt.Errorf("%s exited %d: %s", r.name, exitErr.ExitCode(), stderr)
		}
		return nil, fmt.Errorf("run %s: %w", r.name, err)
	}

	return out, nil
}
