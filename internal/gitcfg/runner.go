package gitcfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/mirrorkit/mirrorkit/internal/mirror"
	"github.com/mirrorkit/mirrorkit/internal/platform"
)

// Runner invokes git with args and returns its standard output.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExitError is returned when git exits with a non-zero status.
type ExitError struct {
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("git %s: exit status %d", strings.Join(e.Args, " "), e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ExitError) Unwrap() error { return mirror.ErrToolInvocation }

// ExitCode returns the exit status carried by err, or -1.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

// ExecRunner runs the real git binary.
type ExecRunner struct {
	// Binary is the git executable; "git" when empty.
	Binary string
	// Timeout bounds each invocation; no bound when zero.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Run executes git with args.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = "git"
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.SysProcAttr = platform.SysProcAttr()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.logger().Debug("git", "args", args, "elapsed", time.Since(start), "err", err)

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: git %s: %w", mirror.ErrToolInvocation, strings.Join(args, " "), ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), &ExitError{Args: args, Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return nil, fmt.Errorf("%w: running %s: %w", mirror.ErrToolInvocation, bin, err)
	}
	return stdout.Bytes(), nil
}

// LookPath reports where the configured binary resolves on PATH.
func (r *ExecRunner) LookPath() (string, error) {
	bin := r.Binary
	if bin == "" {
		bin = "git"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("%w: %w", mirror.ErrToolInvocation, err)
	}
	return path, nil
}

func (r *ExecRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
