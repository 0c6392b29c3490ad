// Package proc runs external tools as child processes under cooperative
// cancellation. Every child is started in its own process group so that
// cancellation can reclaim the whole tree, including grandchildren the tool
// forked itself.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"syscall"
	"time"

	"github.com/kaiachai/scanpipe/logging"
)

// DefaultGrace is the window between SIGTERM and SIGKILL when a run is
// cancelled.
const DefaultGrace = 5 * time.Second

// Spec describes one tool invocation.
type Spec struct {
	Command string
	Args    []string
	Dir     string
	Env     map[string]string
}

// Output is the collected result of a tool invocation. On cancellation the
// buffers hold whatever the tool produced before it was terminated.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
	TimedOut bool
}

// Combined returns stdout followed by stderr.
func (o *Output) Combined() []byte {
	combined := make([]byte, 0, len(o.Stdout)+len(o.Stderr))
	combined = append(combined, o.Stdout...)
	combined = append(combined, o.Stderr...)
	return combined
}

// Runner is the process boundary the tool adapters depend on. Tests
// substitute a fake.
type Runner interface {
	// Run executes the spec and blocks until the process tree is fully
	// reclaimed. When ctx ends first, Run terminates the process group,
	// waits for it, and returns the partial Output together with ctx's
	// error. Invocation failures (e.g. binary not found) return a nil
	// Output.
	Run(ctx context.Context, spec Spec) (*Output, error)
}

// GroupRunner runs commands in their own process group and escalates from
// SIGTERM to SIGKILL when a cancelled command does not exit within the grace
// window.
type GroupRunner struct {
	Grace  time.Duration
	Logger logging.Logger
}

// NewGroupRunner creates a GroupRunner with the default grace window.
func NewGroupRunner(logger logging.Logger) *GroupRunner {
	return &GroupRunner{Grace: DefaultGrace, Logger: logger}
}

func (r *GroupRunner) grace() time.Duration {
	if r.Grace > 0 {
		return r.Grace
	}
	return DefaultGrace
}

func (r *GroupRunner) logger() logging.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.NopLogger{}
}

// Run implements Runner.
func (r *GroupRunner) Run(ctx context.Context, spec Spec) (*Output, error) {
	if spec.Command == "" {
		return nil, fmt.Errorf("empty command")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = buildEnv(spec.Env)
	// New process group: cancellation signals the group, not just the
	// direct child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", spec.Command, err)
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	var waitErr error
	interrupted := false
	select {
	case waitErr = <-waitCh:
	case <-ctx.Done():
		interrupted = true
		r.signalGroup(cmd, syscall.SIGTERM)
		graceTimer := time.NewTimer(r.grace())
		select {
		case waitErr = <-waitCh:
			graceTimer.Stop()
		case <-graceTimer.C:
			r.logger().Warn("process did not exit after SIGTERM, killing group", map[string]any{
				"command": spec.Command,
				"pid":     cmd.Process.Pid,
			})
			r.signalGroup(cmd, syscall.SIGKILL)
			waitErr = <-waitCh
		}
	}

	out := &Output{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode(waitErr),
		Duration: time.Since(start),
		TimedOut: interrupted && errors.Is(ctx.Err(), context.DeadlineExceeded),
	}

	if interrupted {
		return out, ctx.Err()
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return out, fmt.Errorf("waiting for %s: %w", spec.Command, waitErr)
	}
	return out, nil
}

// signalGroup signals the whole process group. Signalling an already-dead
// group is a no-op, which keeps cancellation idempotent.
func (r *GroupRunner) signalGroup(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, sig); err != nil && !errors.Is(err, syscall.ESRCH) {
		r.logger().Warn("signalling process group", map[string]any{
			"pid":    cmd.Process.Pid,
			"signal": sig.String(),
			"error":  err.Error(),
		})
	}
}

func exitCode(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
