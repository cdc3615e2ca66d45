package scdl

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// Interval between "still running" log lines for long downloads
var progressLogInterval = 10 * time.Second

// How long Wait may block on open output pipes after the process was killed
const pipeWaitDelay = 2 * time.Second

// Runner executes an external command in dir and returns its captured output
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = pipeWaitDelay
	killProcessGroup(cmd)

	// The buffers belong to the copy goroutines until Wait returns
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	ticker := time.NewTicker(progressLogInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), err
		case <-ticker.C:
			slog.Debug("Command still in progress",
				"command", name,
				"pid", cmd.Process.Pid,
				"elapsed", time.Since(start).Round(time.Second),
			)
		}
	}
}
