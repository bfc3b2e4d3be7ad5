package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// stderrTail bounds how much stderr is kept on a CommandError and in logs.
const stderrTail = 8 << 10

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// CommandError reports a failed tesseract or pdftoppm invocation.
type CommandError struct {
	Name     string
	ExitCode int // -1 when the process never ran or was killed
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Name, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()
	if err == nil {
		logger.Debug("ocr.exec.ok", "cmd", name, "elapsed_ms", elapsed, "stdout_bytes", out.Len())
		return out.Bytes(), errb.Bytes(), nil
	}

	cerr := &CommandError{
		Name:     name,
		ExitCode: -1,
		Stderr:   strings.TrimSpace(truncate(errb.String(), stderrTail)),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cerr.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		cerr.Err = errors.Join(err, ctxErr)
	}
	logger.Error("ocr.exec.failed",
		"cmd", name,
		"args", strings.Join(args, " "),
		"elapsed_ms", elapsed,
		"exit_code", cerr.ExitCode,
		"stderr", cerr.Stderr,
		"error", err,
	)
	return out.Bytes(), errb.Bytes(), cerr
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
