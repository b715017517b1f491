// Package render produces thumbnail files, either by driving GraphicsMagick
// and pngquant or natively in Go.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dixieflatline76/UltimateThumb/util/log"
)

// ErrCommandFailed is returned when an external command exits unsuccessfully.
var ErrCommandFailed = errors.New("command failed")

// Runner runs external commands.
type Runner interface {
	Run(ctx context.Context, name string, args []string) error
}

// ExecRunner runs commands with os/exec. Cancelling the context kills the
// process.
type ExecRunner struct{}

// Run executes name with args and waits for it to finish. Stderr is included
// in the returned error.
func (ExecRunner) Run(ctx context.Context, name string, args []string) error {
	log.Debugf("executing %s %s", name, strings.Join(args, " "))

	c := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s: %w: %s", ErrCommandFailed, name, err, msg)
		}
		return fmt.Errorf("%w: %s: %w", ErrCommandFailed, name, err)
	}
	return nil
}

// exitCode returns the exit status carried by err, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
