// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package execx runs external programs behind an interface that tests can
// replace. It backs both the pdftotext extractor and the worker-process pool.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// maxStderr bounds how much of a failed command's stderr ends up in its error.
const maxStderr = 2048

// Executor abstracts command execution.
type Executor interface {
	// LookPath resolves file against PATH.
	LookPath(file string) (string, error)

	// RunPiped runs name with args, connecting stdin and stdout. A nil stdin
	// reads from the null device.
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// OS is the production Executor backed by os/exec.
type OS struct{}

// Default is the Executor used when callers do not inject one.
var Default Executor = OS{}

func (OS) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// RunPiped runs the command to completion. On failure the error includes
// the tail of the command's stderr.
func (OS) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = "..." + msg[len(msg)-maxStderr:]
		}
		if msg != "" {
			return fmt.Errorf("running %s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}
