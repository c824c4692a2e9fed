// Package opener launches external viewers for display handles.
package opener

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// SystemOpener opens files with a configured viewer or the OS default application
type SystemOpener struct {
	goos  string
	start func(*exec.Cmd) error
}

func NewSystemOpener() *SystemOpener {
	return &SystemOpener{
		goos:  runtime.GOOS,
		start: func(c *exec.Cmd) error { return c.Start() },
	}
}

// Command builds the launch command without running it.
// A viewer may carry its own arguments, e.g. "mpv --loop".
func Command(goos, path, viewer string) *exec.Cmd {
	if fields := strings.Fields(viewer); len(fields) > 0 {
		args := append(fields[1:], path)
		return exec.Command(fields[0], args...)
	}

	switch goos {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// Open starts the viewer detached, so it can outlive the command that launched it
func (o *SystemOpener) Open(ctx context.Context, path string, viewer string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := Command(o.goos, path, viewer)
	if err := o.start(cmd); err != nil {
		if viewer != "" {
			return fmt.Errorf("failed to open '%s' with '%s': %w", path, viewer, err)
		}
		return fmt.Errorf("failed to open '%s': %w", path, err)
	}

	// Reap the child in the background; the viewer's exit status is not ours to report
	if cmd.Process != nil {
		go func() { _ = cmd.Wait() }()
	}
	return nil
}
