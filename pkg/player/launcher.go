// Package player starts the external media player for a mapped path.
package player

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when the configured executable is empty or
// missing on disk.
var ErrNotFound = errors.New("player executable not found")

// SpawnError reports that the OS refused to start the player.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start player %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Launcher starts player processes without waiting for them. Every call
// leaves an independent child behind; nothing limits how many accumulate.
type Launcher struct {
	logger *slog.Logger
}

// NewLauncher creates a launcher that logs spawned processes to logger.
func NewLauncher(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{logger: logger}
}

// Launch starts executable with target as its only argument and returns as
// soon as the process has been created.
func (l *Launcher) Launch(executable, target string) error {
	executable = cleanArg(executable)
	target = cleanArg(target)

	if !Exists(executable) {
		return fmt.Errorf("%w: %s", ErrNotFound, executable)
	}

	cmd := exec.Command(executable, target)
	// No stdio: the player is a GUI program and must not hold our handles.
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		return &SpawnError{Path: executable, Err: err}
	}

	l.logger.Info("player started", "pid", cmd.Process.Pid, "executable", executable, "target", target)

	// Reap the child whenever it exits; the caller never waits for it.
	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Debug("player exited", "pid", cmd.Process.Pid, "error", err)
		}
	}()
	return nil
}

// Exists reports whether executable, after the same cleanup Launch applies,
// names something on disk.
func Exists(executable string) bool {
	executable = cleanArg(executable)
	if executable == "" {
		return false
	}
	_, err := os.Stat(executable)
	return err == nil
}

// cleanArg trims whitespace and one pair of surrounding double quotes, as
// left behind by "Copy as path" in Windows Explorer. A lone quote on one side
// is kept, so a half-pasted path fails the existence check visibly.
func cleanArg(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}
