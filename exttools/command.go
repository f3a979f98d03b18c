// Package exttools runs the external typing programs (CGE MLST, SeqSero,
// SeqSero2) and hands their output to the typing packages as plain data. Every
// process gets its own working directory and environment; the calling
// process's environment and working directory are never changed.
package exttools

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/carbocation/serovar"
)

// Runner executes cmd and returns its standard output. Tests substitute a fake.
type Runner func(cmd *exec.Cmd) ([]byte, error)

// CommandError carries the output of a failed external program.
type CommandError struct {
	Command string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %v: %s", e.Command, e.Err, strings.TrimSpace(e.Stderr))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// RunCommand is the default Runner.
func RunCommand(cmd *exec.Cmd) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	zap.S().Debugw("Running external command", "cmd", cmd.String(), "dir", cmd.Dir)

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), &CommandError{
			Command: cmd.String(),
			Stdout:  stdout.String(),
			Stderr:  stderr.String(),
			Err:     err,
		}
	}

	if stderr.Len() > 0 {
		zap.S().Debugw("External command wrote to stderr", "cmd", cmd.Path, "stderr", stderr.String())
	}

	return stdout.Bytes(), nil
}

func (r Runner) orDefault() Runner {
	if r == nil {
		return RunCommand
	}
	return r
}

// hasDir reports whether prg is a path rather than a bare name to look up on
// PATH.
func hasDir(prg string) bool {
	return strings.ContainsRune(prg, filepath.Separator) || strings.ContainsRune(prg, '/')
}

// absProgram makes a program path absolute so that it still resolves from the
// per-run working directory. Bare names are left for PATH lookup.
func absProgram(prg string) (string, error) {
	if prg == "" || !hasDir(prg) {
		return prg, nil
	}
	return filepath.Abs(serovar.ExpandHome(prg))
}

// absPaths resolves every non-empty path against the current directory.
func absPaths(paths ...string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(serovar.ExpandHome(p))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out[i] = abs
	}
	return out, nil
}

// interpreted returns the argv prefix for a script. Scripts referenced by a
// path with a directory part are run through the interpreter; bare names are
// expected to be executable on PATH.
func interpreted(interpreter, script string) []string {
	if hasDir(script) && interpreter != "" {
		return []string{interpreter, script}
	}
	return []string{script}
}

// envWithToolDirs returns env with the directories of the given programs
// appended to PATH. Programs given as bare names add nothing.
func envWithToolDirs(env []string, programs ...string) []string {
	var dirs []string
	seen := make(map[string]struct{})
	for _, prg := range programs {
		if prg == "" || !hasDir(prg) {
			continue
		}
		dir, err := filepath.Abs(filepath.Dir(prg))
		if err != nil {
			continue
		}
		if _, exists := seen[dir]; exists {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	out := make([]string, 0, len(env)+1)
	path := ""
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			path = strings.TrimPrefix(kv, "PATH=")
			continue
		}
		out = append(out, kv)
	}

	parts := make([]string, 0, len(dirs)+1)
	if path != "" {
		parts = append(parts, path)
	}
	parts = append(parts, dirs...)

	return append(out, "PATH="+strings.Join(parts, string(os.PathListSeparator)))
}
