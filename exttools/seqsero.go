package exttools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/carbocation/serovar/antigen"
)

// SeqSero runs SeqSero or SeqSero2 and returns the report it prints.
type SeqSero struct {
	Method antigen.Dialect

	Path        string
	Python2     string
	Python3     string
	Blastn      string
	Makeblastdb string
	Samtools    string
	Bwa         string

	// PreCommands are shell lines run in the same shell before SeqSero, for
	// example to activate a python2 environment.
	PreCommands []string

	// TmpDir is the parent of the per-run working directory. If empty, the
	// system default is used.
	TmpDir string

	// KeepWorkDir leaves the per-run working directory behind for inspection.
	KeepWorkDir bool

	Run Runner
}

// resolved returns a copy whose paths no longer depend on the current
// directory, since the tool runs from its own working directory.
func (s SeqSero) resolved() (SeqSero, error) {
	var err error
	for _, prg := range []*string{&s.Path, &s.Python2, &s.Python3, &s.Blastn, &s.Makeblastdb, &s.Samtools, &s.Bwa} {
		if *prg, err = absProgram(*prg); err != nil {
			return s, err
		}
	}

	dirs, err := absPaths(s.TmpDir)
	if err != nil {
		return s, err
	}
	s.TmpDir = dirs[0]

	return s, nil
}

// Args returns the argv for the configured method.
func (s SeqSero) Args(files []string, seqType SeqType) ([]string, error) {
	mode, err := seqType.seqseroMode()
	if err != nil {
		return nil, err
	}

	var args []string
	switch s.Method {
	case antigen.SeqSero:
		args = interpreted(s.Python2, s.Path)
		args = append(args, "-b", "sam", "-m", mode, "-i")
	case antigen.SeqSero2:
		args = interpreted(s.Python3, s.Path)
		args = append(args, "-t", mode, "-i")
	default:
		return nil, fmt.Errorf("%w: %v", antigen.ErrUnknownDialect, s.Method)
	}

	return append(args, files...), nil
}

func (s SeqSero) command(ctx context.Context, args []string, workDir string) *exec.Cmd {
	var cmd *exec.Cmd
	if len(s.PreCommands) > 0 {
		script := strings.Join(s.PreCommands, "\n") + "\n" + shellquote.Join(args...)
		cmd = exec.CommandContext(ctx, "sh", "-c", script)
	} else {
		cmd = exec.CommandContext(ctx, args[0], args[1:]...)
	}

	cmd.Dir = workDir
	cmd.Env = envWithToolDirs(os.Environ(), s.Python2, s.Python3, s.Blastn, s.Makeblastdb, s.Samtools, s.Bwa)

	return cmd
}

// Report runs the tool on the input files and returns its standard output,
// ready for antigen.ParseString.
func (s SeqSero) Report(ctx context.Context, files []string, seqType SeqType) (string, error) {
	if s.Path == "" {
		return "", pfx.Err(fmt.Errorf("no path to %v was configured", s.Method))
	}
	if err := seqType.Files(files); err != nil {
		return "", pfx.Err(err)
	}

	s, err := s.resolved()
	if err != nil {
		return "", pfx.Err(err)
	}
	inputs, err := absPaths(files...)
	if err != nil {
		return "", pfx.Err(err)
	}

	args, err := s.Args(inputs, seqType)
	if err != nil {
		return "", pfx.Err(err)
	}

	workDir, err := os.MkdirTemp(s.TmpDir, "seqsero_tmp")
	if err != nil {
		return "", pfx.Err(err)
	}
	if s.KeepWorkDir {
		zap.S().Infow("Keeping SeqSero working directory", "dir", workDir)
	} else {
		defer os.RemoveAll(workDir)
	}

	stdout, err := s.Run.orDefault()(s.command(ctx, args, workDir))
	if err != nil {
		return "", pfx.Err(err)
	}

	zap.S().Infow("Antigen prediction finished", "method", s.Method.String(), "files", files)

	return string(stdout), nil
}
