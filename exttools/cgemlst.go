package exttools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"go.uber.org/zap"
)

// MLSTResult is the sequence type reported by the MLST tool. Known is false
// when the tool could not assign an integer ST; Raw then holds whatever it
// printed instead.
type MLSTResult struct {
	ST    int
	Known bool
	Raw   string
}

func (m MLSTResult) String() string {
	if !m.Known {
		return "None"
	}
	return strconv.Itoa(m.ST)
}

// KnownST returns a Known result for st.
func KnownST(st int) MLSTResult {
	return MLSTResult{ST: st, Known: true, Raw: strconv.Itoa(st)}
}

// mlstScheme is the CGE MLST scheme name for Salmonella enterica.
const mlstScheme = "senterica"

// CGEMLST runs the CGE MLST program against the Salmonella enterica scheme.
type CGEMLST struct {
	Path    string
	DBPath  string
	Python3 string

	// OutDir receives the tool's own output files. If empty, a temporary
	// directory is created per run under TmpDir.
	OutDir string

	// TmpDir is the parent of the per-run output directory. If empty, the
	// system default is used.
	TmpDir string

	Run Runner
}

// resolved returns a copy whose paths no longer depend on the current
// directory, since the tool runs from its output directory.
func (m CGEMLST) resolved() (CGEMLST, error) {
	var err error
	for _, prg := range []*string{&m.Path, &m.Python3} {
		if *prg, err = absProgram(*prg); err != nil {
			return m, err
		}
	}

	dirs, err := absPaths(m.DBPath, m.OutDir, m.TmpDir)
	if err != nil {
		return m, err
	}
	m.DBPath, m.OutDir, m.TmpDir = dirs[0], dirs[1], dirs[2]

	return m, nil
}

func (m CGEMLST) command(ctx context.Context, files []string, outDir string) *exec.Cmd {
	args := interpreted(m.Python3, m.Path)
	args = append(args, "-i")
	args = append(args, files...)
	args = append(args, "-o", outDir, "-s", mlstScheme)
	if m.DBPath != "" {
		args = append(args, "-p", m.DBPath)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = outDir
	cmd.Env = envWithToolDirs(os.Environ(), m.Python3)
	return cmd
}

// SequenceType runs the tool on the input files and parses its report.
func (m CGEMLST) SequenceType(ctx context.Context, files []string) (MLSTResult, error) {
	if m.Path == "" {
		return MLSTResult{}, pfx.Err(fmt.Errorf("no path to the MLST program was configured"))
	}

	m, err := m.resolved()
	if err != nil {
		return MLSTResult{}, pfx.Err(err)
	}
	inputs, err := absPaths(files...)
	if err != nil {
		return MLSTResult{}, pfx.Err(err)
	}

	outDir := m.OutDir
	if outDir == "" {
		dir, err := os.MkdirTemp(m.TmpDir, "mlst_tmp")
		if err != nil {
			return MLSTResult{}, pfx.Err(err)
		}
		defer os.RemoveAll(dir)
		outDir = dir
	} else if err := os.MkdirAll(outDir, 0o755); err != nil {
		return MLSTResult{}, pfx.Err(err)
	}

	stdout, err := m.Run.orDefault()(m.command(ctx, inputs, outDir))
	if err != nil {
		return MLSTResult{}, pfx.Err(err)
	}

	res, err := ParseCGEMLSTOutput(stdout)
	if err != nil {
		return MLSTResult{}, pfx.Err(err)
	}

	zap.S().Infow("MLST finished", "st", res.String(), "files", files)

	return res, nil
}

type cgeMLSTReport struct {
	MLST struct {
		Results struct {
			SequenceType json.RawMessage `json:"sequence_type"`
		} `json:"results"`
	} `json:"mlst"`
}

// ParseCGEMLSTOutput extracts mlst.results.sequence_type from the JSON the
// MLST program prints. The ST may be encoded as a number or a string; values
// that are not an integer, such as "Unknown" or a near-match like "19*",
// yield an unknown result rather than an error.
func ParseCGEMLSTOutput(stdout []byte) (MLSTResult, error) {
	var report cgeMLSTReport
	if err := json.Unmarshal(stdout, &report); err != nil {
		return MLSTResult{}, fmt.Errorf("could not parse MLST output: %w", err)
	}

	raw := report.MLST.Results.SequenceType
	if len(raw) == 0 || string(raw) == "null" {
		return MLSTResult{}, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		text = string(raw)
	}
	text = strings.TrimSpace(text)

	st, err := strconv.Atoi(text)
	if err != nil {
		return MLSTResult{Raw: text}, nil
	}

	return MLSTResult{ST: st, Known: true, Raw: text}, nil
}
