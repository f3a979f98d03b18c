package exttools

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbocation/serovar/antigen"
)

// recorder is a Runner that keeps the command it was given and replies with
// canned output.
type recorder struct {
	cmd    *exec.Cmd
	stdout string
	err    error
}

func (r *recorder) run(cmd *exec.Cmd) ([]byte, error) {
	r.cmd = cmd
	return []byte(r.stdout), r.err
}

func envPath(env []string) string {
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			return strings.TrimPrefix(kv, "PATH=")
		}
	}
	return ""
}

func TestParseSeqType(t *testing.T) {
	for name, want := range map[string]SeqType{"paired": Paired, "Single": Single, " assembled ": Assembled} {
		got, err := ParseSeqType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}

	_, err := ParseSeqType("nanopore")
	assert.ErrorIs(t, err, ErrUnknownSeqType)
}

func TestSeqTypeFiles(t *testing.T) {
	assert.NoError(t, Paired.Files([]string{"a_R1.fq", "a_R2.fq"}))
	assert.Error(t, Paired.Files([]string{"a.fq"}))
	assert.NoError(t, Assembled.Files([]string{"a.fasta"}))
	assert.Error(t, Single.Files([]string{"a.fq", "b.fq"}))
}

func TestParseCGEMLSTOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want MLSTResult
	}{
		{"string st", `{"mlst":{"results":{"sequence_type":"19","allele_profile":{}}}}`, MLSTResult{ST: 19, Known: true, Raw: "19"}},
		{"numeric st", `{"mlst":{"results":{"sequence_type":11}}}`, MLSTResult{ST: 11, Known: true, Raw: "11"}},
		{"unknown", `{"mlst":{"results":{"sequence_type":"Unknown"}}}`, MLSTResult{Raw: "Unknown"}},
		{"near match", `{"mlst":{"results":{"sequence_type":"19*"}}}`, MLSTResult{Raw: "19*"}},
		{"missing", `{"mlst":{"results":{}}}`, MLSTResult{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCGEMLSTOutput([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCGEMLSTOutput([]byte("Traceback (most recent call last):"))
	assert.Error(t, err)
}

func TestMLSTResultString(t *testing.T) {
	assert.Equal(t, "19", KnownST(19).String())
	assert.Equal(t, "None", MLSTResult{Raw: "Unknown"}.String())
}

func TestCGEMLSTCommand(t *testing.T) {
	rec := &recorder{stdout: `{"mlst":{"results":{"sequence_type":"34"}}}`}
	out := t.TempDir()
	m := CGEMLST{
		Path:    "/opt/mlst/mlst.py",
		DBPath:  "/opt/mlst_db",
		Python3: "/opt/py3/bin/python3",
		OutDir:  out,
		Run:     rec.run,
	}

	res, err := m.SequenceType(context.Background(), []string{"/data/r1.fq", "/data/r2.fq"})
	require.NoError(t, err)
	assert.Equal(t, KnownST(34), res)

	require.NotNil(t, rec.cmd)
	assert.Equal(t, []string{
		"/opt/py3/bin/python3", "/opt/mlst/mlst.py",
		"-i", "/data/r1.fq", "/data/r2.fq",
		"-o", out, "-s", "senterica", "-p", "/opt/mlst_db",
	}, rec.cmd.Args)
	assert.Equal(t, out, rec.cmd.Dir)
	assert.Contains(t, envPath(rec.cmd.Env), "/opt/py3/bin")
}

func TestCGEMLSTBareName(t *testing.T) {
	rec := &recorder{stdout: `{"mlst":{"results":{"sequence_type":"1"}}}`}
	m := CGEMLST{Path: "mlst", Python3: "python3", Run: rec.run}

	_, err := m.SequenceType(context.Background(), []string{"/data/a.fasta"})
	require.NoError(t, err)
	assert.Equal(t, "mlst", rec.cmd.Args[0])
	assert.NotContains(t, rec.cmd.Args, "-p")

	// The per-run output directory is removed afterwards
	_, statErr := os.Stat(rec.cmd.Dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCGEMLSTFailure(t *testing.T) {
	boom := errors.New("exit status 1")
	rec := &recorder{err: &CommandError{Command: "mlst", Stderr: "no database", Err: boom}}
	m := CGEMLST{Path: "mlst", Run: rec.run}

	_, err := m.SequenceType(context.Background(), []string{"a.fasta"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database")

	_, err = CGEMLST{}.SequenceType(context.Background(), []string{"a.fasta"})
	assert.Error(t, err)
}

func TestSeqSeroArgs(t *testing.T) {
	tests := []struct {
		name    string
		tool    SeqSero
		seqType SeqType
		files   []string
		want    []string
	}{
		{
			name:    "seqsero paired via python2",
			tool:    SeqSero{Method: antigen.SeqSero, Path: "/opt/SeqSero/SeqSero.py", Python2: "/usr/bin/python2"},
			seqType: Paired,
			files:   []string{"r1.fq", "r2.fq"},
			want:    []string{"/usr/bin/python2", "/opt/SeqSero/SeqSero.py", "-b", "sam", "-m", "2", "-i", "r1.fq", "r2.fq"},
		},
		{
			name:    "seqsero assembly on PATH",
			tool:    SeqSero{Method: antigen.SeqSero, Path: "SeqSero.py", Python2: "/usr/bin/python2"},
			seqType: Assembled,
			files:   []string{"a.fasta"},
			want:    []string{"SeqSero.py", "-b", "sam", "-m", "4", "-i", "a.fasta"},
		},
		{
			name:    "seqsero2 single",
			tool:    SeqSero{Method: antigen.SeqSero2, Path: "/opt/SeqSero2/SeqSero2_package.py", Python3: "python3"},
			seqType: Single,
			files:   []string{"r.fq"},
			want:    []string{"python3", "/opt/SeqSero2/SeqSero2_package.py", "-t", "3", "-i", "r.fq"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tool.Args(tt.files, tt.seqType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := SeqSero{Method: antigen.Dialect(9), Path: "x"}.Args([]string{"a"}, Assembled)
	assert.ErrorIs(t, err, antigen.ErrUnknownDialect)
}

func TestSeqSeroReport(t *testing.T) {
	report := "O antigen prediction:\t4\nPredicted serotype(s):\tTyphimurium\n"
	rec := &recorder{stdout: report}
	parent := t.TempDir()
	s := SeqSero{
		Method:   antigen.SeqSero,
		Path:     "/opt/SeqSero/SeqSero.py",
		Python2:  "/opt/py2/bin/python2",
		Samtools: "/opt/samtools/bin/samtools",
		Bwa:      "bwa",
		TmpDir:   parent,
		Run:      rec.run,
	}

	got, err := s.Report(context.Background(), []string{"r1.fq", "r2.fq"}, Paired)
	require.NoError(t, err)
	assert.Equal(t, report, got)

	// Runs in a fresh directory under TmpDir that is cleaned up afterwards
	assert.Equal(t, parent, filepath.Dir(rec.cmd.Dir))
	_, statErr := os.Stat(rec.cmd.Dir)
	assert.True(t, os.IsNotExist(statErr))

	path := envPath(rec.cmd.Env)
	assert.Contains(t, path, "/opt/py2/bin")
	assert.Contains(t, path, "/opt/samtools/bin")

	// The calling process is untouched
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.NotEqual(t, rec.cmd.Dir, wd)
	assert.NotContains(t, os.Getenv("PATH"), "/opt/samtools/bin")
}

func TestSeqSeroPreCommands(t *testing.T) {
	rec := &recorder{}
	s := SeqSero{
		Method:      antigen.SeqSero,
		Path:        "SeqSero.py",
		PreCommands: []string{"source /opt/conda/bin/activate py2"},
		Run:         rec.run,
	}

	_, err := s.Report(context.Background(), []string{"/data/my reads.fasta"}, Assembled)
	require.NoError(t, err)
	require.Len(t, rec.cmd.Args, 3)
	assert.Equal(t, []string{"sh", "-c"}, rec.cmd.Args[:2])
	assert.Equal(t, "source /opt/conda/bin/activate py2\nSeqSero.py -b sam -m 4 -i '/data/my reads.fasta'", rec.cmd.Args[2])
}

func TestSeqSeroReportValidation(t *testing.T) {
	rec := &recorder{}
	s := SeqSero{Method: antigen.SeqSero2, Path: "SeqSero2_package.py", Run: rec.run}

	_, err := s.Report(context.Background(), []string{"only_one.fq"}, Paired)
	assert.Error(t, err)
	assert.Nil(t, rec.cmd)

	_, err = SeqSero{Method: antigen.SeqSero}.Report(context.Background(), []string{"a.fasta"}, Assembled)
	assert.Error(t, err)
}

func TestReadPreCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "python2_env")
	require.NoError(t, os.WriteFile(path, []byte("# python2 env\n\nexport PATH=/opt/py2/bin:$PATH\n  source activate py2  \n"), 0o644))

	got, err := ReadPreCommands(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"export PATH=/opt/py2/bin:$PATH", "source activate py2"}, got)

	_, err = ReadPreCommands(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestEnvWithToolDirs(t *testing.T) {
	env := envWithToolDirs([]string{"HOME=/root", "PATH=/usr/bin"}, "/opt/a/bin/tool", "tool", "", "/opt/a/bin/other")
	assert.Equal(t, []string{"HOME=/root", "PATH=/usr/bin" + string(os.PathListSeparator) + "/opt/a/bin"}, env)
}

func TestCGEMLSTTmpDir(t *testing.T) {
	rec := &recorder{stdout: `{"mlst":{"results":{"sequence_type":"1"}}}`}
	parent := t.TempDir()
	m := CGEMLST{Path: "mlst", TmpDir: parent, Run: rec.run}

	_, err := m.SequenceType(context.Background(), []string{"/data/a.fasta"})
	require.NoError(t, err)
	assert.Equal(t, parent, filepath.Dir(rec.cmd.Dir))
	assert.Contains(t, rec.cmd.Args, rec.cmd.Dir)
}

func TestSeqSeroKeepWorkDir(t *testing.T) {
	rec := &recorder{}
	parent := t.TempDir()
	s := SeqSero{Method: antigen.SeqSero2, Path: "SeqSero2_package.py", TmpDir: parent, KeepWorkDir: true, Run: rec.run}

	_, err := s.Report(context.Background(), []string{"/data/a.fasta"}, Assembled)
	require.NoError(t, err)
	assert.Equal(t, parent, filepath.Dir(rec.cmd.Dir))

	info, err := os.Stat(rec.cmd.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// writeScript writes an executable shell script to path.
func writeScript(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
}

func TestRelativePathsResolveFromWorkDir(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh available")
	}

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	report := "O antigen prediction:\t4\nPredicted serotype(s):\tTyphimurium\n"
	require.NoError(t, os.WriteFile("sample.fasta", []byte(report), 0o644))
	require.NoError(t, os.MkdirAll("db", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("db", "mlst.json"), []byte(`{"mlst":{"results":{"sequence_type":"19"}}}`), 0o644))

	// Prints the last argument, which is the input file
	writeScript(t, filepath.Join("tools", "seqsero.sh"), "for last; do :; done\ncat \"$last\"\n")

	// -i file -o outdir -s scheme -p db
	writeScript(t, filepath.Join("tools", "mlst.sh"), "[ -f \"$2\" ] || exit 3\n[ -d \"$4\" ] || exit 4\ncat \"$8\"\n")

	s := SeqSero{Method: antigen.SeqSero, Path: filepath.Join("tools", "seqsero.sh"), TmpDir: "."}
	got, err := s.Report(context.Background(), []string{"sample.fasta"}, Assembled)
	require.NoError(t, err)
	assert.Equal(t, []string{"typhimurium"}, antigen.ParseString(got, antigen.SeqSero).Serovars)

	m := CGEMLST{Path: filepath.Join("tools", "mlst.sh"), DBPath: filepath.Join("db", "mlst.json"), OutDir: "out"}
	st, err := m.SequenceType(context.Background(), []string{"sample.fasta"})
	require.NoError(t, err)
	assert.Equal(t, KnownST(19), st)
}

func TestAbsProgram(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	for in, want := range map[string]string{
		"":                  "",
		"python3":           "python3",
		"/usr/bin/python3":  "/usr/bin/python3",
		"tools/SeqSero.py":  filepath.Join(wd, "tools", "SeqSero.py"),
		"./SeqSero2_pkg.py": filepath.Join(wd, "SeqSero2_pkg.py"),
	} {
		got, err := absProgram(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
