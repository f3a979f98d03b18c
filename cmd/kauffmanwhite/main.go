// kauffmanwhite predicts the antigenic formula and serovar of a sample with
// SeqSero or SeqSero2, or parses a report those tools already produced.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/carbocation/serovar"
	"github.com/carbocation/serovar/antigen"
	_ "github.com/carbocation/serovar/compileinfoprint"
	"github.com/carbocation/serovar/exttools"
	"github.com/carbocation/serovar/typing"
)

func main() {
	var (
		reportPath string
		method     string
		seqType    string
		python2Env string
		keep       bool
		verbose    bool
	)
	cfg := typing.DefaultConfig()

	flag.StringVar(&reportPath, "report", "", "Optional. Parse this saved report (local, gs:// or - for stdin) instead of running the tool.")
	flag.StringVar(&method, "method", cfg.Method, fmt.Sprintf("Antigen prediction tool. One of: %s", antigen.DialectNames()))
	flag.StringVar(&seqType, "seqtype", cfg.SeqType, "Type of input data: paired, single or assembled")
	flag.StringVar(&cfg.TmpDir, "tmp", cfg.TmpDir, "Optional. Parent directory for the tool's working directory.")
	flag.StringVar(&python2Env, "python2env", "", "Optional. File of shell commands to run just before SeqSero, e.g. to activate python 2.7.")
	flag.StringVar(&cfg.Tools.SeqSero, "seqsero", cfg.Tools.SeqSero, "Path to SeqSero.py")
	flag.StringVar(&cfg.Tools.SeqSero2, "seqsero2", cfg.Tools.SeqSero2, "Path to SeqSero2_package.py")
	flag.StringVar(&cfg.Tools.Python2, "python2", cfg.Tools.Python2, "Path to python2.7")
	flag.StringVar(&cfg.Tools.Python3, "python3", cfg.Tools.Python3, "Path to python3")
	flag.StringVar(&cfg.Tools.Blastn, "blastn", cfg.Tools.Blastn, "Path to blastn")
	flag.StringVar(&cfg.Tools.Makeblastdb, "makeblastdb", cfg.Tools.Makeblastdb, "Path to makeblastdb")
	flag.StringVar(&cfg.Tools.Samtools, "samtools", cfg.Tools.Samtools, "Path to samtools v0.18")
	flag.StringVar(&cfg.Tools.Bwa, "bwa", cfg.Tools.Bwa, "Path to bwa")
	flag.BoolVar(&keep, "keep", false, "Keep the tool's working directory.")
	flag.BoolVar(&verbose, "verbose", false, "Log at debug level.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] FAST(Q|A)...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := serovar.MustInitLogger(verbose)
	defer logger.Sync()

	dialect, err := antigen.ParseDialect(method)
	if err != nil {
		zap.S().Fatal(err)
	}

	ctx := context.Background()

	var prof antigen.Profile
	switch {
	case reportPath != "":
		prof, err = parseSavedReport(ctx, reportPath, dialect)
	case flag.NArg() > 0:
		prof, err = runTool(ctx, cfg, dialect, seqType, python2Env, keep, flag.Args())
	default:
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		zap.S().Fatal(err)
	}

	printProfile(os.Stdout, prof)
}

func parseSavedReport(ctx context.Context, path string, dialect antigen.Dialect) (antigen.Profile, error) {
	if path == "-" {
		return antigen.Parse(os.Stdin, dialect)
	}

	client, err := serovar.NewStorageClientIfNeeded(ctx, path)
	if err != nil {
		return antigen.Profile{}, err
	}

	r, err := serovar.OpenInput(ctx, path, client)
	if err != nil {
		return antigen.Profile{}, err
	}
	defer r.Close()

	return antigen.Parse(r, dialect)
}

func runTool(ctx context.Context, cfg typing.Config, dialect antigen.Dialect, seqType, python2Env string, keep bool, files []string) (antigen.Profile, error) {
	st, err := exttools.ParseSeqType(seqType)
	if err != nil {
		return antigen.Profile{}, err
	}

	var pre []string
	if python2Env != "" {
		if pre, err = exttools.ReadPreCommands(python2Env); err != nil {
			return antigen.Profile{}, err
		}
	}

	tool := exttools.SeqSero{
		Method:      dialect,
		Path:        cfg.Tools.SeqSero,
		Python2:     cfg.Tools.Python2,
		Python3:     cfg.Tools.Python3,
		Blastn:      cfg.Tools.Blastn,
		Makeblastdb: cfg.Tools.Makeblastdb,
		Samtools:    cfg.Tools.Samtools,
		Bwa:         cfg.Tools.Bwa,
		PreCommands: pre,
		TmpDir:      cfg.TmpDir,
		KeepWorkDir: keep,
	}
	if dialect == antigen.SeqSero2 {
		tool.Path = cfg.Tools.SeqSero2
	}

	report, err := tool.Report(ctx, files, st)
	if err != nil {
		return antigen.Profile{}, err
	}

	return antigen.ParseString(report, dialect), nil
}

func printProfile(w io.Writer, p antigen.Profile) {
	fmt.Fprintln(w, "Serotype: "+p.SerovarString())
	fmt.Fprintln(w, "O-type: "+p.OAntigen)
	fmt.Fprintln(w, "H1-type: "+p.H1Antigen)
	fmt.Fprintln(w, "H2-type: "+p.H2Antigen)
	if p.Formula != "" {
		fmt.Fprintln(w, "Antigenic profile: "+p.Formula)
	}
}
