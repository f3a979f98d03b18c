// salmonellatypefinder predicts the serovar of Salmonella isolates by combining
// an MLST based lookup with in silico antigen prediction.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/carbocation/serovar"
	"github.com/carbocation/serovar/antigen"
	_ "github.com/carbocation/serovar/compileinfoprint"
	"github.com/carbocation/serovar/mlst2serovar"
	"github.com/carbocation/serovar/report"
	"github.com/carbocation/serovar/typing"
)

func main() {
	var (
		configPath string
		manifest   string
		sampleName string
		output     string
		st         int
		noHeader   bool
		verbose    bool
	)

	// Flags write into their own copy so that a config file can be loaded
	// first and then overridden by the flags that were actually set.
	flags := typing.DefaultConfig()

	flag.StringVar(&configPath, "config", "", "Optional. YAML config file. Flags that are set override its values.")
	flag.StringVar(&manifest, "manifest", "", "Optional. Tab-delimited file of samples to type: name, then one or two input files.")
	flag.StringVar(&sampleName, "sample", "", "Optional. Sample name for the output. Default: base name of the first input file.")
	flag.StringVar(&output, "output", "", "Optional. Results are written to this file. Default: stdout.")
	flag.IntVar(&st, "st", -1, "Optional. Sequence type of the sample. If given, the MLST tool is not run.")
	flag.BoolVar(&noHeader, "noheader", false, "Do not write the header line.")
	flag.BoolVar(&verbose, "verbose", false, "Log at debug level.")

	flag.StringVar(&flags.DB, "db", flags.DB, "Serovar frequency table built by serovardb. May be a gs:// URL.")
	flag.IntVar(&flags.MaskLowCount, "mask", flags.MaskLowCount, "Ignore serovars observed this many times or fewer for a sequence type. Affects both the details and the call thresholds.")
	flag.IntVar(&flags.MinSeroCount, "minsero", flags.MinSeroCount, "Minimum number of isolates needed for an MLST call.")
	flag.Float64Var(&flags.MinFraction, "minfrac", flags.MinFraction, "Minimum share of isolates the leading serovar needs when several compete.")
	flag.StringVar(&flags.SeqType, "seqtype", flags.SeqType, "Type of input data: paired, single or assembled")
	flag.StringVar(&flags.Method, "method", flags.Method, fmt.Sprintf("Antigen prediction tool. One of: %s", antigen.DialectNames()))
	flag.StringVar(&flags.TmpDir, "tmp", flags.TmpDir, "Optional. Parent directory for the external tools' working directories.")
	flag.IntVar(&flags.Parallel, "parallel", flags.Parallel, "Number of samples typed at once with -manifest.")
	flag.StringVar(&flags.Python2Env, "python2env", flags.Python2Env, "Optional. File of shell commands to run just before SeqSero, e.g. to activate python 2.7.")
	flag.StringVar(&flags.Tools.CGEMLST, "mlst", flags.Tools.CGEMLST, "Path to the CGE mlst.py")
	flag.StringVar(&flags.Tools.CGEMLSTDB, "mlstdb", flags.Tools.CGEMLSTDB, "Path to the CGE MLST database")
	flag.StringVar(&flags.Tools.SeqSero, "seqsero", flags.Tools.SeqSero, "Path to SeqSero.py")
	flag.StringVar(&flags.Tools.SeqSero2, "seqsero2", flags.Tools.SeqSero2, "Path to SeqSero2_package.py")
	flag.StringVar(&flags.Tools.Python2, "python2", flags.Tools.Python2, "Path to python2.7")
	flag.StringVar(&flags.Tools.Python3, "python3", flags.Tools.Python3, "Path to python3")
	flag.StringVar(&flags.Tools.Blastn, "blastn", flags.Tools.Blastn, "Path to blastn")
	flag.StringVar(&flags.Tools.Makeblastdb, "makeblastdb", flags.Tools.Makeblastdb, "Path to makeblastdb")
	flag.StringVar(&flags.Tools.Samtools, "samtools", flags.Tools.Samtools, "Path to samtools v0.18")
	flag.StringVar(&flags.Tools.Bwa, "bwa", flags.Tools.Bwa, "Path to bwa")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] FAST(Q|A) [FASTQ]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := serovar.MustInitLogger(verbose)
	defer logger.Sync()

	cfg := typing.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = typing.LoadConfig(configPath); err != nil {
			zap.S().Fatal(err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		overrideConfig(&cfg, flags, f.Name)
	})

	if cfg.DB == "" || (manifest == "" && flag.NArg() < 1) {
		flag.Usage()
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		zap.S().Fatal(err)
	}

	var samples []typing.Sample
	if manifest != "" {
		var err error
		if samples, err = readManifest(manifest); err != nil {
			zap.S().Fatalw("Could not read manifest", "manifest", manifest, "error", err)
		}
	} else {
		s := typing.Sample{Name: sampleName, Files: flag.Args()}
		if s.Name == "" {
			s.Name = filepath.Base(s.Files[0])
		}
		if st >= 0 {
			s.ST = &st
		}
		samples = append(samples, s)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := serovar.NewStorageClientIfNeeded(ctx, cfg.DB)
	if err != nil {
		zap.S().Fatalw("Could not create storage client", "error", err)
	}

	clf, err := mlst2serovar.Open(ctx, cfg.DB, client, cfg.Options())
	if err != nil {
		zap.S().Fatalw("Could not load serovar table", "db", cfg.DB, "error", err)
	}

	pipeline, err := typing.NewPipeline(cfg, clf)
	if err != nil {
		zap.S().Fatal(err)
	}

	profiles, err := pipeline.RunAll(ctx, samples, cfg.Parallel)
	if err != nil {
		zap.S().Fatal(err)
	}

	rows := make([]report.Row, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, report.RowFromProfile(p))
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(serovar.ExpandHome(output))
		if err != nil {
			zap.S().Fatal(err)
		}
		defer f.Close()
		w = f
	}

	if err := report.WriteTSV(w, rows, !noHeader); err != nil {
		zap.S().Fatal(err)
	}
}

// overrideConfig copies the value of one explicitly set flag into cfg.
func overrideConfig(cfg *typing.Config, flags typing.Config, name string) {
	switch name {
	case "db":
		cfg.DB = flags.DB
	case "mask":
		cfg.MaskLowCount = flags.MaskLowCount
	case "minsero":
		cfg.MinSeroCount = flags.MinSeroCount
	case "minfrac":
		cfg.MinFraction = flags.MinFraction
	case "seqtype":
		cfg.SeqType = flags.SeqType
	case "method":
		cfg.Method = flags.Method
	case "tmp":
		cfg.TmpDir = flags.TmpDir
	case "parallel":
		cfg.Parallel = flags.Parallel
	case "python2env":
		cfg.Python2Env = flags.Python2Env
	case "mlst":
		cfg.Tools.CGEMLST = flags.Tools.CGEMLST
	case "mlstdb":
		cfg.Tools.CGEMLSTDB = flags.Tools.CGEMLSTDB
	case "seqsero":
		cfg.Tools.SeqSero = flags.Tools.SeqSero
	case "seqsero2":
		cfg.Tools.SeqSero2 = flags.Tools.SeqSero2
	case "python2":
		cfg.Tools.Python2 = flags.Tools.Python2
	case "python3":
		cfg.Tools.Python3 = flags.Tools.Python3
	case "blastn":
		cfg.Tools.Blastn = flags.Tools.Blastn
	case "makeblastdb":
		cfg.Tools.Makeblastdb = flags.Tools.Makeblastdb
	case "samtools":
		cfg.Tools.Samtools = flags.Tools.Samtools
	case "bwa":
		cfg.Tools.Bwa = flags.Tools.Bwa
	}
}
