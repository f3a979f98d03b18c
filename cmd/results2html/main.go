// results2html concatenates salmonellatypefinder result tables and renders
// them as a single HTML page.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/carbocation/serovar"
	_ "github.com/carbocation/serovar/compileinfoprint"
	"github.com/carbocation/serovar/report"
)

func main() {
	var (
		output  string
		failed  string
		title   string
		verbose bool
	)

	flag.StringVar(&output, "output", "", "Optional. Path to the HTML file. Default: stdout.")
	flag.StringVar(&failed, "failed", "", "Optional. Tab-delimited table of failed samples (filename, failed analysis, result) with a header line.")
	flag.StringVar(&title, "title", "", "Optional. Page title.")
	flag.BoolVar(&verbose, "verbose", false, "Log at debug level.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] RESULTS.tsv...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := serovar.MustInitLogger(verbose)
	defer logger.Sync()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()

	paths := append([]string{failed}, flag.Args()...)
	client, err := serovar.NewStorageClientIfNeeded(ctx, paths...)
	if err != nil {
		zap.S().Fatalw("Could not create storage client", "error", err)
	}

	var rows []report.Row
	for _, path := range flag.Args() {
		fileRows, err := readRows(ctx, path, client)
		if err != nil {
			zap.S().Fatalw("Could not read results", "file", path, "error", err)
		}
		rows = append(rows, fileRows...)
	}

	var failures []report.Failure
	if failed != "" {
		if failures, err = readFailures(ctx, failed, client); err != nil {
			zap.S().Fatalw("Could not read failed samples", "file", failed, "error", err)
		}
	}

	zap.S().Infow("Rendering results", "samples", len(rows), "failed", len(failures))

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(serovar.ExpandHome(output))
		if err != nil {
			zap.S().Fatal(err)
		}
		defer f.Close()
		w = f
	}

	if err := report.WriteHTML(w, title, rows, failures); err != nil {
		zap.S().Fatal(err)
	}
}
