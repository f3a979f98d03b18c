// serovardb builds the serovar frequency table used by mlst2serovar and
// salmonellatypefinder from an Enterobase isolate export.
package main

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/carbocation/serovar"
	_ "github.com/carbocation/serovar/compileinfoprint"
	"github.com/carbocation/serovar/mlst2serovar"
)

// Enough of the export to sniff the delimiter from
const sniffBytes = 64 * 1024

func main() {
	var (
		exportPath string
		output     string
		delim      string
		summary    bool
		verbose    bool
	)
	opts := mlst2serovar.DefaultOptions()

	flag.StringVar(&exportPath, "export", "", "Enterobase isolate export with ST, eBG and Serovar columns. May be compressed and may be a gs:// URL.")
	flag.StringVar(&output, "output", "", "Optional. Where to write the JSON table. Written gzipped if it ends in .gz. Default: stdout.")
	flag.StringVar(&delim, "delim", "", "Optional. Field delimiter of the export. Detected if not set.")
	flag.BoolVar(&summary, "summary", false, "Print classification statistics and a purity histogram for the new table to stderr.")
	flag.IntVar(&opts.MaskLowCount, "mask", opts.MaskLowCount, "Used by -summary. Ignore serovars observed this many times or fewer.")
	flag.IntVar(&opts.MinSeroCount, "minsero", opts.MinSeroCount, "Used by -summary. Minimum number of isolates needed to make a call.")
	flag.Float64Var(&opts.MinFraction, "minfrac", opts.MinFraction, "Used by -summary. Minimum share for the leading serovar.")
	flag.BoolVar(&verbose, "verbose", false, "Log at debug level.")
	flag.Parse()

	logger := serovar.MustInitLogger(verbose)
	defer logger.Sync()

	if exportPath == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if summary {
		if err := opts.Validate(); err != nil {
			zap.S().Fatalw("Invalid thresholds", "error", err)
		}
	}

	ctx := context.Background()

	client, err := serovar.NewStorageClientIfNeeded(ctx, exportPath)
	if err != nil {
		zap.S().Fatalw("Could not create storage client", "error", err)
	}

	table, stats, err := buildFromExport(ctx, exportPath, client, delim)
	if err != nil {
		zap.S().Fatalw("Could not build serovar table", "export", exportPath, "error", err)
	}

	zap.S().Infow("Built serovar table",
		"rows", stats.Rows,
		"isolates", stats.Isolates,
		"sequence_types", table.Len(),
		"skipped_no_st", stats.SkippedNoST,
		"skipped_no_serovar", stats.SkippedNoSerovar,
		"skipped_filtered", stats.SkippedFiltered,
	)

	if err := writeTable(table, output); err != nil {
		zap.S().Fatalw("Could not write serovar table", "output", output, "error", err)
	}

	if summary {
		clf, err := mlst2serovar.New(table, opts)
		if err != nil {
			zap.S().Fatalw("Could not build classifier", "error", err)
		}
		if err := mlst2serovar.Summarize(clf).Fprint(os.Stderr); err != nil {
			zap.S().Fatalw("Could not print summary", "error", err)
		}
	}
}

func buildFromExport(ctx context.Context, path string, client *storage.Client, delim string) (*mlst2serovar.FrequencyTable, mlst2serovar.BuildStats, error) {
	r, err := serovar.OpenInput(ctx, path, client)
	if err != nil {
		return nil, mlst2serovar.BuildStats{}, err
	}
	defer r.Close()

	return buildFromReader(r, delim)
}

func buildFromReader(r io.Reader, delim string) (*mlst2serovar.FrequencyTable, mlst2serovar.BuildStats, error) {
	br := bufio.NewReaderSize(r, 2*sniffBytes)

	var comma rune
	switch delim {
	case "":
		head, _ := br.Peek(sniffBytes)
		comma = serovar.DetermineDelimiter(bytes.NewReader(head))
		zap.S().Debugw("Detected export delimiter", "delim", fmt.Sprintf("%q", comma))
	case `\t`, "tab":
		comma = '\t'
	default:
		comma = []rune(delim)[0]
	}

	return mlst2serovar.BuildTable(br, comma)
}

func writeTable(table *mlst2serovar.FrequencyTable, output string) error {
	if output == "" {
		return table.WriteJSON(os.Stdout)
	}

	f, err := os.Create(serovar.ExpandHome(output))
	if err != nil {
		return err
	}
	defer f.Close()

	if !strings.HasSuffix(output, ".gz") {
		if err := table.WriteJSON(f); err != nil {
			return err
		}
		return f.Close()
	}

	zw := gzip.NewWriter(f)
	if err := table.WriteJSON(zw); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	return f.Close()
}
