// mlst2serovar looks up the serovar predicted for a sequence type in a
// serovar frequency table built by serovardb.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/carbocation/serovar"
	_ "github.com/carbocation/serovar/compileinfoprint"
	"github.com/carbocation/serovar/mlst2serovar"
)

func main() {
	var (
		st      int
		key     string
		dbPath  string
		verbose bool
	)
	opts := mlst2serovar.DefaultOptions()

	flag.IntVar(&st, "st", -1, "Sequence type to look up.")
	flag.StringVar(&key, "key", "", "Optional. Look up an arbitrary table key instead of -st.")
	flag.StringVar(&dbPath, "db", "", "Path to the serovar frequency table (JSON, optionally compressed). May be a gs:// URL.")
	flag.IntVar(&opts.MaskLowCount, "mask", opts.MaskLowCount, "Ignore serovars observed this many times or fewer for the sequence type.")
	flag.IntVar(&opts.MinSeroCount, "minsero", opts.MinSeroCount, "Minimum number of isolates needed to make a call.")
	flag.Float64Var(&opts.MinFraction, "minfrac", opts.MinFraction, "Minimum share of isolates the leading serovar needs when several compete.")
	flag.BoolVar(&verbose, "verbose", false, "Log at debug level.")
	flag.Parse()

	logger := serovar.MustInitLogger(verbose)
	defer logger.Sync()

	if dbPath == "" || (st < 0 && key == "") {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if key == "" {
		key = strconv.Itoa(st)
	}

	ctx := context.Background()

	client, err := serovar.NewStorageClientIfNeeded(ctx, dbPath)
	if err != nil {
		zap.S().Fatalw("Could not create storage client", "error", err)
	}

	clf, err := mlst2serovar.Open(ctx, dbPath, client, opts)
	if err != nil {
		zap.S().Fatalw("Could not load serovar table", "db", dbPath, "error", err)
	}

	printResult(os.Stdout, clf.ClassifyKey(key))
}

func printResult(w io.Writer, res mlst2serovar.PredictedResult) {
	if res.HasResult() {
		fmt.Fprintln(w, "Predicted serotype: "+res.Result)
	}

	fmt.Fprintln(w, "Details:")
	fmt.Fprintln(w, "\tSerotype\tCount\tTotal\tFrac")
	for _, p := range res.Predictions {
		fmt.Fprintf(w, "\t%s\t%d\t%d\t%.2f\n", p.Serovar, p.Count, p.Total, p.Fraction)
	}
}
