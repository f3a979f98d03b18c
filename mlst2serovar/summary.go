package mlst2serovar

import (
	"fmt"
	"io"
	"sort"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/stat"
)

// KeySummary describes how decisively one sequence type predicts a serovar
// under the classifier's thresholds.
type KeySummary struct {
	Key      string
	Isolates int     // all isolates, masked or not
	Serovars int     // serovars emitted after masking
	Purity   float64 // largest emitted fraction
	Result   string
}

// Summary aggregates KeySummary over a whole table.
type Summary struct {
	Keys         []KeySummary
	Isolates     int
	Emitted      int // keys with at least one emitted serovar
	Called       int // keys with a result
	MeanPurity   float64
	SDPurity     float64
	MedianPurity float64

	purities []float64
}

// Summarize classifies every sequence type in the classifier's table.
func Summarize(c *Classifier) Summary {
	out := Summary{}

	for _, key := range c.table.Keys() {
		counts, _ := c.table.Lookup(key)
		ks := KeySummary{Key: key}
		for _, v := range counts {
			ks.Isolates += v.Count
		}
		out.Isolates += ks.Isolates

		res := c.ClassifyKey(key)
		ks.Serovars = res.Len()
		ks.Result = res.Result
		for _, p := range res.Predictions {
			if p.Fraction > ks.Purity {
				ks.Purity = p.Fraction
			}
		}

		if ks.Serovars > 0 {
			out.Emitted++
			out.purities = append(out.purities, ks.Purity)
		}
		if res.HasResult() {
			out.Called++
		}

		out.Keys = append(out.Keys, ks)
	}

	if len(out.purities) > 0 {
		sorted := make([]float64, len(out.purities))
		copy(sorted, out.purities)
		sort.Float64s(sorted)

		out.MeanPurity = stat.Mean(sorted, nil)
		if len(sorted) > 1 {
			out.SDPurity = stat.StdDev(sorted, nil)
		}
		out.MedianPurity = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}

	return out
}

// Fprint writes a human-readable overview, including a histogram of purity
// across the sequence types that emitted at least one serovar.
func (s Summary) Fprint(w io.Writer) error {
	fmt.Fprintf(w, "Sequence types:\t%d\n", len(s.Keys))
	fmt.Fprintf(w, "Isolates:\t%d\n", s.Isolates)
	fmt.Fprintf(w, "Sequence types with evidence after masking:\t%d\n", s.Emitted)
	fmt.Fprintf(w, "Sequence types with a serovar call:\t%d\n", s.Called)

	if len(s.purities) == 0 {
		return nil
	}

	fmt.Fprintf(w, "Purity mean (SD):\t%.3f (%.3f)\n", s.MeanPurity, s.SDPurity)
	fmt.Fprintf(w, "Purity median:\t%.3f\n", s.MedianPurity)
	fmt.Fprintln(w, "Purity histogram:")

	hist := histogram.Hist(10, s.purities)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}
