// Package mlst2serovar predicts Salmonella serovars from MLST sequence types
// using counts of historically observed isolates.
package mlst2serovar

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

var ErrInvalidThresholds = errors.New("min serovar count must be greater than mask low count")

// Options are the thresholds used when classifying. Serovars observed
// MaskLowCount times or fewer for a sequence type are ignored entirely. A call
// requires at least MinSeroCount isolates and, when several serovars compete,
// a share of at least MinFraction.
type Options struct {
	MinSeroCount int
	MinFraction  float64
	MaskLowCount int
}

func DefaultOptions() Options {
	return Options{
		MinSeroCount: 3,
		MinFraction:  0.75,
		MaskLowCount: 2,
	}
}

func (o Options) Validate() error {
	if o.MinSeroCount <= o.MaskLowCount {
		return fmt.Errorf("%w (min serovar count: %d, mask low count: %d)", ErrInvalidThresholds, o.MinSeroCount, o.MaskLowCount)
	}

	return nil
}

// Classifier is safe for concurrent use; neither it nor its table are
// modified after construction.
type Classifier struct {
	table *FrequencyTable
	opts  Options
}

func New(table *FrequencyTable, opts Options) (*Classifier, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if table == nil {
		return nil, fmt.Errorf("%w: no table was provided", ErrMalformedTable)
	}

	return &Classifier{table: table, opts: opts}, nil
}

// Open loads the table at path (local or gs://) and builds a classifier.
func Open(ctx context.Context, path string, client *storage.Client, opts Options) (*Classifier, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	table, err := OpenTable(ctx, path, client)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return New(table, opts)
}

func (c *Classifier) Options() Options {
	return c.opts
}

func (c *Classifier) Table() *FrequencyTable {
	return c.table
}

// Classify predicts the serovar of sequence type st.
func (c *Classifier) Classify(st int) PredictedResult {
	return c.ClassifyKey(strconv.Itoa(st))
}

// ClassifyKey predicts the serovar for an arbitrary table key. Keys that are
// absent, or whose unmasked evidence is too thin, yield an empty result.
func (c *Classifier) ClassifyKey(key string) PredictedResult {
	out := PredictedResult{}

	counts, exists := c.table.Lookup(key)
	if !exists || len(counts) == 0 {
		return out
	}

	// Total isolates with this key, counting only serovars above the mask
	total := 0
	for _, v := range counts {
		if v.Count <= c.opts.MaskLowCount {
			continue
		}
		total += v.Count
	}

	if total <= c.opts.MaskLowCount {
		return out
	}

	if len(counts) == 1 {
		// With a single serovar there is nothing to compete with, so only the
		// count gate applies. Below it, the serovar is still reported.
		out.Predictions = append(out.Predictions, Prediction{
			Serovar:  counts[0].Serovar,
			Count:    total,
			Total:    total,
			Fraction: 1.0,
		})
		if total >= c.opts.MinSeroCount {
			out.Result = counts[0].Serovar
		}
		return out
	}

	var best Prediction
	for _, v := range counts {
		if v.Count <= c.opts.MaskLowCount {
			continue
		}

		p := Prediction{
			Serovar:  v.Serovar,
			Count:    v.Count,
			Total:    total,
			Fraction: float64(v.Count) / float64(total),
		}
		out.Predictions = append(out.Predictions, p)

		// Counts can tie when MinFraction is 0.5 or lower. The first serovar
		// seen keeps the lead.
		if p.Count > best.Count {
			best = p
		}
	}

	if best.Count >= c.opts.MinSeroCount && best.Fraction >= c.opts.MinFraction {
		out.Result = best.Serovar
	}

	return out
}
