package mlst2serovar

import (
	"fmt"
	"strings"
)

// Prediction is the evidence for one serovar within a sequence type.
type Prediction struct {
	Serovar  string
	Count    int     // isolates with this serovar
	Total    int     // isolates with the sequence type, after masking
	Fraction float64 // Count / Total
}

// PredictedResult holds every serovar emitted for a sequence type in table
// order, plus the single serovar that cleared the call thresholds, if any.
type PredictedResult struct {
	Predictions []Prediction
	Result      string
}

// HasResult reports whether the classifier made a call.
func (p PredictedResult) HasResult() bool {
	return p.Result != ""
}

func (p PredictedResult) Len() int {
	return len(p.Predictions)
}

// Get returns the prediction for serovar, if it was emitted.
func (p PredictedResult) Get(serovar string) (Prediction, bool) {
	for _, v := range p.Predictions {
		if v.Serovar == serovar {
			return v, true
		}
	}

	return Prediction{}, false
}

// String renders the emitted serovars as "name (count, percent)" joined by
// " | ". It is empty when nothing was emitted.
func (p PredictedResult) String() string {
	parts := make([]string, 0, len(p.Predictions))
	for _, v := range p.Predictions {
		parts = append(parts, fmt.Sprintf("%s (%d, %.2f)", v.Serovar, v.Count, v.Fraction*100))
	}

	return strings.Join(parts, " | ")
}
