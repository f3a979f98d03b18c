package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carbocation/serovar/antigen"
	"github.com/carbocation/serovar/mlst2serovar"
)

func mlstCall(result string) mlst2serovar.PredictedResult {
	if result == "" {
		return mlst2serovar.PredictedResult{}
	}
	return mlst2serovar.PredictedResult{
		Predictions: []mlst2serovar.Prediction{{Serovar: result, Count: 10, Total: 10, Fraction: 1}},
		Result:      result,
	}
}

func antigenCall(serovars ...string) antigen.Profile {
	return antigen.Profile{OAntigen: "9", Serovars: serovars}
}

func TestResolve(t *testing.T) {
	for _, v := range []struct {
		name     string
		mlst     mlst2serovar.PredictedResult
		antigen  antigen.Profile
		expected Call
	}{
		{"agreement", mlstCall("enteritidis"), antigenCall("enteritidis"), Call{"enteritidis", false}},
		{"agreement with an ambiguous antigen call", mlstCall("enteritidis"), antigenCall("gallinarum", "enteritidis"), Call{"enteritidis", false}},
		{"disagreement", mlstCall("enteritidis"), antigenCall("typhimurium"), Call{"typhimurium", true}},
		{"disagreement with several candidates", mlstCall("derby"), antigenCall("typhimurium", "enteritidis"), Call{"typhimurium, enteritidis", true}},
		{"antigen only", mlstCall(""), antigenCall("typhimurium", "enteritidis"), Call{"typhimurium, enteritidis", true}},
		{"antigen not found marker", mlstCall(""), antigenCall(antigen.NotFound), Call{antigen.NotFound, true}},
		{"mlst only", mlstCall("dublin"), antigen.Profile{OAntigen: "9"}, Call{"dublin", true}},
		{"neither", mlstCall(""), antigen.Profile{}, Call{NotAvailable, true}},
	} {
		assert.Equal(t, v.expected, Resolve(v.mlst, v.antigen), v.name)
	}
}

func TestResolveIgnoresEvidenceWithoutResult(t *testing.T) {
	// Entries below the call thresholds are not an MLST call
	pred := mlst2serovar.PredictedResult{
		Predictions: []mlst2serovar.Prediction{{Serovar: "agona", Count: 2, Total: 2, Fraction: 1}},
	}
	assert.Equal(t, Call{NotAvailable, true}, Resolve(pred, antigen.Profile{}))
	assert.Equal(t, Call{"typhi", true}, Resolve(pred, antigenCall("typhi")))
}

func TestCallString(t *testing.T) {
	assert.Equal(t, "typhi", Call{Serovar: "typhi"}.String())
	assert.Equal(t, "n/a*", Call{Serovar: NotAvailable, Uncertain: true}.String())
}
