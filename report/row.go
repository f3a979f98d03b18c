// Package report renders typing profiles as the tab-separated results table
// and as an HTML page.
package report

import (
	"path/filepath"
	"strconv"

	"github.com/carbocation/serovar/typing"
)

const (
	UnableToPredict = "Unable to predict"
	NoSerovars      = "No serotypes"
	FlagMark        = "*"
)

// Columns is the header of the results table, in column order.
var Columns = []string{
	"Sample",
	"Predicted Serotype",
	"ST",
	"ST mismatches",
	"ST sero prediction",
	"SeqSero prediction",
	"O-type",
	"H1-type",
	"H2-type",
	"MLST serotype details",
	"Flagged",
}

// Row is one line of the results table. Field order matches Columns.
type Row struct {
	Sample            string `csv:"Sample"`
	PredictedSerovar  string `csv:"Predicted Serotype"`
	ST                string `csv:"ST"`
	STMismatches      string `csv:"ST mismatches"`
	STSerovar         string `csv:"ST sero prediction"`
	AntigenSerovars   string `csv:"SeqSero prediction"`
	OAntigen          string `csv:"O-type"`
	H1Antigen         string `csv:"H1-type"`
	H2Antigen         string `csv:"H2-type"`
	MLSTSerovarDetail string `csv:"MLST serotype details"`
	Flagged           string `csv:"Flagged"`
}

// Cells returns the row's values in column order.
func (r Row) Cells() []string {
	return []string{
		r.Sample,
		r.PredictedSerovar,
		r.ST,
		r.STMismatches,
		r.STSerovar,
		r.AntigenSerovars,
		r.OAntigen,
		r.H1Antigen,
		r.H2Antigen,
		r.MLSTSerovarDetail,
		r.Flagged,
	}
}

func (r Row) IsFlagged() bool {
	return r.Flagged == FlagMark
}

// RowFromProfile flattens a typing profile into a results row.
func RowFromProfile(p *typing.Profile) Row {
	row := Row{
		Sample:            sampleName(p.Sample),
		PredictedSerovar:  p.Call.Serovar,
		ST:                "None",
		STSerovar:         p.MLST.Result,
		AntigenSerovars:   p.Antigen.SerovarString(),
		OAntigen:          p.Antigen.OAntigen,
		H1Antigen:         p.Antigen.H1Antigen,
		H2Antigen:         p.Antigen.H2Antigen,
		MLSTSerovarDetail: p.MLST.String(),
	}

	switch {
	case p.ST.Known:
		row.ST = strconv.Itoa(p.ST.ST)
	case p.ST.Raw != "":
		row.ST = p.ST.Raw
	}

	if row.PredictedSerovar == "" {
		row.PredictedSerovar = UnableToPredict
	}
	if row.STSerovar == "" {
		row.STSerovar = UnableToPredict
	}
	if row.MLSTSerovarDetail == "" {
		row.MLSTSerovarDetail = NoSerovars
	}
	if p.Call.Uncertain {
		row.Flagged = FlagMark
	}

	return row
}

func sampleName(s typing.Sample) string {
	if s.Name != "" {
		return s.Name
	}
	if len(s.Files) > 0 {
		return filepath.Base(s.Files[0])
	}
	return ""
}
