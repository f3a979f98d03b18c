package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbocation/serovar/antigen"
	"github.com/carbocation/serovar/consensus"
	"github.com/carbocation/serovar/exttools"
	"github.com/carbocation/serovar/mlst2serovar"
	"github.com/carbocation/serovar/typing"
)

func typhimuriumProfile() *typing.Profile {
	return &typing.Profile{
		Sample: typing.Sample{Files: []string{"/data/run1/S1_R1.fastq.gz", "/data/run1/S1_R2.fastq.gz"}},
		ST:     exttools.KnownST(19),
		MLST: mlst2serovar.PredictedResult{
			Predictions: []mlst2serovar.Prediction{
				{Serovar: "typhimurium", Count: 40, Total: 43, Fraction: 40.0 / 43},
				{Serovar: "enteritidis", Count: 3, Total: 43, Fraction: 3.0 / 43},
			},
			Result: "typhimurium",
		},
		Antigen: antigen.Profile{
			OAntigen:  "4",
			H1Antigen: "i",
			H2Antigen: "1,2",
			Formula:   "4:i:1,2",
			Serovars:  []string{"typhimurium"},
		},
		Call: consensus.Call{Serovar: "typhimurium"},
	}
}

func TestRowFromProfile(t *testing.T) {
	got := RowFromProfile(typhimuriumProfile())

	want := Row{
		Sample:            "S1_R1.fastq.gz",
		PredictedSerovar:  "typhimurium",
		ST:                "19",
		STSerovar:         "typhimurium",
		AntigenSerovars:   "typhimurium",
		OAntigen:          "4",
		H1Antigen:         "i",
		H2Antigen:         "1,2",
		MLSTSerovarDetail: "typhimurium (40, 93.02) | enteritidis (3, 6.98)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, got.IsFlagged())
}

func TestRowFromEmptyProfile(t *testing.T) {
	p := &typing.Profile{
		Sample: typing.Sample{Name: "S9"},
		ST:     exttools.MLSTResult{Raw: "Unknown"},
		Call:   consensus.Call{Serovar: consensus.NotAvailable, Uncertain: true},
	}

	got := RowFromProfile(p)
	assert.Equal(t, "S9", got.Sample)
	assert.Equal(t, "n/a", got.PredictedSerovar)
	assert.Equal(t, "Unknown", got.ST)
	assert.Equal(t, UnableToPredict, got.STSerovar)
	assert.Equal(t, NoSerovars, got.MLSTSerovarDetail)
	assert.Equal(t, FlagMark, got.Flagged)

	p.ST = exttools.MLSTResult{}
	p.Call = consensus.Call{}
	got = RowFromProfile(p)
	assert.Equal(t, "None", got.ST)
	assert.Equal(t, UnableToPredict, got.PredictedSerovar)
}

func TestCellsFollowColumns(t *testing.T) {
	assert.Len(t, Row{}.Cells(), len(Columns))
}

func TestWriteTSV(t *testing.T) {
	rows := []Row{RowFromProfile(typhimuriumProfile())}

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, rows, true))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(Columns, "\t"), lines[0])
	assert.Equal(t, "S1_R1.fastq.gz\ttyphimurium\t19\t\ttyphimurium\ttyphimurium\t4\ti\t1,2\ttyphimurium (40, 93.02) | enteritidis (3, 6.98)\t", lines[1])

	buf.Reset()
	require.NoError(t, WriteTSV(&buf, rows, false))
	assert.Equal(t, lines[1]+"\n", buf.String())
}

func TestReadTSVConcatenated(t *testing.T) {
	flagged := RowFromProfile(typhimuriumProfile())
	flagged.Sample = "S2"
	flagged.Flagged = FlagMark

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, []Row{RowFromProfile(typhimuriumProfile())}, true))
	require.NoError(t, WriteTSV(&buf, []Row{flagged}, true))

	// A row written without the trailing Flagged column
	buf.WriteString("S3\tderby\tNone\t\tUnable to predict\tderby\t4\tf,g\t-\tNo serotypes\n\n")

	rows, err := ReadTSV(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, RowFromProfile(typhimuriumProfile()), rows[0])
	assert.Equal(t, flagged, rows[1])
	assert.Equal(t, "S3", rows[2].Sample)
	assert.Equal(t, "f,g", rows[2].H1Antigen)
	assert.Equal(t, "", rows[2].Flagged)
}

func TestReadTSVEmpty(t *testing.T) {
	rows, err := ReadTSV(strings.NewReader(strings.Join(Columns, "\t") + "\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadFailures(t *testing.T) {
	in := "file\tanalysis\tresult\nS4_R1.fastq.gz\tSeqSero\tfailed\nS5.fasta\tMLST\n"

	got, err := ReadFailures(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Failure{
		{File: "S4_R1.fastq.gz", Analysis: "SeqSero", Result: "failed"},
		{File: "S5.fasta", Analysis: "MLST"},
	}, got)
}

func TestWriteHTML(t *testing.T) {
	flagged := RowFromProfile(typhimuriumProfile())
	flagged.Sample = "<S2>"
	flagged.Flagged = FlagMark

	var buf bytes.Buffer
	err := WriteHTML(&buf, "", []Row{RowFromProfile(typhimuriumProfile()), flagged}, []Failure{{File: "S4.fasta", Analysis: "SeqSero"}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<title>SalmonellaTypeFinder Results</title>")
	assert.Contains(t, out, "<th><strong>MLST serotype details</strong></th>")
	assert.Contains(t, out, "<td>S1_R1.fastq.gz</td>")
	assert.Contains(t, out, `<tr class="flagged">`)
	assert.Contains(t, out, "&lt;S2&gt;")
	assert.NotContains(t, out, "<S2>")
	assert.Contains(t, out, "<h3>Failed samples:</h3>")
	assert.Contains(t, out, "<td>S4.fasta</td><td>SeqSero</td>")
	assert.Contains(t, out, "<footer><small>serovar ")
}

func TestWriteHTMLNoFailures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "Run 7", nil, nil))
	assert.Contains(t, buf.String(), "<h2>Run 7</h2>")
	assert.NotContains(t, buf.String(), "Failed samples")
}
