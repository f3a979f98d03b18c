package main

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbocation/serovar/mlst2serovar"
)

const commaExport = `Uberstrain,ST,eBG,Serovar
SAL0001,19,1,Typhimurium
SAL0002,19,1,Salmonella Typhimurium
SAL0003,11,4,Enteritidis
SAL0004,,4,Enteritidis
`

func TestBuildFromReaderDetectsDelimiter(t *testing.T) {
	table, stats, err := buildFromReader(strings.NewReader(commaExport), "")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Isolates)
	assert.Equal(t, 1, stats.SkippedNoST)

	counts, exists := table.Lookup("19")
	require.True(t, exists)
	assert.Equal(t, []mlst2serovar.SerovarCount{{Serovar: "typhimurium", Count: 2}}, counts)
}

func TestBuildFromReaderExplicitTab(t *testing.T) {
	tsv := strings.ReplaceAll(commaExport, ",", "\t")

	table, _, err := buildFromReader(strings.NewReader(tsv), "tab")
	require.NoError(t, err)
	assert.Equal(t, []string{"19", "11"}, table.Keys())
}

func TestWriteTableGzip(t *testing.T) {
	table, _, err := buildFromReader(strings.NewReader(commaExport), ",")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "serovar_db.json.gz")
	require.NoError(t, writeTable(table, out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)

	again, err := mlst2serovar.ReadTable(zr)
	require.NoError(t, err)
	assert.Equal(t, table.Keys(), again.Keys())
	assert.True(t, again.HasGroup(mlst2serovar.EBGKey))
}
