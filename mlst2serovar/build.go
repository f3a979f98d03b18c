package mlst2serovar

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/pfx"
)

// Enterobase exports contain a handful of isolates annotated with this
// non-Salmonella name.
const misannotatedSerovar = "shigella flexneri"

// BuildStats describes what happened to the rows of an isolate export.
type BuildStats struct {
	Rows             int
	Isolates         int
	SkippedNoST      int
	SkippedNoSerovar int
	SkippedFiltered  int
}

type exportColumns struct {
	ST      int
	EBG     int
	Serovar int
}

// BuildTable counts isolates per sequence type, and per eBG when the export has
// an eBG column, from a delimited isolate export with a header row. Column
// names are matched case-insensitively.
func BuildTable(r io.Reader, delim rune) (*FrequencyTable, BuildStats, error) {
	stats := BuildStats{}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, stats, fmt.Errorf("isolate export is empty")
	} else if err != nil {
		return nil, stats, pfx.Err(err)
	}

	cols, err := findExportColumns(header)
	if err != nil {
		return nil, stats, err
	}

	table := NewFrequencyTable()
	var ebg *FrequencyTable
	if cols.EBG >= 0 {
		ebg = table.Group(EBGKey)
	}

	for i := 1; ; i++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, stats, pfx.Err(fmt.Errorf("isolate export row %d: %w", i, err))
		}
		stats.Rows++

		serovar := NormalizeSerovar(field(row, cols.Serovar))
		if serovar == "" {
			stats.SkippedNoSerovar++
			continue
		}

		if serovar == misannotatedSerovar {
			stats.SkippedFiltered++
			continue
		}

		st := strings.TrimSpace(field(row, cols.ST))
		if st == "" {
			stats.SkippedNoST++
			continue
		}

		table.Add(st, serovar, 1)
		if ebg != nil {
			if group := strings.TrimSpace(field(row, cols.EBG)); group != "" {
				ebg.Add(group, serovar, 1)
			}
		}
		stats.Isolates++
	}

	return table, stats, nil
}

func findExportColumns(header []string) (exportColumns, error) {
	cols := exportColumns{ST: -1, EBG: -1, Serovar: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "st":
			cols.ST = i
		case "ebg":
			cols.EBG = i
		case "serovar":
			cols.Serovar = i
		}
	}

	if cols.ST < 0 || cols.Serovar < 0 {
		return cols, fmt.Errorf("isolate export header must name ST and Serovar columns, got %v", header)
	}

	return cols, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
