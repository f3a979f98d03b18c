package report

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// WriteTSV writes rows as tab-separated values, optionally preceded by the
// header line.
func WriteTSV(w io.Writer, rows []Row, header bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	out := gocsv.NewSafeCSVWriter(cw)

	var err error
	if header {
		err = gocsv.MarshalCSV(rows, out)
	} else {
		err = gocsv.MarshalCSVWithoutHeaders(rows, out)
	}
	if err != nil {
		return pfx.Err(err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// ReadTSV reads a results table. The input may be several tables written by
// WriteTSV concatenated together, with or without their header lines. Rows
// missing trailing columns, such as an empty Flagged column, are accepted.
func ReadTSV(r io.Reader) ([]Row, error) {
	records, err := readRecords(r, len(Columns), func(rec []string) bool {
		return rec[0] == Columns[0]
	})
	if err != nil {
		return nil, pfx.Err(err)
	}

	rows := []Row{}
	if len(records) == 0 {
		return rows, nil
	}

	if err := gocsv.UnmarshalCSVWithoutHeaders(&recordReader{records: records}, &rows); err != nil {
		return nil, pfx.Err(err)
	}

	return rows, nil
}

// readRecords reads tab-separated records, dropping blank lines and those for
// which skip returns true, and pads each to width fields.
func readRecords(r io.Reader, width int, skip func([]string) bool) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var out [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(rec) == 0 || (len(rec) == 1 && rec[0] == "") {
			continue
		}
		if len(rec) > width {
			rec = rec[:width]
		}
		for len(rec) < width {
			rec = append(rec, "")
		}
		if skip != nil && skip(rec) {
			continue
		}

		out = append(out, rec)
	}

	return out, nil
}

// recordReader serves already-read records to gocsv.
type recordReader struct {
	records [][]string
	pos     int
}

func (r *recordReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := r.records[r.pos]
	r.pos++
	return rec, nil
}

func (r *recordReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}
