package report

import (
	"io"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Failure is a sample for which one of the analyses did not complete.
type Failure struct {
	File     string `csv:"Filename"`
	Analysis string `csv:"Failed Analysis"`
	Result   string `csv:"Result"`
}

// ReadFailures reads the tab-separated failed-samples table. The first line is
// a header and is skipped whatever its content.
func ReadFailures(r io.Reader) ([]Failure, error) {
	first := true
	records, err := readRecords(r, 3, func([]string) bool {
		skip := first
		first = false
		return skip
	})
	if err != nil {
		return nil, pfx.Err(err)
	}

	out := []Failure{}
	if len(records) == 0 {
		return out, nil
	}

	if err := gocsv.UnmarshalCSVWithoutHeaders(&recordReader{records: records}, &out); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}
