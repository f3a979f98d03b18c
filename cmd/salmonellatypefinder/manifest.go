package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/serovar"
	"github.com/carbocation/serovar/typing"
)

// readManifest reads one sample per line: name, then one or two input files,
// then optionally a known sequence type. Blank lines and lines starting with #
// are ignored.
func readManifest(path string) ([]typing.Sample, error) {
	f, err := os.Open(serovar.ExpandHome(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseManifest(f)
}

func parseManifest(r io.Reader) ([]typing.Sample, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	var out []typing.Sample
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		if len(rec) < 2 {
			return nil, fmt.Errorf("manifest line %d: expected a sample name and at least one file, got %v", line, rec)
		}

		s := typing.Sample{Name: strings.TrimSpace(rec[0])}
		for _, v := range rec[1:] {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if st, err := strconv.Atoi(v); err == nil {
				s.ST = &st
				continue
			}
			s.Files = append(s.Files, v)
		}

		out = append(out, s)
	}

	return out, nil
}
