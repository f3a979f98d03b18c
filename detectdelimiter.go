package serovar

import (
	"io"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file. Enterobase exports are
// tab-delimited, so that is what we assume when nothing can be detected.
func DetermineDelimiter(r io.Reader) rune {
	return DetermineDelimiterOr(r, '\t')
}

// DetermineDelimiterOr is DetermineDelimiter with a caller-chosen fallback.
func DetermineDelimiterOr(r io.Reader, fallback rune) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 && len(delimiters[0]) > 0 {
		return rune(delimiters[0][0])
	}

	return fallback
}
