package antigen

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var ErrUnknownDialect = errors.New("unknown antigen report dialect")

// Dialect identifies the tool that produced an antigen report.
type Dialect int

const (
	SeqSero Dialect = iota
	SeqSero2
)

func (d Dialect) String() string {
	for name, v := range dialectNames {
		if v == d {
			return name
		}
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

var dialectNames = map[string]Dialect{
	"seqsero":  SeqSero,
	"seqsero2": SeqSero2,
}

// ParseDialect accepts the method names used on the command line.
func ParseDialect(name string) (Dialect, error) {
	d, exists := dialectNames[strings.ToLower(strings.TrimSpace(name))]
	if !exists {
		return 0, fmt.Errorf("%w %q. Valid dialects include: %s", ErrUnknownDialect, name, DialectNames())
	}

	return d, nil
}

func DialectNames() string {
	names := make([]string, 0, len(dialectNames))
	for name := range dialectNames {
		names = append(names, name)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

// Layout is the set of line patterns for one report dialect. Each pattern
// captures the value of its field in group 1. A line matching Serovar ends the
// report.
type Layout struct {
	OAntigen  *regexp.Regexp
	H1Antigen *regexp.Regexp
	H2Antigen *regexp.Regexp
	Formula   *regexp.Regexp
	Sdf       *regexp.Regexp
	Serovar   *regexp.Regexp

	// NotFound markers on the serovar line mean the tool made no call
	NotFound []*regexp.Regexp
}

var notFoundMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)see comments below`),
	regexp.MustCompile(`(?i)N/A`),
}

var Layouts = map[Dialect]Layout{
	SeqSero: {
		OAntigen:  regexp.MustCompile(`^O antigen prediction:\s+(.+)`),
		H1Antigen: regexp.MustCompile(`^H1 antigen prediction\(fliC\):\s+(.+)`),
		H2Antigen: regexp.MustCompile(`^H2 antigen prediction\(fljB\):\s+(.+)`),
		Formula:   regexp.MustCompile(`^Predicted antigenic profile:\s+(.+)`),
		Sdf:       regexp.MustCompile(`^Sdf prediction:\s*(.+)`),
		Serovar:   regexp.MustCompile(`^Predicted serotype\(s\):\s+([^*]+)`),
		NotFound:  notFoundMarkers,
	},
	SeqSero2: {
		OAntigen:  regexp.MustCompile(`^O antigen prediction:\s+(.+)`),
		H1Antigen: regexp.MustCompile(`^H1 antigen prediction\(fliC\):\s+(.+)`),
		H2Antigen: regexp.MustCompile(`^H2 antigen prediction\(fljB\):\s+(.+)`),
		Formula:   regexp.MustCompile(`^Predicted antigenic profile:\s+(.+)`),
		Sdf:       regexp.MustCompile(`^Sdf prediction:\s*(.+)`),
		Serovar:   regexp.MustCompile(`^Predicted serotype:\s+([^*]+)`),
		NotFound:  notFoundMarkers,
	},
}
