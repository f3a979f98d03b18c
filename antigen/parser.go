package antigen

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/carbocation/pfx"
)

// Parse reads a report line by line. Only errors from r are returned; a report
// without any recognised line yields an empty Profile.
func Parse(r io.Reader, d Dialect) (Profile, error) {
	layout, exists := Layouts[d]
	if !exists {
		return Profile{}, ErrUnknownDialect
	}

	p := Profile{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if done := layout.parseLine(&p, scanner.Text()); done {
			return p, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return p, pfx.Err(err)
	}

	return p, nil
}

// ParseString is Parse for captured standard output. It cannot fail, so no
// line length limit applies.
func ParseString(report string, d Dialect) Profile {
	return ParseLines(strings.Split(report, "\n"), d)
}

// ParseLines parses a report that was already split into lines.
func ParseLines(lines []string, d Dialect) Profile {
	p := Profile{}
	layout, exists := Layouts[d]
	if !exists {
		return p
	}

	for _, line := range lines {
		if layout.parseLine(&p, line) {
			break
		}
	}

	return p
}

// parseLine applies the layout to one line and reports whether it was the
// terminal serovar line.
func (l Layout) parseLine(p *Profile, line string) bool {
	line = strings.TrimRight(line, "\r")

	fields := []struct {
		re  *regexp.Regexp
		dst *string
	}{
		{l.OAntigen, &p.OAntigen},
		{l.H1Antigen, &p.H1Antigen},
		{l.H2Antigen, &p.H2Antigen},
		{l.Formula, &p.Formula},
		{l.Sdf, &p.Sdf},
	}
	for _, f := range fields {
		if m := f.re.FindStringSubmatch(line); m != nil {
			*f.dst = strings.TrimSpace(m[1])
			return false
		}
	}

	m := l.Serovar.FindStringSubmatch(line)
	if m == nil {
		return false
	}

	for _, marker := range l.NotFound {
		if marker.MatchString(line) {
			p.addSerovar(NotFound)
			return true
		}
	}

	for _, token := range strings.Fields(m[1]) {
		token = strings.TrimSpace(strings.ToLower(token))
		if token == "or" {
			continue
		}
		p.addSerovar(token)
	}

	return true
}
