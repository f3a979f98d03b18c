// Package antigen extracts the Kauffman-White antigenic profile and serovar
// candidates from the screen output of SeqSero and SeqSero2.
package antigen

import "strings"

// NotFound is recorded as the only candidate when the tool reports that no
// serovar could be determined.
const NotFound = "NF*"

// Profile is the antigenic profile reported for one sample.
type Profile struct {
	OAntigen  string
	H1Antigen string
	H2Antigen string
	Formula   string
	Sdf       string

	// Serovars are the candidate serovars in report order, without repeats.
	// More than one candidate is an ambiguous call by the tool.
	Serovars []string
}

// HasSerovar reports whether name is one of the candidates.
func (p Profile) HasSerovar(name string) bool {
	for _, v := range p.Serovars {
		if v == name {
			return true
		}
	}
	return false
}

// Empty reports whether the report yielded no serovar candidates.
func (p Profile) Empty() bool {
	return len(p.Serovars) == 0
}

// SerovarString joins the candidates for display.
func (p Profile) SerovarString() string {
	return strings.Join(p.Serovars, ", ")
}

func (p *Profile) addSerovar(name string) {
	if name == "" || p.HasSerovar(name) {
		return
	}
	p.Serovars = append(p.Serovars, name)
}
