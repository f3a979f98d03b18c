package mlst2serovar

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSerovar converts a serovar name as written in isolate databases
// ("Salmonella Saint-Paul") into the key used in the frequency table
// ("saintpaul").
func NormalizeSerovar(name string) string {
	s := norm.NFKC.String(name)
	s = strings.TrimSpace(cases.Lower(language.Und).String(s))

	if rest := strings.TrimPrefix(s, "salmonella"); rest != s && strings.TrimSpace(rest) != "" {
		s = strings.TrimSpace(rest)
	}

	return strings.ReplaceAll(s, "-", "")
}
