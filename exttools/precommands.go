package exttools

import (
	"bufio"
	"os"
	"strings"

	"github.com/carbocation/pfx"

	"github.com/carbocation/serovar"
)

// ReadPreCommands reads a shell snippet that prepares the environment for
// SeqSero, typically activating a python2 environment. Blank lines and lines
// starting with # are dropped.
func ReadPreCommands(path string) ([]string, error) {
	f, err := os.Open(serovar.ExpandHome(path))
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}
