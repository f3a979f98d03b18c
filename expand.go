package serovar

import (
	"os/user"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ExpandHome expands ~ to its proper path, where appropriate. If the current
// user cannot be determined the path is returned unchanged.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err != nil {
			zap.S().Warnw("Could not expand home directory", "path", path, "error", err)
			return path
		}
		path = filepath.Join(usr.HomeDir, path[2:])
	}

	return path
}
