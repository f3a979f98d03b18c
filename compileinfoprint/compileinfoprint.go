// compileinfoprint is imported by the commands for the side effect of printing
// the build state to os.Stderr before anything else runs.
package compileinfoprint

import "github.com/carbocation/serovar/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
