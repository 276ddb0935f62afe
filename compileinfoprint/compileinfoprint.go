// compileinfoprint is imported for the side effect of printing the compileinfo
// to os.Stderr when a binary starts.
package compileinfoprint

import "github.com/carbocation/microview/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
