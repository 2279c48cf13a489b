package script

import (
	"fmt"
)

// ExtractCommands wraps a compiled script for an extraction run: execute the
// script with stderr captured, archive the log, and append the output
// archive when the run produced one. The conditional append keeps the log
// extractable from failed runs.
func ExtractCommands(name string) []string {
	return []string{
		fmt.Sprintf("%s 2> %s", ScriptPath(name), LogFile),
		fmt.Sprintf("tar -cf %s -C %s log.txt", ExtractTar, ConfigDir),
		fmt.Sprintf("if [ -f %s ]; then tar -rf %s -C %s autoconf.tar; fi",
			OutputTar, ExtractTar, ConfigDir),
	}
}
