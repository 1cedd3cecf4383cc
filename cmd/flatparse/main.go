// Command flatparse tokenizes a delimited or fixed-width file and writes the rows
// as CSV, TSV or an Arrow summary, optionally loading them into a database.
package main

import (
	"os"

	"github.com/greenplum-db/gp-common-go-libs/gplog"
)

func main() {
	gplog.InitializeLogging("flatparse", "")
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		gplog.Error("%v", err)
		os.Exit(2)
	}
}
