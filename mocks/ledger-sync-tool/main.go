// Command ledger-sync-tool simulates the external ledger sync CLI for local
// development. Contract: invoked as `ledger-sync-tool --person <KIND>
// <NUMBER>`; exit 0 means the identity's records were pushed; on failure the
// first stderr line is the user-facing reason.
//
// Set LEDGER_SYNC_FAIL to a non-empty value to force a failure.
package main

import (
	"fmt"
	"os"
)

func main() {
	args := os.Args[1:]
	if len(args) != 3 || args[0] != "--person" {
		fmt.Fprintln(os.Stderr, "usage: ledger-sync-tool --person <KIND> <NUMBER>")
		os.Exit(2)
	}

	if reason := os.Getenv("LEDGER_SYNC_FAIL"); reason != "" {
		fmt.Fprintln(os.Stderr, reason)
		os.Exit(1)
	}

	fmt.Printf("synced %s %s\n", args[1], args[2])
}
