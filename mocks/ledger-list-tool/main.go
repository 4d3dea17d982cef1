// Command ledger-list-tool simulates the external ledger listing CLI for
// local development. Contract: invoked as `ledger-list-tool <KIND> <NUMBER>`;
// exit 0 with one JSON array on stdout, possibly surrounded by log noise.
//
// LEDGER_LIST_DOCS overrides the emitted array; LEDGER_LIST_FAIL forces a
// non-zero exit.
package main

import (
	"fmt"
	"os"
	"time"
)

func main() {
	args := os.Args[1:]
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: ledger-list-tool <KIND> <NUMBER>")
		os.Exit(2)
	}

	if reason := os.Getenv("LEDGER_LIST_FAIL"); reason != "" {
		fmt.Fprintln(os.Stderr, reason)
		os.Exit(1)
	}

	docs := os.Getenv("LEDGER_LIST_DOCS")
	if docs == "" {
		docs = fmt.Sprintf(`[{"docId":"D1","title":"Diploma","issuingEntity":"University","filePath":"/ledger/%s/%s/diploma.pdf","sizeBytes":1024,"createdAt":%q}]`,
			args[0], args[1], time.Now().Format(time.RFC3339))
	}

	// Surrounding log noise is part of the contract consumers must tolerate.
	fmt.Printf("connecting to peer...\nquery ok\n%s\ndone\n", docs)
}
