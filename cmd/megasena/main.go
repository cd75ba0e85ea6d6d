// Package main is the megasena command line client.
//
// Every command opens the same databases as the API server and prints the
// JSON contract on stdout; logs go to stderr.
//
// Usage:
//
//	megasena import draws.csv
//	megasena generate -n 3 --seed 42
//	megasena check 4 5 30 33 41 52
//	megasena stats
//	megasena batches --limit 5
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
