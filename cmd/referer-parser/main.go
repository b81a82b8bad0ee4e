// Package main provides the entry point for the referer-parser CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/referer-parser/cmd/referer-parser/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
