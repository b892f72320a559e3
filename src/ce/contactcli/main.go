package main

import (
	"os"

	"github.com/foliosite/folio/src/lib/slog"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		slog.Errorf("folio-contact: %v", err)
		os.Exit(1)
	}
}
