package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/opsgrid/check-cm/cmd"
	"github.com/opsgrid/check-cm/internal/config"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Errors surface on stdout in plugin format so the scheduler
		// records them instead of discarding stderr.
		var uerr *config.UsageError
		if errors.As(err, &uerr) {
			fmt.Printf("UNKNOWN - usage error: %s\n", uerr.Reason)
		} else {
			fmt.Printf("UNKNOWN - %s\n", err)
		}
		os.Exit(3)
	}
}
