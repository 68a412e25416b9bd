// Command scanctl is the operator toolbox for scanflow: offline barcode
// decoding and device token issuing.
package main

import (
	"os"

	"scanflow/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		l, logErr := logger.New(logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Errorw("command failed", "error", err)
			_ = l.Sync()
		}
		os.Exit(1)
	}
}
