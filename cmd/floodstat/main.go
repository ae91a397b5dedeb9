// Command floodstat computes descriptive statistics and correlations over
// gauge readings exported to CSV or XLSX, using the same statistics engine as
// the analytics service.
//
// Usage:
//
//	floodstat summary readings.xlsx --columns stage,discharge
//	floodstat correlate readings.csv --x rainfall --y stage --method spearman
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
