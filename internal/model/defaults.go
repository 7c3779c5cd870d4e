package model

import "time"

// Shared defaults used by the CLI and the library packages.
const (
	DefaultSampleSize   = 0 // 0 = keep every tallied entry
	DefaultTopN         = 10
	DefaultQueryTimeout = 30 * time.Second
	DefaultChartWidth   = 80
	DefaultChartHeight  = 12
	DefaultDateField    = "date"
)
