package consts

import "time"

const (
	DefaultListLimit   = 100
	MaxListLimit       = 1000
	RecentActivitySize = 20
	MaxOverviewDays    = 365

	DefaultSideEffectTimeout = 3 * time.Second
)
