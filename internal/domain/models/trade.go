package models

import "time"

// StreamTrade is one live trade event from the market stream, folded
// into the current day's bar by the collector.
type StreamTrade struct {
	Symbol string
	Price  float64
	Volume float64
	At     time.Time
}
