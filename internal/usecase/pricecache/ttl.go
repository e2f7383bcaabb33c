package pricecache

import "time"

// TTLs per asset class. A snapshot older than its class TTL is rejected and
// the caller falls back to the last good snapshot or a static default.
const (
	// Metal spot prices move slowly enough for a half-hour window.
	TTLMetals = 30 * time.Minute

	// Stock and crypto quotes go stale fast.
	TTLQuotes = 5 * time.Minute

	// A nisab threshold derived from accepted metal prices stays usable
	// for an hour.
	TTLNisab = time.Hour

	// Currency exchange rates.
	TTLExchangeRate = time.Hour
)
