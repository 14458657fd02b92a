package models

import "time"

// EntryStatus is the lifecycle state of a cached analysis.
type EntryStatus string

const (
	// EntryPending marks a computation in flight with no usable report yet.
	EntryPending EntryStatus = "PENDING"
	// EntryReady holds a usable report.
	EntryReady EntryStatus = "READY"
	// EntryFailed holds the last error with no usable report.
	EntryFailed EntryStatus = "FAILED"
)

// CacheEntry is the stored analysis record for one asset. One entry per
// symbol; every successful computation replaces it wholesale.
type CacheEntry struct {
	Symbol    string        `json:"symbol"`
	Status    EntryStatus   `json:"status"`
	Report    *SignalReport `json:"report,omitempty"`
	LastError string        `json:"last_error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// IsFresh reports whether the entry can be served without recomputation.
func (e *CacheEntry) IsFresh(now time.Time) bool {
	if e == nil || e.Status != EntryReady {
		return false
	}
	return now.Before(e.ExpiresAt)
}

// NewReadyEntry builds a READY entry with a fresh TTL window.
// ExpiresAt is always strictly after CreatedAt, even for ttl <= 0.
func NewReadyEntry(report *SignalReport, now time.Time, ttl time.Duration) *CacheEntry {
	if ttl <= 0 {
		ttl = time.Nanosecond
	}
	return &CacheEntry{
		Symbol:    report.Symbol,
		Status:    EntryReady,
		Report:    report,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// NewFailedEntry records a failed computation for symbols with no usable
// previous report.
func NewFailedEntry(symbol string, err error, now time.Time, ttl time.Duration) *CacheEntry {
	if ttl <= 0 {
		ttl = time.Nanosecond
	}
	return &CacheEntry{
		Symbol:    symbol,
		Status:    EntryFailed,
		LastError: err.Error(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// NewPendingEntry marks a first-time computation in flight.
func NewPendingEntry(symbol string, now time.Time, ttl time.Duration) *CacheEntry {
	if ttl <= 0 {
		ttl = time.Nanosecond
	}
	return &CacheEntry{
		Symbol:    symbol,
		Status:    EntryPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
