package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"CoinPilot/internal/domain/models"
	"CoinPilot/internal/domain/repository"
	"CoinPilot/pkg/cache"
)

const reportKeyPrefix = "analysis"

// CacheReportStore implements ReportStore over a cache.Service backend
// (in-memory for single-node, Redis for shared deployments).
//
// Entries are stored without a backend expiration: freshness is a logical
// property of the entry's ExpiresAt, and stale entries must stay readable
// for the bulk-status view. Retention cleanup is an external concern.
type CacheReportStore struct {
	cache cache.Service
}

func NewCacheReportStore(c cache.Service) *CacheReportStore {
	return &CacheReportStore{cache: c}
}

func (s *CacheReportStore) Get(ctx context.Context, symbol string) (*models.CacheEntry, error) {
	var raw string
	err := s.cache.Get(ctx, reportKey(symbol), &raw)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("report store get: %w", err)
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("report store decode: %w", err)
	}
	return &entry, nil
}

func (s *CacheReportStore) Upsert(ctx context.Context, entry *models.CacheEntry) error {
	if entry == nil || entry.Symbol == "" {
		return fmt.Errorf("report store upsert: empty entry")
	}
	if !entry.ExpiresAt.After(entry.CreatedAt) {
		return fmt.Errorf("report store upsert: expires_at must be after created_at")
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("report store encode: %w", err)
	}
	if err := s.cache.Set(ctx, reportKey(entry.Symbol), string(b), 0); err != nil {
		return fmt.Errorf("report store set: %w", err)
	}
	return nil
}

func (s *CacheReportStore) List(ctx context.Context, symbols []string) ([]*models.CacheEntry, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	keys := make([]string, len(symbols))
	for i, symbol := range symbols {
		keys[i] = reportKey(symbol)
	}

	found, err := cache.MGetTyped[models.CacheEntry](ctx, s.cache, keys...)
	if err != nil {
		return nil, fmt.Errorf("report store list: %w", err)
	}

	entries := make([]*models.CacheEntry, 0, len(found))
	for _, symbol := range symbols {
		if e, ok := found[reportKey(symbol)]; ok {
			entry := e
			entries = append(entries, &entry)
		}
	}
	return entries, nil
}

func reportKey(symbol string) string {
	return cache.GenerateKey(reportKeyPrefix, symbol)
}

var _ repository.ReportStore = (*CacheReportStore)(nil)
