// Package policystore holds the per-marketplace default business policy
// ids and serves them through a short-lived cache. Policy ids change
// rarely but are read on every publish.
package policystore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"booklister/internal/domain/listing"
	"booklister/internal/infra"
	"booklister/internal/pkg/clock"
)

const cacheTTL = 10 * time.Minute

type cacheEntry struct {
	ids       listing.PolicyIDs
	expiresAt time.Time
}

type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
	clock  clock.Clock

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func New(db *sqlx.DB, logger *slog.Logger, clk clock.Clock) *Store {
	return &Store{
		db:     db,
		logger: logger,
		clock:  clk,
		cache:  make(map[string]cacheEntry),
	}
}

type policyRow struct {
	PaymentPolicyID     string `db:"payment_policy_id"`
	ReturnPolicyID      string `db:"return_policy_id"`
	FulfillmentPolicyID string `db:"fulfillment_policy_id"`
}

// ResolvedPolicyIDs returns the configured defaults for a marketplace,
// served from cache within the TTL. Unconfigured ids come back empty;
// the caller decides whether that is fatal.
func (s *Store) ResolvedPolicyIDs(ctx context.Context, marketplaceID string) (listing.PolicyIDs, error) {
	now := s.clock.Now()

	s.mu.RLock()
	entry, ok := s.cache[marketplaceID]
	s.mu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.ids, nil
	}

	ids, err := s.readDefaults(ctx, marketplaceID)
	if err != nil {
		return listing.PolicyIDs{}, err
	}

	s.mu.Lock()
	s.cache[marketplaceID] = cacheEntry{ids: ids, expiresAt: now.Add(cacheTTL)}
	s.mu.Unlock()
	return ids, nil
}

// Defaults reads the stored defaults without touching the cache.
func (s *Store) Defaults(ctx context.Context, marketplaceID string) (listing.PolicyIDs, error) {
	return s.readDefaults(ctx, marketplaceID)
}

// SetDefaults stores new defaults and drops the marketplace's cache
// entry so the next publish sees them immediately.
func (s *Store) SetDefaults(ctx context.Context, marketplaceID string, ids listing.PolicyIDs) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policy_defaults (marketplace_id, payment_policy_id, return_policy_id, fulfillment_policy_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(marketplace_id) DO UPDATE SET
			payment_policy_id = excluded.payment_policy_id,
			return_policy_id = excluded.return_policy_id,
			fulfillment_policy_id = excluded.fulfillment_policy_id,
			updated_at = datetime('now')`,
		marketplaceID, ids.PaymentID, ids.ReturnID, ids.FulfillmentID)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to save policy defaults", err)
	}

	s.mu.Lock()
	delete(s.cache, marketplaceID)
	s.mu.Unlock()
	return nil
}

func (s *Store) readDefaults(ctx context.Context, marketplaceID string) (listing.PolicyIDs, error) {
	var row policyRow
	query := `SELECT payment_policy_id, return_policy_id, fulfillment_policy_id
		FROM policy_defaults WHERE marketplace_id = ?`
	if err := s.db.GetContext(ctx, &row, query, marketplaceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return listing.PolicyIDs{}, nil
		}
		return listing.PolicyIDs{}, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to load policy defaults", err)
	}
	return listing.PolicyIDs{
		PaymentID:     row.PaymentPolicyID,
		ReturnID:      row.ReturnPolicyID,
		FulfillmentID: row.FulfillmentPolicyID,
	}, nil
}
