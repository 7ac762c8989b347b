package queries

import (
	"context"

	"booklister/internal/domain/listing"
)

type PolicyReadStore interface {
	Defaults(ctx context.Context, marketplaceID string) (listing.PolicyIDs, error)
}

type PolicyQueries interface {
	Defaults(ctx context.Context) (listing.PolicyIDs, error)
}

type policyQueriesImpl struct {
	store         PolicyReadStore
	marketplaceID string
}

func NewPolicyQueries(store PolicyReadStore, marketplaceID string) PolicyQueries {
	return &policyQueriesImpl{store: store, marketplaceID: marketplaceID}
}

func (q *policyQueriesImpl) Defaults(ctx context.Context) (listing.PolicyIDs, error) {
	return q.store.Defaults(ctx, q.marketplaceID)
}
