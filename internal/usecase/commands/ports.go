package commands

import (
	"context"

	"github.com/google/uuid"

	"booklister/internal/domain/book"
	"booklister/internal/domain/listing"
	"booklister/internal/infra/ebay"
)

// UpstreamClient is the slice of the marketplace client the publish
// pipeline consumes.
type UpstreamClient interface {
	MarketplaceID() string
	ReplaceInventoryItem(ctx context.Context, item *listing.InventoryItemPayload) error
	CreateOfferVerified(ctx context.Context, offer *listing.OfferPayload) (string, error)
	GetOffer(ctx context.Context, offerID string) (*listing.ResolvedOffer, error)
	FindOffersBySKU(ctx context.Context, sku string) ([]listing.ResolvedOffer, error)
	UpdateOffer(ctx context.Context, offerID string, offer *listing.OfferPayload) error
	DeleteOffer(ctx context.Context, offerID string) error
	PublishOffer(ctx context.Context, offerID string) (*ebay.PublishResponse, error)
}

type BookRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*book.BookRecord, error)
	SavePublishState(ctx context.Context, id uuid.UUID, state book.PublishState) error
}

type PolicyResolver interface {
	ResolvedPolicyIDs(ctx context.Context, marketplaceID string) (listing.PolicyIDs, error)
}

type ImageResolver interface {
	ListingURLs(b *book.BookRecord) ([]string, error)
}
