package queries

import (
	"context"

	"github.com/google/uuid"

	"booklister/internal/domain/book"
	"booklister/internal/pkg/config"
)

// PublishStatusView is the last known publish state of a book. Reads
// are local only; no upstream call is made.
type PublishStatusView struct {
	BookID     uuid.UUID `json:"book_id"`
	SKU        string    `json:"sku"`
	CategoryID string    `json:"ebay_category_id"`
	OfferID    string    `json:"ebay_offer_id"`
	ListingID  string    `json:"ebay_listing_id"`
	ListingURL string    `json:"listing_url"`
	Status     string    `json:"publish_status"`
}

type BookReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*book.BookRecord, error)
}

type PublishQueries interface {
	GetPublishStatus(ctx context.Context, bookID uuid.UUID) (*PublishStatusView, error)
}

type publishQueriesImpl struct {
	books   BookReadStore
	ebayCfg config.EbayConfig
}

func NewPublishQueries(books BookReadStore, ebayCfg config.EbayConfig) PublishQueries {
	return &publishQueriesImpl{books: books, ebayCfg: ebayCfg}
}

func (q *publishQueriesImpl) GetPublishStatus(ctx context.Context, bookID uuid.UUID) (*PublishStatusView, error) {
	b, err := q.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	view := &PublishStatusView{
		BookID:     b.ID,
		SKU:        b.SKU,
		CategoryID: b.CategoryID,
		OfferID:    b.OfferID,
		ListingID:  b.ListingID,
		Status:     b.PublishStatus.String(),
	}
	if b.ListingID != "" {
		view.ListingURL = q.ebayCfg.ListingURL(b.ListingID)
	}
	return view, nil
}
