package book

import (
	"github.com/google/uuid"

	"booklister/internal/pkg/errs"
)

// BookRecord is the intake record a listing is built from. It is loaded
// from local storage and treated as read-mostly by the publish pipeline;
// only the marketplace identifiers and publish status are written back.
type BookRecord struct {
	ID uuid.UUID

	Title       string
	AITitle     string
	Description string
	Author      string
	Publisher   string
	Year        string
	Language    string
	Edition     string
	Format      string
	Series      string

	Condition ConditionGrade
	Price     string
	Quantity  int

	// Specifics holds free-form AI-extracted fields (name -> scalar or
	// list). Keys the aspect builder does not recognize are ignored.
	Specifics map[string]any

	CategoryID string

	WeightPounds float64
	WeightOunces float64

	ImagePaths []string

	SKU           string
	OfferID       string
	ListingID     string
	PublishStatus PublishStatus
}

// PublishState is the durable artifact of one publish cycle, written
// back onto the record when the pipeline finishes or fails.
type PublishState struct {
	SKU        string
	CategoryID string
	OfferID    string
	ListingID  string
	Status     PublishStatus
}

// SKUValue returns the persisted SKU, or the book id when no publish
// cycle has assigned one yet. SKU and book id are 1:1 for life.
func (b *BookRecord) SKUValue() string {
	if b.SKU != "" {
		return b.SKU
	}
	return b.ID.String()
}

// TotalWeightPounds collapses pounds + ounces into decimal pounds.
func (b *BookRecord) TotalWeightPounds() float64 {
	return b.WeightPounds + b.WeightOunces/16.0
}

// ValidateForOffer enforces the invariants that must hold before an
// offer payload can be built: a price, a positive quantity, and at
// least one image.
func (b *BookRecord) ValidateForOffer() error {
	if b.Price == "" {
		return errs.Wrap(errs.ErrMissingField, "book has no price")
	}
	if b.Quantity < 1 {
		return errs.Wrap(errs.ErrMissingField, "book quantity must be at least 1")
	}
	if len(b.ImagePaths) == 0 {
		return errs.Wrap(errs.ErrMissingImages, "book has no images")
	}
	return nil
}
