//go:build unit

package listing_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklister/internal/domain/listing"
)

func validInventoryItem() listing.InventoryItemPayload {
	return listing.InventoryItemPayload{
		SKU: "book-1",
		Product: listing.ProductBlock{
			Title:       "The History of Typography",
			Description: "A survey of movable type.",
			ImageURLs:   []string{"https://images.example.com/1.jpg"},
		},
		Condition: "5000",
		Availability: listing.AvailabilityBlock{
			ShipToLocationAvailability: listing.ShipToLocationAvailability{Quantity: 1},
		},
	}
}

func validOffer() listing.OfferPayload {
	return listing.OfferPayload{
		SKU:           "book-1",
		MarketplaceID: "EBAY_US",
		Format:        listing.FormatFixedPrice,
		CategoryID:    listing.CategoryNonfiction,
		PricingSummary: listing.PricingSummary{
			Price: listing.Price{Value: "19.99", Currency: "USD"},
		},
		ListingPolicies: listing.ListingPolicies{
			PaymentPolicyID:     "pay-1",
			ReturnPolicyID:      "ret-1",
			FulfillmentPolicyID: "ful-1",
		},
	}
}

func TestValidateInventoryItem(t *testing.T) {
	t.Run("valid payload has no errors", func(t *testing.T) {
		p := validInventoryItem()
		assert.Empty(t, listing.ValidateInventoryItem(&p))
	})

	tests := []struct {
		name    string
		mutate  func(*listing.InventoryItemPayload)
		wantSub string
	}{
		{
			name:    "missing sku",
			mutate:  func(p *listing.InventoryItemPayload) { p.SKU = "" },
			wantSub: "sku is required",
		},
		{
			name:    "missing title",
			mutate:  func(p *listing.InventoryItemPayload) { p.Product.Title = "" },
			wantSub: "title is required",
		},
		{
			name:    "missing description",
			mutate:  func(p *listing.InventoryItemPayload) { p.Product.Description = "" },
			wantSub: "description is required",
		},
		{
			name:    "no images",
			mutate:  func(p *listing.InventoryItemPayload) { p.Product.ImageURLs = nil },
			wantSub: "at least one image",
		},
		{
			name: "too many images",
			mutate: func(p *listing.InventoryItemPayload) {
				p.Product.ImageURLs = make([]string, 13)
			},
			wantSub: "at most 12",
		},
		{
			name:    "missing condition",
			mutate:  func(p *listing.InventoryItemPayload) { p.Condition = "" },
			wantSub: "condition code is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validInventoryItem()
			tt.mutate(&p)

			errors := listing.ValidateInventoryItem(&p)
			require.NotEmpty(t, errors)
			assertContainsSub(t, errors, tt.wantSub)
		})
	}
}

func TestValidateOffer(t *testing.T) {
	t.Run("valid payload has no errors", func(t *testing.T) {
		p := validOffer()
		assert.Empty(t, listing.ValidateOffer(&p))
	})

	tests := []struct {
		name    string
		mutate  func(*listing.OfferPayload)
		wantSub string
	}{
		{
			name:    "missing sku",
			mutate:  func(p *listing.OfferPayload) { p.SKU = "" },
			wantSub: "sku is required",
		},
		{
			name:    "unsupported marketplace",
			mutate:  func(p *listing.OfferPayload) { p.MarketplaceID = "EBAY_XX" },
			wantSub: "not supported",
		},
		{
			name:    "wrong format",
			mutate:  func(p *listing.OfferPayload) { p.Format = "AUCTION" },
			wantSub: "format must be FIXED_PRICE",
		},
		{
			name:    "missing category",
			mutate:  func(p *listing.OfferPayload) { p.CategoryID = "" },
			wantSub: "category id is required",
		},
		{
			name:    "missing price value",
			mutate:  func(p *listing.OfferPayload) { p.PricingSummary.Price.Value = "" },
			wantSub: "price value is required",
		},
		{
			name:    "non-canonical price",
			mutate:  func(p *listing.OfferPayload) { p.PricingSummary.Price.Value = "19.9" },
			wantSub: "not a positive two-decimal",
		},
		{
			name:    "negative price",
			mutate:  func(p *listing.OfferPayload) { p.PricingSummary.Price.Value = "-5.00" },
			wantSub: "not a positive two-decimal",
		},
		{
			name:    "currency mismatch for marketplace",
			mutate:  func(p *listing.OfferPayload) { p.PricingSummary.Price.Currency = "GBP" },
			wantSub: "does not match USD",
		},
		{
			name:    "missing payment policy",
			mutate:  func(p *listing.OfferPayload) { p.ListingPolicies.PaymentPolicyID = "" },
			wantSub: "payment policy id is required",
		},
		{
			name:    "missing return policy",
			mutate:  func(p *listing.OfferPayload) { p.ListingPolicies.ReturnPolicyID = "" },
			wantSub: "return policy id is required",
		},
		{
			name:    "missing fulfillment policy",
			mutate:  func(p *listing.OfferPayload) { p.ListingPolicies.FulfillmentPolicyID = "" },
			wantSub: "fulfillment policy id is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validOffer()
			tt.mutate(&p)

			errors := listing.ValidateOffer(&p)
			require.NotEmpty(t, errors)
			assertContainsSub(t, errors, tt.wantSub)
		})
	}

	t.Run("errors accumulate instead of short-circuiting", func(t *testing.T) {
		p := validOffer()
		p.SKU = ""
		p.CategoryID = ""
		p.ListingPolicies = listing.ListingPolicies{}

		errors := listing.ValidateOffer(&p)
		assert.GreaterOrEqual(t, len(errors), 5)
	})
}

func TestValidatePair(t *testing.T) {
	t.Run("sku mismatch is reported", func(t *testing.T) {
		inv := validInventoryItem()
		offer := validOffer()
		offer.SKU = "book-2"

		errors := listing.ValidatePair(&inv, &offer)
		require.Len(t, errors, 1)
		assert.Contains(t, errors[0], "sku mismatch")
	})

	t.Run("matching payloads pass", func(t *testing.T) {
		inv := validInventoryItem()
		offer := validOffer()
		assert.Empty(t, listing.ValidatePair(&inv, &offer))
	})
}

func assertContainsSub(t *testing.T, errors []string, sub string) {
	t.Helper()
	for _, e := range errors {
		if strings.Contains(e, sub) {
			return
		}
	}
	assert.Failf(t, "missing expected validation error", "want substring %q in %v", sub, errors)
}
