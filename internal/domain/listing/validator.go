package listing

import (
	"fmt"
	"unicode/utf8"

	"booklister/internal/pkg/money"
)

// Validation is pure and accumulates every failure instead of stopping
// at the first, so one publish attempt surfaces the full repair list.

// ValidateInventoryItem checks the inventory payload structure before
// any network call.
func ValidateInventoryItem(p *InventoryItemPayload) []string {
	var errors []string

	if p.SKU == "" {
		errors = append(errors, "inventory item: sku is required")
	}
	if p.Product.Title == "" {
		errors = append(errors, "inventory item: product title is required")
	} else if utf8.RuneCountInString(p.Product.Title) > titleLimit {
		errors = append(errors, fmt.Sprintf("inventory item: title exceeds %d characters", titleLimit))
	}
	if p.Product.Description == "" {
		errors = append(errors, "inventory item: product description is required")
	}
	if n := len(p.Product.ImageURLs); n == 0 {
		errors = append(errors, "inventory item: at least one image url is required")
	} else if n > maxImages {
		errors = append(errors, fmt.Sprintf("inventory item: at most %d image urls are allowed", maxImages))
	}
	if p.Condition == "" {
		errors = append(errors, "inventory item: condition code is required")
	}

	return errors
}

// ValidateOffer checks the offer payload structure before any network
// call. Quantity lives on the inventory item's availability block, so
// no quantity check belongs here.
func ValidateOffer(p *OfferPayload) []string {
	var errors []string

	if p.SKU == "" {
		errors = append(errors, "offer: sku is required")
	}

	expectedCurrency, knownMarketplace := CurrencyFor(p.MarketplaceID)
	if !knownMarketplace {
		errors = append(errors, fmt.Sprintf("offer: marketplace %q is not supported", p.MarketplaceID))
	}

	if p.Format != FormatFixedPrice {
		errors = append(errors, fmt.Sprintf("offer: format must be %s", FormatFixedPrice))
	}
	if p.CategoryID == "" {
		errors = append(errors, "offer: category id is required")
	}

	price := p.PricingSummary.Price
	if price.Value == "" {
		errors = append(errors, "offer: price value is required")
	} else if canon, err := money.CanonicalPositive(price.Value); err != nil || canon != price.Value {
		errors = append(errors, fmt.Sprintf("offer: price %q is not a positive two-decimal value", price.Value))
	}
	if price.Currency == "" {
		errors = append(errors, "offer: price currency is required")
	} else if knownMarketplace && price.Currency != expectedCurrency {
		errors = append(errors, fmt.Sprintf("offer: currency %s does not match %s for marketplace %s", price.Currency, expectedCurrency, p.MarketplaceID))
	}

	if p.ListingPolicies.PaymentPolicyID == "" {
		errors = append(errors, "offer: payment policy id is required")
	}
	if p.ListingPolicies.ReturnPolicyID == "" {
		errors = append(errors, "offer: return policy id is required")
	}
	if p.ListingPolicies.FulfillmentPolicyID == "" {
		errors = append(errors, "offer: fulfillment policy id is required")
	}

	return errors
}

// ValidatePair runs both payload validations plus the cross-payload SKU
// consistency check.
func ValidatePair(inv *InventoryItemPayload, offer *OfferPayload) []string {
	errors := ValidateInventoryItem(inv)
	errors = append(errors, ValidateOffer(offer)...)
	if inv.SKU != "" && offer.SKU != "" && inv.SKU != offer.SKU {
		errors = append(errors, fmt.Sprintf("sku mismatch: inventory item %q vs offer %q", inv.SKU, offer.SKU))
	}
	return errors
}
