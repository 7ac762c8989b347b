// Package listing owns the payload shapes exchanged with the marketplace
// Sell APIs and the pure mapping/validation logic that produces them.
package listing

// FormatFixedPrice is the only listing format this pipeline produces.
const FormatFixedPrice = "FIXED_PRICE"

// marketplaceCurrencies is the fixed marketplace -> currency table. A
// marketplace absent from this table cannot be listed to.
var marketplaceCurrencies = map[string]string{
	"EBAY_US": "USD",
	"EBAY_GB": "GBP",
	"EBAY_DE": "EUR",
	"EBAY_FR": "EUR",
	"EBAY_IT": "EUR",
	"EBAY_ES": "EUR",
	"EBAY_AU": "AUD",
	"EBAY_CA": "CAD",
}

// CurrencyFor returns the expected currency for a marketplace id.
func CurrencyFor(marketplaceID string) (string, bool) {
	c, ok := marketplaceCurrencies[marketplaceID]
	return c, ok
}

type Price struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type PricingSummary struct {
	Price Price `json:"price"`
}

// ListingPolicies is always emitted as a nested block. Policy ids at the
// payload root are rejected by the current upstream schema.
type ListingPolicies struct {
	PaymentPolicyID     string `json:"paymentPolicyId"`
	ReturnPolicyID      string `json:"returnPolicyId"`
	FulfillmentPolicyID string `json:"fulfillmentPolicyId"`
}

func (p ListingPolicies) Complete() bool {
	return p.PaymentPolicyID != "" && p.ReturnPolicyID != "" && p.FulfillmentPolicyID != ""
}

type ProductBlock struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ImageURLs   []string            `json:"imageUrls"`
	Aspects     map[string][]string `json:"aspects,omitempty"`
	Brand       string              `json:"brand,omitempty"`
}

type ShipToLocationAvailability struct {
	Quantity int `json:"quantity"`
}

// AvailabilityBlock is the canonical home of quantity. Quantity is never
// placed on the offer payload.
type AvailabilityBlock struct {
	ShipToLocationAvailability ShipToLocationAvailability `json:"shipToLocationAvailability"`
}

type PackageWeight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type PackageDimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

type PackageBlock struct {
	Weight     PackageWeight     `json:"weight"`
	Dimensions PackageDimensions `json:"dimensions"`
}

// InventoryItemPayload is rebuilt fresh on every publish attempt and
// PUT to the upstream keyed by SKU. The SKU rides in the URL path, not
// the body.
type InventoryItemPayload struct {
	SKU                  string            `json:"-"`
	Product              ProductBlock      `json:"product"`
	Condition            string            `json:"condition"`
	Availability         AvailabilityBlock `json:"availability"`
	PackageWeightAndSize PackageBlock      `json:"packageWeightAndSize"`
}

// OfferPayload is created once per SKU + marketplace and updated in
// place afterwards.
type OfferPayload struct {
	SKU                 string          `json:"sku"`
	MarketplaceID       string          `json:"marketplaceId"`
	Format              string          `json:"format"`
	CategoryID          string          `json:"categoryId"`
	PricingSummary      PricingSummary  `json:"pricingSummary"`
	ListingPolicies     ListingPolicies `json:"listingPolicies"`
	MerchantLocationKey string          `json:"merchantLocationKey,omitempty"`
}

type OfferStatus string

const (
	OfferStatusDraft               OfferStatus = "DRAFT"
	OfferStatusUnpublished         OfferStatus = "UNPUBLISHED"
	OfferStatusPublished           OfferStatus = "PUBLISHED"
	OfferStatusPublishedOutOfStock OfferStatus = "PUBLISHED_OUT_OF_STOCK"
	OfferStatusPublishing          OfferStatus = "PUBLISHING"
)

// IsSettled reports whether the status is one the upstream store is
// known to return once a freshly created offer becomes readable.
func (s OfferStatus) IsSettled() bool {
	switch s {
	case OfferStatusUnpublished, OfferStatusPublished, OfferStatusPublishedOutOfStock, OfferStatusPublishing:
		return true
	default:
		return false
	}
}

type ListingRef struct {
	ListingID string `json:"listingId"`
}

// ResolvedOffer is the upstream's read shape. Price has shipped under
// two different fields over API revisions, so both are declared and
// ExtractPrice picks whichever is populated.
type ResolvedOffer struct {
	OfferID         string           `json:"offerId"`
	SKU             string           `json:"sku"`
	MarketplaceID   string           `json:"marketplaceId"`
	Format          string           `json:"format"`
	CategoryID      string           `json:"categoryId"`
	Status          OfferStatus      `json:"status"`
	Pricing         *Price           `json:"pricing,omitempty"`
	PricingSummary  *PricingSummary  `json:"pricingSummary,omitempty"`
	ListingPolicies *ListingPolicies `json:"listingPolicies,omitempty"`
	Listing         *ListingRef      `json:"listing,omitempty"`
}

// ExtractPrice resolves currency and value from whichever response shape
// is present, legacy nested field first, then the pricing summary.
func (o *ResolvedOffer) ExtractPrice() (currency, value string, ok bool) {
	if o.Pricing != nil && o.Pricing.Value != "" {
		return o.Pricing.Currency, o.Pricing.Value, true
	}
	if o.PricingSummary != nil && o.PricingSummary.Price.Value != "" {
		p := o.PricingSummary.Price
		return p.Currency, p.Value, true
	}
	return "", "", false
}

// Policies returns the nested policy ids, zero-valued when the block is
// absent from the response.
func (o *ResolvedOffer) Policies() ListingPolicies {
	if o.ListingPolicies == nil {
		return ListingPolicies{}
	}
	return *o.ListingPolicies
}

// ListingIDValue returns the minted listing id once published.
func (o *ResolvedOffer) ListingIDValue() string {
	if o.Listing == nil {
		return ""
	}
	return o.Listing.ListingID
}
