package listing

import (
	"fmt"
	"strings"

	"booklister/internal/domain/book"
	"booklister/internal/pkg/errs"
	"booklister/internal/pkg/money"
)

const (
	titleLimit = 80
	maxImages  = 12

	// Word-boundary truncation only applies when the break falls in the
	// last 30% of the limit; earlier breaks would discard too much.
	wordBoundaryFloor = titleLimit - titleLimit*30/100

	defaultWeightPounds = 1.0
	defaultLengthInches = 9.0
	defaultWidthInches  = 6.0
	defaultHeightInches = 2.0
)

// conditionCodes maps the intake grading scale to upstream numeric
// condition codes. Unrecognized grades fall back to Good.
var conditionCodes = map[book.ConditionGrade]string{
	book.ConditionBrandNew:   "1000",
	book.ConditionLikeNew:    "2750",
	book.ConditionVeryGood:   "4000",
	book.ConditionGood:       "5000",
	book.ConditionAcceptable: "6000",
}

const defaultConditionCode = "5000"

func ConditionCode(grade book.ConditionGrade) string {
	if code, ok := conditionCodes[grade]; ok {
		return code
	}
	return defaultConditionCode
}

// PolicyIDs carries the three business policy ids an offer must bind.
type PolicyIDs struct {
	PaymentID     string
	ReturnID      string
	FulfillmentID string
}

func (p PolicyIDs) Complete() bool {
	return p.PaymentID != "" && p.ReturnID != "" && p.FulfillmentID != ""
}

// MappingResult is the output of one full payload build: both payloads
// plus the title metadata, sharing a single category resolution.
type MappingResult struct {
	Inventory      InventoryItemPayload
	Offer          OfferPayload
	CategoryID     string
	TitleLength    int
	TitleTruncated bool
}

// BuildInventoryItem maps a book to the inventory item payload. The
// returned int and bool report the final title length and whether the
// title was truncated to fit.
func BuildInventoryItem(b *book.BookRecord, imageURLs []string, categoryID string) (InventoryItemPayload, int, bool, error) {
	if len(imageURLs) == 0 {
		return InventoryItemPayload{}, 0, false, errs.Wrap(errs.ErrMissingImages, "no listing images resolved")
	}
	if len(imageURLs) > maxImages {
		imageURLs = imageURLs[:maxImages]
	}

	if categoryID == "" {
		categoryID = ResolveCategory("", b)
	}

	title, truncated := truncateTitle(firstNonEmpty(b.AITitle, b.Title))

	quantity := b.Quantity
	if quantity < 1 {
		quantity = 1
	}

	weight := b.TotalWeightPounds()
	if weight <= 0 {
		weight = defaultWeightPounds
	}

	payload := InventoryItemPayload{
		SKU: b.SKUValue(),
		Product: ProductBlock{
			Title:       title,
			Description: buildDescription(b, title),
			ImageURLs:   imageURLs,
			Aspects:     BuildAspects(b, categoryID),
			Brand:       normalizePublisher(b.Publisher),
		},
		Condition: ConditionCode(b.Condition),
		Availability: AvailabilityBlock{
			ShipToLocationAvailability: ShipToLocationAvailability{Quantity: quantity},
		},
		PackageWeightAndSize: PackageBlock{
			Weight: PackageWeight{Value: weight, Unit: "POUND"},
			Dimensions: PackageDimensions{
				Length: defaultLengthInches,
				Width:  defaultWidthInches,
				Height: defaultHeightInches,
				Unit:   "INCH",
			},
		},
	}
	return payload, len(title), truncated, nil
}

// BuildOffer maps a book to the offer payload. Price, quantity, and all
// three policy ids must be present; the price is normalized to the
// canonical two-decimal string before insertion.
func BuildOffer(b *book.BookRecord, marketplaceID string, policies PolicyIDs, categoryID, merchantLocationKey string) (OfferPayload, error) {
	if err := b.ValidateForOffer(); err != nil {
		return OfferPayload{}, err
	}
	if !policies.Complete() {
		return OfferPayload{}, errs.Wrap(errs.ErrMissingField, "offer requires payment, return, and fulfillment policy ids")
	}

	currency, ok := CurrencyFor(marketplaceID)
	if !ok {
		return OfferPayload{}, errs.Wrap(errs.ErrUnknownMarketplace, marketplaceID)
	}

	value, err := money.CanonicalPositive(b.Price)
	if err != nil {
		return OfferPayload{}, err
	}

	if categoryID == "" {
		categoryID = ResolveCategory("", b)
	}

	return OfferPayload{
		SKU:           b.SKUValue(),
		MarketplaceID: marketplaceID,
		Format:        FormatFixedPrice,
		CategoryID:    categoryID,
		PricingSummary: PricingSummary{
			Price: Price{Value: value, Currency: currency},
		},
		ListingPolicies: ListingPolicies{
			PaymentPolicyID:     policies.PaymentID,
			ReturnPolicyID:      policies.ReturnID,
			FulfillmentPolicyID: policies.FulfillmentID,
		},
		MerchantLocationKey: merchantLocationKey,
	}, nil
}

// BuildMappingResult builds both payloads with one shared category
// resolution.
func BuildMappingResult(b *book.BookRecord, imageURLs []string, marketplaceID string, policies PolicyIDs, categoryID, merchantLocationKey string) (MappingResult, error) {
	resolved := ResolveCategory(categoryID, b)

	inventory, titleLen, truncated, err := BuildInventoryItem(b, imageURLs, resolved)
	if err != nil {
		return MappingResult{}, err
	}
	offer, err := BuildOffer(b, marketplaceID, policies, resolved, merchantLocationKey)
	if err != nil {
		return MappingResult{}, err
	}
	return MappingResult{
		Inventory:      inventory,
		Offer:          offer,
		CategoryID:     resolved,
		TitleLength:    titleLen,
		TitleTruncated: truncated,
	}, nil
}

// truncateTitle enforces the 80-character title limit. When the cut
// point has a space in the last 30% of the window, the title breaks at
// that word boundary; otherwise it is cut hard at the limit.
func truncateTitle(title string) (string, bool) {
	runes := []rune(title)
	if len(runes) <= titleLimit {
		return title, false
	}
	window := string(runes[:titleLimit])
	if idx := strings.LastIndex(window, " "); idx > wordBoundaryFloor {
		return strings.TrimSpace(window[:idx]), true
	}
	return strings.TrimSpace(window), true
}

func buildDescription(b *book.BookRecord, title string) string {
	if b.Description != "" {
		return b.Description
	}
	var sb strings.Builder
	sb.WriteString(title)
	if b.Author != "" {
		fmt.Fprintf(&sb, " by %s", b.Author)
	}
	sb.WriteString(".")
	if label := conditionLabel(b.Condition); label != "" {
		fmt.Fprintf(&sb, " Condition: %s.", label)
	}
	return sb.String()
}

func conditionLabel(grade book.ConditionGrade) string {
	switch grade {
	case book.ConditionBrandNew:
		return "Brand New"
	case book.ConditionLikeNew:
		return "Like New"
	case book.ConditionVeryGood:
		return "Very Good"
	case book.ConditionGood:
		return "Good"
	case book.ConditionAcceptable:
		return "Acceptable"
	default:
		return "Good"
	}
}
