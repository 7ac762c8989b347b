package commands

import (
	"context"
	"fmt"
	"log/slog"

	"booklister/internal/domain/listing"
	"booklister/internal/infra/ebay"
	"booklister/internal/pkg/errs"
	"booklister/internal/pkg/money"
)

// assertReason classifies a pre-publish assertion failure and selects
// the self-heal branch. Classification is structural, never a substring
// match on a rendered message.
type assertReason int

const (
	reasonNone assertReason = iota
	// reasonPolicyMissing: one or more policy ids absent from the
	// nested policies block. Heal: patch the configured defaults in.
	reasonPolicyMissing
	// reasonPriceMismatch: price readable but not the expected amount.
	// Heal: patch the corrected price.
	reasonPriceMismatch
	// reasonCorrupted: currency or price unreadable, or currency
	// wrong. Heal: delete and recreate the offer.
	reasonCorrupted
)

type assertionFailure struct {
	reason assertReason
	detail string
}

func (f *assertionFailure) Error() string {
	return f.detail
}

// guardAndPublish re-fetches the offer, asserts it against the payload
// that was just reconciled, runs at most one self-heal per branch, and
// publishes. A 409 on publish means the offer is already live and is
// treated as success.
func (u *publishUseCaseImpl) guardAndPublish(ctx context.Context, offerID string, expected *listing.OfferPayload) (listingID, finalOfferID string, err error) {
	var healedPolicy, healedPrice, recreated bool

	for {
		offer, err := u.upstream.GetOffer(ctx, offerID)
		if err != nil {
			return "", "", err
		}

		failure := assertOffer(offer, expected)
		if failure == nil {
			break
		}

		switch {
		case failure.reason == reasonPolicyMissing && !healedPolicy:
			healedPolicy = true
			slog.Warn("offer missing policies, patching defaults", "offer_id", offerID, "detail", failure.detail)
			if err := u.healPolicies(ctx, offerID, expected); err != nil {
				return "", "", err
			}

		case failure.reason == reasonPriceMismatch && !healedPrice:
			healedPrice = true
			slog.Warn("offer price drifted before publish, patching", "offer_id", offerID, "detail", failure.detail)
			if err := u.upstream.UpdateOffer(ctx, offerID, expected); err != nil {
				return "", "", err
			}

		case failure.reason == reasonCorrupted && !recreated:
			recreated = true
			slog.Warn("offer corrupted, recreating", "offer_id", offerID, "detail", failure.detail)
			newID, err := u.recreateOffer(ctx, offerID, expected)
			if err != nil {
				return "", "", err
			}
			offerID = newID

		default:
			// Every applicable branch already ran once. Unbounded
			// auto-repair risks a self-heal loop.
			return "", "", errs.Wrap(errs.ErrManualIntervention, failure.detail)
		}
	}

	listingID, err = u.publishOffer(ctx, offerID)
	if err != nil {
		return "", "", err
	}
	return listingID, offerID, nil
}

// assertOffer checks a freshly fetched offer, not the locally built
// payload, so drift introduced upstream is caught.
func assertOffer(offer *listing.ResolvedOffer, expected *listing.OfferPayload) *assertionFailure {
	if offer.MarketplaceID != expected.MarketplaceID {
		return &assertionFailure{
			reason: reasonCorrupted,
			detail: fmt.Sprintf("marketplace is %q, want %q", offer.MarketplaceID, expected.MarketplaceID),
		}
	}
	if offer.CategoryID == "" {
		return &assertionFailure{reason: reasonCorrupted, detail: "offer has no category id"}
	}

	currency, value, ok := offer.ExtractPrice()
	if !ok {
		return &assertionFailure{reason: reasonCorrupted, detail: "offer price is unreadable in either response shape"}
	}
	if currency != expected.PricingSummary.Price.Currency {
		return &assertionFailure{
			reason: reasonCorrupted,
			detail: fmt.Sprintf("offer currency is %q, want %q", currency, expected.PricingSummary.Price.Currency),
		}
	}
	if expectedValue := expected.PricingSummary.Price.Value; expectedValue != "" && !money.Equal(value, expectedValue) {
		return &assertionFailure{
			reason: reasonPriceMismatch,
			detail: fmt.Sprintf("offer price is %q, want %q", value, expectedValue),
		}
	}

	if policies := offer.Policies(); !policies.Complete() {
		return &assertionFailure{
			reason: reasonPolicyMissing,
			detail: "offer is missing one or more listing policy ids",
		}
	}

	return nil
}

// healPolicies patches just the nested policies block with the
// configured defaults.
func (u *publishUseCaseImpl) healPolicies(ctx context.Context, offerID string, expected *listing.OfferPayload) error {
	defaults, err := u.policies.ResolvedPolicyIDs(ctx, u.upstream.MarketplaceID())
	if err != nil {
		return err
	}
	if !defaults.Complete() {
		return errs.Wrap(errs.ErrPolicyNotConfigured, u.upstream.MarketplaceID())
	}

	patched := *expected
	patched.ListingPolicies = listing.ListingPolicies{
		PaymentPolicyID:     defaults.PaymentID,
		ReturnPolicyID:      defaults.ReturnID,
		FulfillmentPolicyID: defaults.FulfillmentID,
	}
	return u.upstream.UpdateOffer(ctx, offerID, &patched)
}

func (u *publishUseCaseImpl) recreateOffer(ctx context.Context, offerID string, expected *listing.OfferPayload) (string, error) {
	if err := u.upstream.DeleteOffer(ctx, offerID); err != nil {
		return "", err
	}
	return u.upstream.CreateOfferVerified(ctx, expected)
}

// publishOffer issues the publish call, folding an already-published
// conflict into a success.
func (u *publishUseCaseImpl) publishOffer(ctx context.Context, offerID string) (string, error) {
	resp, err := u.upstream.PublishOffer(ctx, offerID)
	if err == nil {
		return resp.ListingID, nil
	}

	apiErr, ok := ebay.AsAPIError(err)
	if !ok || !apiErr.IsConflict() {
		return "", err
	}

	slog.Info("offer already published, treating as success", "offer_id", offerID)
	if listingID := apiErr.ListingIDFromBody(); listingID != "" {
		return listingID, nil
	}

	// Conflict body carried no listing id; read it off the offer.
	offer, getErr := u.upstream.GetOffer(ctx, offerID)
	if getErr != nil {
		return "", errs.Wrap(getErr, "offer already published but listing id unavailable")
	}
	return offer.ListingIDValue(), nil
}
