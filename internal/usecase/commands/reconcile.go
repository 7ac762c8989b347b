package commands

import (
	"context"
	"log/slog"

	"booklister/internal/domain/listing"
	"booklister/internal/infra/ebay"
	"booklister/internal/pkg/errs"
	"booklister/internal/pkg/money"
)

// reconcileOffer resolves the one offer for a SKU on the configured
// marketplace: reuse and update when it exists, create otherwise, and
// recover from the create/create race the upstream uniqueness
// constraint surfaces.
func (u *publishUseCaseImpl) reconcileOffer(ctx context.Context, sku string, payload *listing.OfferPayload) (string, error) {
	offers, err := u.upstream.FindOffersBySKU(ctx, sku)
	if err != nil {
		return "", err
	}

	if len(offers) > 0 {
		offerID := offers[0].OfferID
		slog.Info("reusing existing offer", "sku", sku, "offer_id", offerID)
		if err := u.updateExistingOffer(ctx, offerID, payload); err != nil {
			return "", err
		}
		return offerID, nil
	}

	offerID, err := u.upstream.CreateOfferVerified(ctx, payload)
	if err == nil {
		slog.Info("created offer", "sku", sku, "offer_id", offerID)
		return offerID, nil
	}

	recoveredID, recoverErr := u.recoverExistingOffer(ctx, sku, err)
	if recoverErr != nil {
		return "", recoverErr
	}
	slog.Info("recovered offer after create race", "sku", sku, "offer_id", recoveredID)
	if updateErr := u.updateExistingOffer(ctx, recoveredID, payload); updateErr != nil {
		return "", updateErr
	}
	return recoveredID, nil
}

// updateExistingOffer heals pricing drift, pushes the fresh payload,
// then verifies the price actually landed, retrying the update once. A
// still-wrong price after the retry is logged rather than fatal; the
// publish guard re-checks it.
func (u *publishUseCaseImpl) updateExistingOffer(ctx context.Context, offerID string, payload *listing.OfferPayload) error {
	u.logPricingDrift(ctx, offerID, payload)

	if err := u.upstream.UpdateOffer(ctx, offerID, payload); err != nil {
		return err
	}

	for attempt := 0; attempt < 2; attempt++ {
		resolved, err := u.upstream.GetOffer(ctx, offerID)
		if err != nil {
			return err
		}
		currency, value, ok := resolved.ExtractPrice()
		if ok && currency == payload.PricingSummary.Price.Currency && money.Equal(value, payload.PricingSummary.Price.Value) {
			return nil
		}
		if attempt == 0 {
			slog.Warn("offer price not reflected after update, retrying once",
				"offer_id", offerID, "got", value, "want", payload.PricingSummary.Price.Value)
			if err := u.upstream.UpdateOffer(ctx, offerID, payload); err != nil {
				return err
			}
		}
	}

	slog.Warn("offer price still stale after update retry", "offer_id", offerID)
	return nil
}

// logPricingDrift fetches the current offer and reports currency/price
// drift against the expected payload. The subsequent full update is the
// corrective write.
func (u *publishUseCaseImpl) logPricingDrift(ctx context.Context, offerID string, payload *listing.OfferPayload) {
	resolved, err := u.upstream.GetOffer(ctx, offerID)
	if err != nil {
		slog.Warn("could not fetch offer for drift check", "offer_id", offerID, "error", err)
		return
	}

	expected := payload.PricingSummary.Price
	currency, value, ok := resolved.ExtractPrice()
	switch {
	case !ok:
		slog.Warn("existing offer has no readable price", "offer_id", offerID)
	case currency != expected.Currency:
		slog.Warn("existing offer currency drifted", "offer_id", offerID, "got", currency, "want", expected.Currency)
	case !money.Equal(value, expected.Value):
		slog.Warn("existing offer price drifted", "offer_id", offerID, "got", value, "want", expected.Value)
	}
}

// recoverExistingOffer handles the "entity already exists" race: first
// try the offer id embedded in the error body, then re-query by SKU.
// A nil error means the offer was recovered; an unrecoverable race is
// marked with ErrOfferAlreadyExists.
func (u *publishUseCaseImpl) recoverExistingOffer(ctx context.Context, sku string, createErr error) (string, error) {
	apiErr, ok := ebay.AsAPIError(createErr)
	if !ok || !apiErr.IsAlreadyExists() {
		return "", createErr
	}

	if offerID := apiErr.OfferIDFromBody(); offerID != "" {
		return offerID, nil
	}

	offers, err := u.upstream.FindOffersBySKU(ctx, sku)
	if err != nil || len(offers) == 0 {
		slog.Warn("offer exists upstream but could not be recovered", "sku", sku, "error", err)
		return "", errs.Mark(createErr, errs.ErrOfferAlreadyExists)
	}
	return offers[0].OfferID, nil
}
