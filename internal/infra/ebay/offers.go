package ebay

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"booklister/internal/domain/listing"
	"booklister/internal/pkg/errs"
)

const inventoryBasePath = "/sell/inventory/v1"

// ReplaceInventoryItem PUTs the inventory item keyed by SKU. The call
// is a full replace; there is no create-once variant upstream.
func (c *Client) ReplaceInventoryItem(ctx context.Context, item *listing.InventoryItemPayload) error {
	c.tracer.Trace(item.SKU, "replace_inventory_item", item)
	path := fmt.Sprintf("%s/inventory_item/%s", inventoryBasePath, url.PathEscape(item.SKU))
	return c.do(ctx, http.MethodPut, path, item, nil)
}

// CreateOffer creates a new offer and returns its id.
func (c *Client) CreateOffer(ctx context.Context, offer *listing.OfferPayload) (string, error) {
	c.tracer.Trace(offer.SKU, "create_offer", offer)

	var resp struct {
		OfferID string `json:"offerId"`
	}
	if err := c.do(ctx, http.MethodPost, inventoryBasePath+"/offer", offer, &resp); err != nil {
		return "", err
	}
	if resp.OfferID == "" {
		return "", errs.New("offer created but response carried no offer id")
	}
	return resp.OfferID, nil
}

// CreateOfferVerified creates an offer, then polls it until the store
// reflects the write. The upstream is eventually consistent between
// offer creation and readback, so an immediate GET can 404 or return a
// transitional status.
func (c *Client) CreateOfferVerified(ctx context.Context, offer *listing.OfferPayload) (string, error) {
	offerID, err := c.CreateOffer(ctx, offer)
	if err != nil {
		return "", err
	}

	for attempt := 1; attempt <= c.backoff.MaxAttempts; attempt++ {
		if err := c.backoff.Sleep(ctx, attempt); err != nil {
			return "", err
		}

		resolved, err := c.GetOffer(ctx, offerID)
		if err != nil {
			if apiErr, ok := AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
				slog.Debug("offer not yet readable", "offer_id", offerID, "attempt", attempt)
				continue
			}
			return "", err
		}
		if resolved.Status.IsSettled() {
			return offerID, nil
		}
		slog.Debug("offer in transitional status", "offer_id", offerID, "status", resolved.Status, "attempt", attempt)
	}

	return "", errs.Wrap(errs.ErrVerificationFailed,
		fmt.Sprintf("offer %s not readable after %d attempts", offerID, c.backoff.MaxAttempts))
}

func (c *Client) GetOffer(ctx context.Context, offerID string) (*listing.ResolvedOffer, error) {
	var offer listing.ResolvedOffer
	path := fmt.Sprintf("%s/offer/%s", inventoryBasePath, url.PathEscape(offerID))
	if err := c.do(ctx, http.MethodGet, path, nil, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

// FindOffersBySKU lists the offers bound to a SKU on the configured
// marketplace. At most one should exist; callers take the first match.
func (c *Client) FindOffersBySKU(ctx context.Context, sku string) ([]listing.ResolvedOffer, error) {
	var resp struct {
		Offers []listing.ResolvedOffer `json:"offers"`
	}
	path := fmt.Sprintf("%s/offer?sku=%s&marketplace_id=%s",
		inventoryBasePath, url.QueryEscape(sku), url.QueryEscape(c.marketplaceID))
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	if err != nil {
		// The upstream 404s an empty result set instead of returning
		// an empty list.
		if apiErr, ok := AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return resp.Offers, nil
}

func (c *Client) UpdateOffer(ctx context.Context, offerID string, offer *listing.OfferPayload) error {
	c.tracer.Trace(offer.SKU, "update_offer", offer)
	path := fmt.Sprintf("%s/offer/%s", inventoryBasePath, url.PathEscape(offerID))
	return c.do(ctx, http.MethodPut, path, offer, nil)
}

func (c *Client) DeleteOffer(ctx context.Context, offerID string) error {
	path := fmt.Sprintf("%s/offer/%s", inventoryBasePath, url.PathEscape(offerID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// PublishResponse is the terminal result of a publish call.
type PublishResponse struct {
	ListingID string `json:"listingId"`
	Warnings  []struct {
		Message string `json:"message"`
	} `json:"warnings"`
}

func (c *Client) PublishOffer(ctx context.Context, offerID string) (*PublishResponse, error) {
	var resp PublishResponse
	path := fmt.Sprintf("%s/offer/%s/publish", inventoryBasePath, url.PathEscape(offerID))
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
