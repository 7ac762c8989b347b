//go:build unit

package ebay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklister/internal/domain/listing"
	"booklister/internal/infra/ebay"
	"booklister/internal/pkg/backoff"
	"booklister/internal/pkg/config"
	"booklister/internal/pkg/errs"
)

type fakeTokens struct {
	token    string
	refreshn atomic.Int32
}

func (f *fakeTokens) AccessToken(context.Context) (string, error) { return f.token, nil }
func (f *fakeTokens) Refresh(context.Context) (string, error) {
	f.refreshn.Add(1)
	f.token = "refreshed-token"
	return f.token, nil
}

func newTestClient(t *testing.T, handler http.Handler) (*ebay.Client, *fakeTokens) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.EbayConfig{
		Environment:     "sandbox",
		BaseURLOverride: srv.URL,
		Marketplace:     "EBAY_US",
		HTTPTimeout:     5 * time.Second,
	}
	tokens := &fakeTokens{token: "initial-token"}
	return ebay.NewClient(cfg, tokens, backoff.None(), nil), tokens
}

func testOffer() *listing.OfferPayload {
	return &listing.OfferPayload{
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

func TestClient_TokenRefreshOnce(t *testing.T) {
	t.Run("401 triggers one refresh then retry succeeds", func(t *testing.T) {
		var calls atomic.Int32
		client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.Header.Get("Authorization") != "Bearer refreshed-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"offerId": "o-1"})
		}))

		offerID, err := client.CreateOffer(context.Background(), testOffer())
		require.NoError(t, err)
		assert.Equal(t, "o-1", offerID)
		assert.Equal(t, int32(1), tokens.refreshn.Load())
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("persistent 403 surfaces after a single refresh", func(t *testing.T) {
		client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		_, err := client.CreateOffer(context.Background(), testOffer())
		require.Error(t, err)

		apiErr, ok := ebay.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Equal(t, int32(1), tokens.refreshn.Load())
	})
}

func TestClient_RateLimitRetry(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"offerId": "o-1"})
	}))

	offerID, err := client.CreateOffer(context.Background(), testOffer())
	require.NoError(t, err)
	assert.Equal(t, "o-1", offerID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ServerErrorRetryBounded(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.CreateOffer(context.Background(), testOffer())
	require.Error(t, err)

	apiErr, ok := ebay.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, int32(5), calls.Load())
}

func TestClient_CreateOfferVerified(t *testing.T) {
	t.Run("polls until offer becomes readable", func(t *testing.T) {
		var gets atomic.Int32
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				_ = json.NewEncoder(w).Encode(map[string]string{"offerId": "o-1"})
				return
			}
			if gets.Add(1) < 3 {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"offerId": "o-1", "status": "UNPUBLISHED"})
		}))

		offerID, err := client.CreateOfferVerified(context.Background(), testOffer())
		require.NoError(t, err)
		assert.Equal(t, "o-1", offerID)
		assert.Equal(t, int32(3), gets.Load())
	})

	t.Run("verification ceiling converts to error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				_ = json.NewEncoder(w).Encode(map[string]string{"offerId": "o-1"})
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := client.CreateOfferVerified(context.Background(), testOffer())
		assert.ErrorIs(t, err, errs.ErrVerificationFailed)
	})
}

func TestClient_FindOffersBySKU(t *testing.T) {
	t.Run("404 means empty result set", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		offers, err := client.FindOffersBySKU(context.Background(), "book-1")
		require.NoError(t, err)
		assert.Empty(t, offers)
	})

	t.Run("offers are decoded with marketplace filter applied", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "book-1", r.URL.Query().Get("sku"))
			assert.Equal(t, "EBAY_US", r.URL.Query().Get("marketplace_id"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"offers": []map[string]any{{"offerId": "o-1", "sku": "book-1", "status": "UNPUBLISHED"}},
			})
		}))

		offers, err := client.FindOffersBySKU(context.Background(), "book-1")
		require.NoError(t, err)
		require.Len(t, offers, 1)
		assert.Equal(t, "o-1", offers[0].OfferID)
	})
}

func TestAPIError_Helpers(t *testing.T) {
	t.Run("already exists detection and offer id recovery", func(t *testing.T) {
		apiErr := &ebay.APIError{
			StatusCode: http.StatusBadRequest,
			Message:    "Offer entity already exists.",
			Body: []byte(`{"errors":[{"errorId":25002,"message":"Offer entity already exists.",
				"parameters":[{"name":"offerId","value":"o-racing"}]}]}`),
		}
		assert.True(t, apiErr.IsAlreadyExists())
		assert.Equal(t, "o-racing", apiErr.OfferIDFromBody())
	})

	t.Run("listing id from publish conflict warnings", func(t *testing.T) {
		apiErr := &ebay.APIError{
			StatusCode: http.StatusConflict,
			Body: []byte(`{"warnings":[{"message":"Offer is already published",
				"parameters":[{"name":"listingId","value":"l-999"}]}]}`),
		}
		assert.True(t, apiErr.IsConflict())
		assert.Equal(t, "l-999", apiErr.ListingIDFromBody())
	})

	t.Run("top level listing id wins", func(t *testing.T) {
		apiErr := &ebay.APIError{
			StatusCode: http.StatusConflict,
			Body:       []byte(`{"listingId":"l-123"}`),
		}
		assert.Equal(t, "l-123", apiErr.ListingIDFromBody())
	})
}
