//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklister/internal/domain/book"
	"booklister/internal/domain/listing"
	"booklister/internal/infra/ebay"
	"booklister/internal/pkg/config"
	"booklister/internal/pkg/errs"
	"booklister/internal/usecase/commands"
)

// fakeUpstream is an in-memory stand-in for the marketplace that
// records call counts and supports fault injection per operation.
type fakeUpstream struct {
	offers      map[string]*listing.ResolvedOffer // by offer id
	nextID      int
	listingSeq  int
	marketplace string

	createCalls  int
	updateCalls  int
	publishCalls int
	deleteCalls  int
	getCalls     int
	findCalls    int

	failCreate  error
	failPublish error

	// mutateOnGet lets a test corrupt what readbacks return.
	mutateOnGet func(*listing.ResolvedOffer)
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		offers:      make(map[string]*listing.ResolvedOffer),
		marketplace: "EBAY_US",
	}
}

func (f *fakeUpstream) MarketplaceID() string { return f.marketplace }

func (f *fakeUpstream) ReplaceInventoryItem(context.Context, *listing.InventoryItemPayload) error {
	return nil
}

func (f *fakeUpstream) CreateOfferVerified(_ context.Context, offer *listing.OfferPayload) (string, error) {
	f.createCalls++
	if f.failCreate != nil {
		return "", f.failCreate
	}
	f.nextID++
	id := fmt.Sprintf("offer-%d", f.nextID)
	f.offers[id] = resolvedFromPayload(id, offer)
	return id, nil
}

func (f *fakeUpstream) GetOffer(_ context.Context, offerID string) (*listing.ResolvedOffer, error) {
	f.getCalls++
	offer, ok := f.offers[offerID]
	if !ok {
		return nil, &ebay.APIError{StatusCode: http.StatusNotFound}
	}
	copied := *offer
	if f.mutateOnGet != nil {
		f.mutateOnGet(&copied)
	}
	return &copied, nil
}

func (f *fakeUpstream) FindOffersBySKU(_ context.Context, sku string) ([]listing.ResolvedOffer, error) {
	f.findCalls++
	var found []listing.ResolvedOffer
	for _, offer := range f.offers {
		if offer.SKU == sku {
			found = append(found, *offer)
		}
	}
	return found, nil
}

func (f *fakeUpstream) UpdateOffer(_ context.Context, offerID string, offer *listing.OfferPayload) error {
	f.updateCalls++
	if _, ok := f.offers[offerID]; !ok {
		return &ebay.APIError{StatusCode: http.StatusNotFound}
	}
	f.offers[offerID] = resolvedFromPayload(offerID, offer)
	return nil
}

func (f *fakeUpstream) DeleteOffer(_ context.Context, offerID string) error {
	f.deleteCalls++
	delete(f.offers, offerID)
	return nil
}

func (f *fakeUpstream) PublishOffer(_ context.Context, offerID string) (*ebay.PublishResponse, error) {
	f.publishCalls++
	if f.failPublish != nil {
		return nil, f.failPublish
	}
	offer, ok := f.offers[offerID]
	if !ok {
		return nil, &ebay.APIError{StatusCode: http.StatusNotFound}
	}
	f.listingSeq++
	listingID := fmt.Sprintf("listing-%d", f.listingSeq)
	offer.Status = listing.OfferStatusPublished
	offer.Listing = &listing.ListingRef{ListingID: listingID}
	return &ebay.PublishResponse{ListingID: listingID}, nil
}

func resolvedFromPayload(id string, offer *listing.OfferPayload) *listing.ResolvedOffer {
	policies := offer.ListingPolicies
	summary := offer.PricingSummary
	return &listing.ResolvedOffer{
		OfferID:         id,
		SKU:             offer.SKU,
		MarketplaceID:   offer.MarketplaceID,
		Format:          offer.Format,
		CategoryID:      offer.CategoryID,
		Status:          listing.OfferStatusUnpublished,
		PricingSummary:  &summary,
		ListingPolicies: &policies,
	}
}

type fakeBooks struct {
	records map[uuid.UUID]*book.BookRecord
	states  map[uuid.UUID]book.PublishState
}

func newFakeBooks(records ...*book.BookRecord) *fakeBooks {
	f := &fakeBooks{
		records: make(map[uuid.UUID]*book.BookRecord),
		states:  make(map[uuid.UUID]book.PublishState),
	}
	for _, r := range records {
		f.records[r.ID] = r
	}
	return f
}

func (f *fakeBooks) FindByID(_ context.Context, id uuid.UUID) (*book.BookRecord, error) {
	b, ok := f.records[id]
	if !ok {
		return nil, errs.Wrap(errs.ErrBookNotFound, id.String())
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBooks) SavePublishState(_ context.Context, id uuid.UUID, state book.PublishState) error {
	if _, ok := f.records[id]; !ok {
		return errs.Wrap(errs.ErrBookNotFound, id.String())
	}
	f.states[id] = state
	return nil
}

type fakePolicies struct {
	ids  listing.PolicyIDs
	err  error
	gets int
}

func (f *fakePolicies) ResolvedPolicyIDs(context.Context, string) (listing.PolicyIDs, error) {
	f.gets++
	return f.ids, f.err
}

type fakeImages struct{}

func (fakeImages) ListingURLs(b *book.BookRecord) ([]string, error) {
	if len(b.ImagePaths) == 0 {
		return nil, errs.Wrap(errs.ErrMissingImages, b.ID.String())
	}
	urls := make([]string, len(b.ImagePaths))
	for i, p := range b.ImagePaths {
		urls[i] = "https://images.example.com/" + p
	}
	return urls, nil
}

func publishableBook(mutate ...func(*book.BookRecord)) *book.BookRecord {
	b := &book.BookRecord{
		ID:         uuid.New(),
		Title:      "The History of Typography",
		Author:     "Jane Smith",
		Condition:  book.ConditionGood,
		Price:      "19.99",
		Quantity:   1,
		ImagePaths: []string{"front.jpg", "back.jpg"},
	}
	for _, m := range mutate {
		m(b)
	}
	return b
}

type pipeline struct {
	uc       commands.PublishCommands
	upstream *fakeUpstream
	books    *fakeBooks
	policies *fakePolicies
}

func newPipeline(b *book.BookRecord) *pipeline {
	upstream := newFakeUpstream()
	books := newFakeBooks(b)
	policies := &fakePolicies{ids: listing.PolicyIDs{
		PaymentID:     "pay-1",
		ReturnID:      "ret-1",
		FulfillmentID: "ful-1",
	}}
	cfg := config.EbayConfig{Environment: "sandbox", Marketplace: "EBAY_US"}
	return &pipeline{
		uc:       commands.NewPublishUseCase(books, policies, fakeImages{}, upstream, cfg),
		upstream: upstream,
		books:    books,
		policies: policies,
	}
}

func TestPublish_Success(t *testing.T) {
	b := publishableBook()
	p := newPipeline(b)

	result, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Equal(t, b.ID.String(), result.SKU)
	assert.NotEmpty(t, result.OfferID)
	assert.NotEmpty(t, result.ListingID)
	assert.Contains(t, result.ListingURL, result.ListingID)
	assert.Contains(t, result.ListingURL, "sandbox")

	state := p.books.states[b.ID]
	assert.Equal(t, book.PublishStatusPublished, state.Status)
	assert.Equal(t, result.OfferID, state.OfferID)
	assert.Equal(t, result.ListingID, state.ListingID)

	assert.Equal(t, 1, p.upstream.createCalls)
	assert.Equal(t, 1, p.upstream.publishCalls)
}

func TestPublish_IdempotentReconciliation(t *testing.T) {
	b := publishableBook()
	p := newPipeline(b)

	first, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{Draft: true})
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{Draft: true})
	require.NoError(t, err)
	require.True(t, second.Success)

	// Second run must update the existing offer, never create another.
	assert.Equal(t, 1, p.upstream.createCalls)
	assert.GreaterOrEqual(t, p.upstream.updateCalls, 1)
	assert.Len(t, p.upstream.offers, 1)
	assert.Equal(t, first.OfferID, second.OfferID)
}

func TestPublish_AlreadyExistsRaceRecovery(t *testing.T) {
	t.Run("offer id recovered from error body", func(t *testing.T) {
		b := publishableBook()
		p := newPipeline(b)

		// Pre-seed the offer under an id the find step cannot see, so
		// the create path runs and hits the uniqueness violation.
		raced := resolvedFromPayload("offer-raced", &listing.OfferPayload{
			SKU:           b.ID.String(),
			MarketplaceID: "EBAY_US",
			Format:        listing.FormatFixedPrice,
			CategoryID:    listing.CategoryNonfiction,
			PricingSummary: listing.PricingSummary{
				Price: listing.Price{Value: "19.99", Currency: "USD"},
			},
			ListingPolicies: listing.ListingPolicies{
				PaymentPolicyID: "pay-1", ReturnPolicyID: "ret-1", FulfillmentPolicyID: "ful-1",
			},
		})
		raced.SKU = "hidden-from-find"
		p.upstream.offers["offer-raced"] = raced
		p.upstream.failCreate = &ebay.APIError{
			StatusCode: http.StatusBadRequest,
			Message:    "Offer entity already exists.",
			Body:       []byte(`{"errors":[{"message":"Offer entity already exists.","parameters":[{"name":"offerId","value":"offer-raced"}]}]}`),
		}

		result, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{Draft: true})
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, "offer-raced", result.OfferID)
		assert.GreaterOrEqual(t, p.upstream.updateCalls, 1)
	})

	t.Run("unrecoverable race surfaces original error", func(t *testing.T) {
		b := publishableBook()
		p := newPipeline(b)
		p.upstream.failCreate = &ebay.APIError{
			StatusCode: http.StatusBadRequest,
			Message:    "Offer entity already exists.",
			Body:       []byte(`{}`),
		}

		result, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{Draft: true})
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "already exists")
		assert.Equal(t, book.PublishStatusFailed, p.books.states[b.ID].Status)
	})
}

func TestPublish_SelfHealIsBounded(t *testing.T) {
	b := publishableBook()
	p := newPipeline(b)

	// Readbacks always drop the policies block, so the policy heal can
	// never stick.
	p.upstream.mutateOnGet = func(o *listing.ResolvedOffer) {
		o.ListingPolicies = nil
	}

	result, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "manual intervention")
	assert.Equal(t, book.PublishStatusFailed, p.books.states[b.ID].Status)
	assert.Zero(t, p.upstream.publishCalls)

	// Exactly one policy-heal update, then final failure, not a loop.
	assert.Equal(t, 1, p.upstream.updateCalls)
}

func TestPublish_PriceMismatchHealsOnce(t *testing.T) {
	b := publishableBook()
	p := newPipeline(b)

	// The first readback shows a stale price; once healed, subsequent
	// reads reflect the corrected payload.
	staleReads := 0
	p.upstream.mutateOnGet = func(o *listing.ResolvedOffer) {
		if staleReads < 1 && o.PricingSummary != nil {
			staleReads++
			o.PricingSummary = &listing.PricingSummary{
				Price: listing.Price{Value: "9.99", Currency: "USD"},
			}
		}
	}

	result, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, p.upstream.publishCalls)
}

func TestPublish_CorruptedOfferRecreated(t *testing.T) {
	b := publishableBook()
	p := newPipeline(b)

	// The pre-existing offer has no readable price under either shape.
	corrupted := &listing.ResolvedOffer{
		OfferID:       "offer-corrupt",
		SKU:           b.ID.String(),
		MarketplaceID: "EBAY_US",
		Format:        listing.FormatFixedPrice,
		CategoryID:    listing.CategoryNonfiction,
		Status:        listing.OfferStatusUnpublished,
		ListingPolicies: &listing.ListingPolicies{
			PaymentPolicyID: "pay-1", ReturnPolicyID: "ret-1", FulfillmentPolicyID: "ful-1",
		},
	}
	p.upstream.offers["offer-corrupt"] = corrupted

	// Reconciliation fully rewrites the offer, so corrupt readbacks
	// must persist until the guard deletes it.
	p.upstream.mutateOnGet = func(o *listing.ResolvedOffer) {
		if o.OfferID == "offer-corrupt" {
			o.Pricing = nil
			o.PricingSummary = nil
		}
	}

	result, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, p.upstream.deleteCalls)
	assert.Equal(t, 1, p.upstream.createCalls)
	assert.NotEqual(t, "offer-corrupt", result.OfferID)
	assert.NotContains(t, p.upstream.offers, "offer-corrupt")
}

func TestPublish_ConflictOnPublishIsSuccess(t *testing.T) {
	b := publishableBook()
	p := newPipeline(b)
	p.upstream.failPublish = &ebay.APIError{
		StatusCode: http.StatusConflict,
		Body:       []byte(`{"warnings":[{"message":"already published","parameters":[{"name":"listingId","value":"listing-prior"}]}]}`),
	}

	result, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "listing-prior", result.ListingID)
	assert.Equal(t, book.PublishStatusPublished, p.books.states[b.ID].Status)
}

func TestPublish_DraftStopsBeforePublish(t *testing.T) {
	b := publishableBook()
	p := newPipeline(b)

	result, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{Draft: true})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.Draft)
	assert.NotEmpty(t, result.OfferID)
	assert.Empty(t, result.ListingID)
	assert.Zero(t, p.upstream.publishCalls)
	assert.Equal(t, book.PublishStatusDraft, p.books.states[b.ID].Status)
}

func TestPublish_ValidationFailureIsLocal(t *testing.T) {
	b := publishableBook(func(b *book.BookRecord) { b.Price = "" })
	p := newPipeline(b)

	result, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Zero(t, p.upstream.createCalls)
	assert.Zero(t, p.upstream.updateCalls)
	assert.Equal(t, book.PublishStatusFailed, p.books.states[b.ID].Status)
}

func TestPublish_UnconfiguredPoliciesFail(t *testing.T) {
	b := publishableBook()
	p := newPipeline(b)
	p.policies.ids = listing.PolicyIDs{PaymentID: "pay-1"}

	result, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Zero(t, p.upstream.createCalls)
}

func TestPublish_PolicyOverridesWin(t *testing.T) {
	b := publishableBook()
	p := newPipeline(b)

	result, err := p.uc.Publish(context.Background(), b.ID, commands.PublishOptions{
		Draft:           true,
		PaymentPolicyID: "pay-override",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	offer := p.upstream.offers[result.OfferID]
	require.NotNil(t, offer.ListingPolicies)
	assert.Equal(t, "pay-override", offer.ListingPolicies.PaymentPolicyID)
	assert.Equal(t, "ret-1", offer.ListingPolicies.ReturnPolicyID)
}

func TestPublish_BookNotFound(t *testing.T) {
	p := newPipeline(publishableBook())

	_, err := p.uc.Publish(context.Background(), uuid.New(), commands.PublishOptions{})
	assert.ErrorIs(t, err, errs.ErrBookNotFound)
}
