package commands

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"booklister/internal/domain/book"
	"booklister/internal/domain/listing"
	"booklister/internal/pkg/config"
	"booklister/internal/pkg/errs"
	"booklister/internal/pkg/patch"
)

// Step names surfaced in publish results.
const (
	StepResolveCategory = "resolve_category"
	StepInventoryItem   = "inventory_item"
	StepBuildOffer      = "build_offer"
	StepValidate        = "validate"
	StepReconcileOffer  = "reconcile_offer"
	StepPublish         = "publish"
	StepPersist         = "persist"
)

type PublishOptions struct {
	// CategoryID overrides category resolution when set.
	CategoryID string
	// Policy ids override the configured defaults field by field.
	PaymentPolicyID     string
	ReturnPolicyID      string
	FulfillmentPolicyID string
	// Draft stops after offer reconciliation without publishing.
	Draft bool
}

type StepResult struct {
	Name    string
	Success bool
	Detail  string
}

// PublishResult carries per-step progress back to the caller even when
// the pipeline fails partway.
type PublishResult struct {
	Success    bool
	SKU        string
	OfferID    string
	ListingID  string
	ListingURL string
	Draft      bool
	Steps      []StepResult
	Error      string
}

func (r *PublishResult) step(name string, success bool, detail string) {
	r.Steps = append(r.Steps, StepResult{Name: name, Success: success, Detail: detail})
}

type PublishCommands interface {
	Publish(ctx context.Context, bookID uuid.UUID, opts PublishOptions) (*PublishResult, error)
}

type publishUseCaseImpl struct {
	books    BookRepository
	policies PolicyResolver
	images   ImageResolver
	upstream UpstreamClient
	ebayCfg  config.EbayConfig
}

func NewPublishUseCase(
	books BookRepository,
	policies PolicyResolver,
	images ImageResolver,
	upstream UpstreamClient,
	ebayCfg config.EbayConfig,
) PublishCommands {
	return &publishUseCaseImpl{
		books:    books,
		policies: policies,
		images:   images,
		upstream: upstream,
		ebayCfg:  ebayCfg,
	}
}

// Publish runs the full pipeline for one book. Pipeline failures are
// reported inside the result with Success=false; a Go error is returned
// only when the book cannot be loaded at all.
func (u *publishUseCaseImpl) Publish(ctx context.Context, bookID uuid.UUID, opts PublishOptions) (*PublishResult, error) {
	b, err := u.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	result := &PublishResult{SKU: b.SKUValue(), Draft: opts.Draft}

	categoryID := listing.ResolveCategory(opts.CategoryID, b)
	result.step(StepResolveCategory, true, categoryID)

	offerPayload, err := u.buildAndShipPayloads(ctx, b, categoryID, opts, result)
	if err != nil {
		return u.fail(ctx, b, categoryID, result, err), nil
	}

	offerID, err := u.reconcileOffer(ctx, b.SKUValue(), offerPayload)
	if err != nil {
		result.step(StepReconcileOffer, false, err.Error())
		return u.fail(ctx, b, categoryID, result, err), nil
	}
	result.OfferID = offerID
	result.step(StepReconcileOffer, true, offerID)

	if opts.Draft {
		return u.finishDraft(ctx, b, categoryID, result)
	}

	listingID, finalOfferID, err := u.guardAndPublish(ctx, offerID, offerPayload)
	if err != nil {
		result.step(StepPublish, false, err.Error())
		return u.fail(ctx, b, categoryID, result, err), nil
	}
	result.OfferID = finalOfferID
	result.ListingID = listingID
	result.ListingURL = u.ebayCfg.ListingURL(listingID)
	result.step(StepPublish, true, listingID)

	state := book.PublishState{
		SKU:        b.SKUValue(),
		CategoryID: categoryID,
		OfferID:    finalOfferID,
		ListingID:  listingID,
		Status:     book.PublishStatusPublished,
	}
	if err := u.books.SavePublishState(ctx, b.ID, state); err != nil {
		result.step(StepPersist, false, err.Error())
		result.Error = err.Error()
		return result, nil
	}
	result.step(StepPersist, true, "")
	result.Success = true
	return result, nil
}

// buildAndShipPayloads builds both payloads, validates them, and writes
// the inventory item upstream. The returned offer payload is the one
// reconciliation works against.
func (u *publishUseCaseImpl) buildAndShipPayloads(
	ctx context.Context,
	b *book.BookRecord,
	categoryID string,
	opts PublishOptions,
	result *PublishResult,
) (*listing.OfferPayload, error) {
	imageURLs, err := u.images.ListingURLs(b)
	if err != nil {
		result.step(StepInventoryItem, false, err.Error())
		return nil, err
	}

	policyIDs, err := u.resolvePolicies(ctx, opts)
	if err != nil {
		result.step(StepBuildOffer, false, err.Error())
		return nil, err
	}

	mapping, err := listing.BuildMappingResult(b, imageURLs, u.upstream.MarketplaceID(), policyIDs, categoryID, u.ebayCfg.MerchantLocationKey)
	if err != nil {
		result.step(StepBuildOffer, false, err.Error())
		return nil, err
	}

	if validationErrors := listing.ValidatePair(&mapping.Inventory, &mapping.Offer); len(validationErrors) > 0 {
		detail := strings.Join(validationErrors, "; ")
		result.step(StepValidate, false, detail)
		return nil, errs.Wrap(errs.ErrValidationFailed, detail)
	}
	result.step(StepValidate, true, "")

	if err := u.upstream.ReplaceInventoryItem(ctx, &mapping.Inventory); err != nil {
		result.step(StepInventoryItem, false, err.Error())
		return nil, err
	}
	result.step(StepInventoryItem, true, "")

	return &mapping.Offer, nil
}

// resolvePolicies merges per-call overrides over the configured
// defaults and requires all three ids to end up set.
func (u *publishUseCaseImpl) resolvePolicies(ctx context.Context, opts PublishOptions) (listing.PolicyIDs, error) {
	defaults, err := u.policies.ResolvedPolicyIDs(ctx, u.upstream.MarketplaceID())
	if err != nil {
		return listing.PolicyIDs{}, err
	}

	ids := listing.PolicyIDs{
		PaymentID:     patch.CoalesceZero(opts.PaymentPolicyID, defaults.PaymentID),
		ReturnID:      patch.CoalesceZero(opts.ReturnPolicyID, defaults.ReturnID),
		FulfillmentID: patch.CoalesceZero(opts.FulfillmentPolicyID, defaults.FulfillmentID),
	}
	if !ids.Complete() {
		return listing.PolicyIDs{}, errs.Wrap(errs.ErrPolicyNotConfigured, u.upstream.MarketplaceID())
	}
	return ids, nil
}

func (u *publishUseCaseImpl) finishDraft(ctx context.Context, b *book.BookRecord, categoryID string, result *PublishResult) (*PublishResult, error) {
	state := book.PublishState{
		SKU:        b.SKUValue(),
		CategoryID: categoryID,
		OfferID:    result.OfferID,
		ListingID:  b.ListingID,
		Status:     book.PublishStatusDraft,
	}
	if err := u.books.SavePublishState(ctx, b.ID, state); err != nil {
		result.step(StepPersist, false, err.Error())
		result.Error = err.Error()
		return result, nil
	}
	result.step(StepPersist, true, "")
	result.Success = true
	return result, nil
}

// fail records the Failed status and folds the error into the result.
// The persistence error, if any, is secondary to the pipeline error.
func (u *publishUseCaseImpl) fail(ctx context.Context, b *book.BookRecord, categoryID string, result *PublishResult, cause error) *PublishResult {
	result.Error = cause.Error()

	state := book.PublishState{
		SKU:        b.SKUValue(),
		CategoryID: categoryID,
		OfferID:    result.OfferID,
		ListingID:  b.ListingID,
		Status:     book.PublishStatusFailed,
	}
	if err := u.books.SavePublishState(ctx, b.ID, state); err != nil {
		result.step(StepPersist, false, err.Error())
	}
	return result
}
