package commands

import (
	"context"

	"booklister/internal/domain/listing"
	"booklister/internal/infra/ebay"
	"booklister/internal/pkg/errs"
)

type PolicyWriter interface {
	SetDefaults(ctx context.Context, marketplaceID string, ids listing.PolicyIDs) error
}

// PolicyCatalog lists the account's configured business policies, used
// to translate policy names into ids.
type PolicyCatalog interface {
	FetchBusinessPolicies(ctx context.Context, marketplaceID string) (*ebay.BusinessPolicies, error)
}

type PolicyCommands interface {
	SetDefaults(ctx context.Context, ids listing.PolicyIDs) error
}

type policyUseCaseImpl struct {
	store         PolicyWriter
	catalog       PolicyCatalog
	marketplaceID string
}

func NewPolicyUseCase(store PolicyWriter, catalog PolicyCatalog, marketplaceID string) PolicyCommands {
	return &policyUseCaseImpl{store: store, catalog: catalog, marketplaceID: marketplaceID}
}

// SetDefaults stores the three default policy ids. Values may also be
// policy names; those are resolved against the account's policy lists
// before storing. A value that matches no name is stored as an id.
func (uc *policyUseCaseImpl) SetDefaults(ctx context.Context, ids listing.PolicyIDs) error {
	if !ids.Complete() {
		return errs.Wrap(errs.ErrPolicyNotConfigured, "all three policy ids are required")
	}

	resolved, err := uc.resolveNames(ctx, ids)
	if err != nil {
		return err
	}
	return uc.store.SetDefaults(ctx, uc.marketplaceID, resolved)
}

func (uc *policyUseCaseImpl) resolveNames(ctx context.Context, ids listing.PolicyIDs) (listing.PolicyIDs, error) {
	catalog, err := uc.catalog.FetchBusinessPolicies(ctx, uc.marketplaceID)
	if err != nil {
		return listing.PolicyIDs{}, errs.Wrap(err, "failed to list account policies")
	}
	return listing.PolicyIDs{
		PaymentID:     resolvePolicyValue(ids.PaymentID, catalog.Payment),
		ReturnID:      resolvePolicyValue(ids.ReturnID, catalog.Return),
		FulfillmentID: resolvePolicyValue(ids.FulfillmentID, catalog.Fulfillment),
	}, nil
}

func resolvePolicyValue(value string, policies []ebay.PolicySummary) string {
	for _, p := range policies {
		if p.Name == value {
			return p.ID
		}
	}
	return value
}
