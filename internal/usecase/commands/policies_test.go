//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklister/internal/domain/listing"
	"booklister/internal/infra/ebay"
	"booklister/internal/pkg/errs"
	"booklister/internal/usecase/commands"
)

type fakePolicyWriter struct {
	marketplace string
	saved       listing.PolicyIDs
	calls       int
}

func (f *fakePolicyWriter) SetDefaults(_ context.Context, marketplaceID string, ids listing.PolicyIDs) error {
	f.marketplace = marketplaceID
	f.saved = ids
	f.calls++
	return nil
}

type fakePolicyCatalog struct {
	policies ebay.BusinessPolicies
	err      error
	fetches  int
}

func (f *fakePolicyCatalog) FetchBusinessPolicies(_ context.Context, _ string) (*ebay.BusinessPolicies, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return &f.policies, nil
}

func TestPolicyCommands_SetDefaults_ResolvesNames(t *testing.T) {
	writer := &fakePolicyWriter{}
	catalog := &fakePolicyCatalog{
		policies: ebay.BusinessPolicies{
			Payment:     []ebay.PolicySummary{{ID: "pay-1", Name: "Standard Payment"}},
			Return:      []ebay.PolicySummary{{ID: "ret-1", Name: "30 Day Returns"}},
			Fulfillment: []ebay.PolicySummary{{ID: "ship-1", Name: "Media Mail"}},
		},
	}
	uc := commands.NewPolicyUseCase(writer, catalog, "EBAY_US")

	err := uc.SetDefaults(context.Background(), listing.PolicyIDs{
		PaymentID:     "Standard Payment",
		ReturnID:      "ret-9",
		FulfillmentID: "Media Mail",
	})
	require.NoError(t, err)

	assert.Equal(t, "EBAY_US", writer.marketplace)
	assert.Equal(t, "pay-1", writer.saved.PaymentID)
	assert.Equal(t, "ret-9", writer.saved.ReturnID, "unmatched values are stored as-is")
	assert.Equal(t, "ship-1", writer.saved.FulfillmentID)
	assert.Equal(t, 1, catalog.fetches)
}

func TestPolicyCommands_SetDefaults_RejectsIncompleteSet(t *testing.T) {
	writer := &fakePolicyWriter{}
	uc := commands.NewPolicyUseCase(writer, &fakePolicyCatalog{}, "EBAY_US")

	err := uc.SetDefaults(context.Background(), listing.PolicyIDs{PaymentID: "pay-1"})
	assert.ErrorIs(t, err, errs.ErrPolicyNotConfigured)
	assert.Zero(t, writer.calls)
}

func TestPolicyCommands_SetDefaults_CatalogFailure(t *testing.T) {
	writer := &fakePolicyWriter{}
	catalog := &fakePolicyCatalog{err: errs.New("upstream unavailable")}
	uc := commands.NewPolicyUseCase(writer, catalog, "EBAY_US")

	err := uc.SetDefaults(context.Background(), listing.PolicyIDs{
		PaymentID:     "pay-1",
		ReturnID:      "ret-1",
		FulfillmentID: "ship-1",
	})
	assert.Error(t, err)
	assert.Zero(t, writer.calls)
}
