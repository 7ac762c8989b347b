package response

import (
	"booklister/internal/domain/listing"
	"booklister/internal/usecase/commands"
	"booklister/internal/usecase/queries"
)

type PublishStepResponse struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Detail  string `json:"detail,omitempty"`
}

type PublishResultResponse struct {
	Success    bool                  `json:"success"`
	SKU        string                `json:"sku"`
	OfferID    string                `json:"offer_id,omitempty"`
	ListingID  string                `json:"listing_id,omitempty"`
	ListingURL string                `json:"listing_url,omitempty"`
	Draft      bool                  `json:"draft"`
	Steps      []PublishStepResponse `json:"steps"`
	Error      string                `json:"error,omitempty"`
}

func FromPublishResult(r *commands.PublishResult) *PublishResultResponse {
	steps := make([]PublishStepResponse, len(r.Steps))
	for i, s := range r.Steps {
		steps[i] = PublishStepResponse{
			Name:    s.Name,
			Success: s.Success,
			Detail:  s.Detail,
		}
	}
	return &PublishResultResponse{
		Success:    r.Success,
		SKU:        r.SKU,
		OfferID:    r.OfferID,
		ListingID:  r.ListingID,
		ListingURL: r.ListingURL,
		Draft:      r.Draft,
		Steps:      steps,
		Error:      r.Error,
	}
}

type PublishStatusResponse struct {
	BookID     string `json:"book_id"`
	SKU        string `json:"sku"`
	CategoryID string `json:"category_id,omitempty"`
	OfferID    string `json:"offer_id,omitempty"`
	ListingID  string `json:"listing_id,omitempty"`
	ListingURL string `json:"listing_url,omitempty"`
	Status     string `json:"status"`
}

func FromPublishStatusView(v *queries.PublishStatusView) *PublishStatusResponse {
	return &PublishStatusResponse{
		BookID:     v.BookID.String(),
		SKU:        v.SKU,
		CategoryID: v.CategoryID,
		OfferID:    v.OfferID,
		ListingID:  v.ListingID,
		ListingURL: v.ListingURL,
		Status:     v.Status,
	}
}

type PolicyDefaultsResponse struct {
	PaymentPolicyID     string `json:"payment_policy_id"`
	ReturnPolicyID      string `json:"return_policy_id"`
	FulfillmentPolicyID string `json:"fulfillment_policy_id"`
}

func FromPolicyIDs(ids listing.PolicyIDs) *PolicyDefaultsResponse {
	return &PolicyDefaultsResponse{
		PaymentPolicyID:     ids.PaymentID,
		ReturnPolicyID:      ids.ReturnID,
		FulfillmentPolicyID: ids.FulfillmentID,
	}
}
