package request

import (
	"booklister/internal/domain/listing"
	"booklister/internal/usecase/commands"
)

type PublishBookRequest struct {
	CategoryID          string `json:"category_id" binding:"omitempty,numeric"`
	PaymentPolicyID     string `json:"payment_policy_id" binding:"omitempty"`
	ReturnPolicyID      string `json:"return_policy_id" binding:"omitempty"`
	FulfillmentPolicyID string `json:"fulfillment_policy_id" binding:"omitempty"`
	Draft               bool   `json:"draft"`
}

func (r *PublishBookRequest) ToOptions() commands.PublishOptions {
	return commands.PublishOptions{
		CategoryID:          r.CategoryID,
		PaymentPolicyID:     r.PaymentPolicyID,
		ReturnPolicyID:      r.ReturnPolicyID,
		FulfillmentPolicyID: r.FulfillmentPolicyID,
		Draft:               r.Draft,
	}
}

type PolicyDefaultsRequest struct {
	PaymentPolicyID     string `json:"payment_policy_id" binding:"required"`
	ReturnPolicyID      string `json:"return_policy_id" binding:"required"`
	FulfillmentPolicyID string `json:"fulfillment_policy_id" binding:"required"`
}

func (r *PolicyDefaultsRequest) ToDomain() listing.PolicyIDs {
	return listing.PolicyIDs{
		PaymentID:     r.PaymentPolicyID,
		ReturnID:      r.ReturnPolicyID,
		FulfillmentID: r.FulfillmentPolicyID,
	}
}
