package ebay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	accountBasePath  = "/sell/account/v1"
	taxonomyBasePath = "/commerce/taxonomy/v1"
)

// PolicySummary is one business policy as listed by the account API.
type PolicySummary struct {
	ID   string
	Name string
}

// BusinessPolicies groups the three policy types an offer must bind.
type BusinessPolicies struct {
	Payment     []PolicySummary
	Return      []PolicySummary
	Fulfillment []PolicySummary
}

// FetchBusinessPolicies lists every payment, return, and fulfillment
// policy configured for the marketplace.
func (c *Client) FetchBusinessPolicies(ctx context.Context, marketplaceID string) (*BusinessPolicies, error) {
	payment, err := c.fetchPolicyList(ctx, "payment_policy", "paymentPolicies", "paymentPolicyId", marketplaceID)
	if err != nil {
		return nil, err
	}
	ret, err := c.fetchPolicyList(ctx, "return_policy", "returnPolicies", "returnPolicyId", marketplaceID)
	if err != nil {
		return nil, err
	}
	fulfillment, err := c.fetchPolicyList(ctx, "fulfillment_policy", "fulfillmentPolicies", "fulfillmentPolicyId", marketplaceID)
	if err != nil {
		return nil, err
	}
	return &BusinessPolicies{Payment: payment, Return: ret, Fulfillment: fulfillment}, nil
}

// fetchPolicyList handles one policy endpoint. Each endpoint wraps its
// list and id under type-specific key names, so both are parameters.
func (c *Client) fetchPolicyList(ctx context.Context, endpoint, listKey, idKey, marketplaceID string) ([]PolicySummary, error) {
	var raw map[string]any
	path := fmt.Sprintf("%s/%s?marketplace_id=%s", accountBasePath, endpoint, url.QueryEscape(marketplaceID))
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}

	items, _ := raw[listKey].([]any)
	policies := make([]PolicySummary, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := entry[idKey].(string)
		name, _ := entry["name"].(string)
		if id != "" {
			policies = append(policies, PolicySummary{ID: id, Name: name})
		}
	}
	return policies, nil
}

// AspectMeta describes one aspect the taxonomy defines for a category.
type AspectMeta struct {
	Name     string
	Required bool
}

// GetDefaultCategoryTreeID resolves the category tree id for a
// marketplace. Tree ids are stable per marketplace but not hardcoded.
func (c *Client) GetDefaultCategoryTreeID(ctx context.Context, marketplaceID string) (string, error) {
	var resp struct {
		CategoryTreeID string `json:"categoryTreeId"`
	}
	path := fmt.Sprintf("%s/get_default_category_tree_id?marketplace_id=%s", taxonomyBasePath, url.QueryEscape(marketplaceID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.CategoryTreeID, nil
}

// GetCategoryAspects returns the aspects the taxonomy defines for a
// leaf category, with their required flags.
func (c *Client) GetCategoryAspects(ctx context.Context, categoryTreeID, categoryID string) ([]AspectMeta, error) {
	var resp struct {
		Aspects []struct {
			LocalizedAspectName string `json:"localizedAspectName"`
			AspectConstraint    struct {
				AspectRequired bool `json:"aspectRequired"`
			} `json:"aspectConstraint"`
		} `json:"aspects"`
	}
	path := fmt.Sprintf("%s/category_tree/%s/get_item_aspects_for_category?category_id=%s",
		taxonomyBasePath, url.PathEscape(categoryTreeID), url.QueryEscape(categoryID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	aspects := make([]AspectMeta, 0, len(resp.Aspects))
	for _, a := range resp.Aspects {
		aspects = append(aspects, AspectMeta{
			Name:     a.LocalizedAspectName,
			Required: a.AspectConstraint.AspectRequired,
		})
	}
	return aspects, nil
}
