package enums

import "fmt"

// CampaignScope limits which products a discount campaign reaches.
type CampaignScope string

const (
	CampaignScopeGlobal   CampaignScope = "global"
	CampaignScopeCategory CampaignScope = "category"
	CampaignScopeProducts CampaignScope = "products"
)

var validCampaignScopes = []CampaignScope{
	CampaignScopeGlobal,
	CampaignScopeCategory,
	CampaignScopeProducts,
}

// String implements fmt.Stringer.
func (s CampaignScope) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CampaignScope.
func (s CampaignScope) IsValid() bool {
	for _, candidate := range validCampaignScopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCampaignScope converts raw input into a CampaignScope.
func ParseCampaignScope(value string) (CampaignScope, error) {
	for _, candidate := range validCampaignScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid campaign scope %q", value)
}
