package enums

// DiscountSource tags which cascade level produced a resolution.
type DiscountSource string

const (
	DiscountSourceCampaign DiscountSource = "campaign"
	DiscountSourceCategory DiscountSource = "category"
	DiscountSourceProduct  DiscountSource = "product"
	DiscountSourcePrice    DiscountSource = "price"
	DiscountSourceNone     DiscountSource = "none"
)

// DiscountSources lists every source in cascade order.
var DiscountSources = []DiscountSource{
	DiscountSourceCampaign,
	DiscountSourceCategory,
	DiscountSourceProduct,
	DiscountSourcePrice,
	DiscountSourceNone,
}

// String implements fmt.Stringer.
func (s DiscountSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DiscountSource.
func (s DiscountSource) IsValid() bool {
	for _, candidate := range DiscountSources {
		if candidate == s {
			return true
		}
	}
	return false
}
