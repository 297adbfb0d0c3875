package enums

import "fmt"

// PromotionKind selects how a promotion value is applied to a list price.
type PromotionKind string

const (
	PromotionKindPercentage  PromotionKind = "percentage"
	PromotionKindFixedAmount PromotionKind = "fixed_amount"
)

var validPromotionKinds = []PromotionKind{
	PromotionKindPercentage,
	PromotionKindFixedAmount,
}

// String implements fmt.Stringer.
func (p PromotionKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PromotionKind.
func (p PromotionKind) IsValid() bool {
	for _, candidate := range validPromotionKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePromotionKind converts raw input into a PromotionKind.
func ParsePromotionKind(value string) (PromotionKind, error) {
	for _, candidate := range validPromotionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion kind %q", value)
}
