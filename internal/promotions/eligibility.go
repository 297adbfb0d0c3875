package promotions

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// EligibleAt reports whether p applies at now. Both the administrative status and
// the time window must agree; window bounds are inclusive and a nil bound is open.
// Malformed records are never eligible.
func EligibleAt(p models.Promotion, now time.Time) bool {
	if !wellFormed(p) {
		return false
	}
	if p.Status != enums.PromotionStatusActive {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	return true
}

func wellFormed(p models.Promotion) bool {
	if !p.Kind.IsValid() {
		return false
	}
	if p.Value.IsNegative() {
		return false
	}
	if p.StartsAt != nil && p.EndsAt != nil && p.StartsAt.After(*p.EndsAt) {
		return false
	}
	return true
}
