package models

// All lists the models owned by the storefront schema, parents before children.
func All() []any {
	return []any{
		&Product{},
		&ProductVariant{},
		&Promotion{},
		&PromotionLink{},
		&Cart{},
		&CartItem{},
	}
}
