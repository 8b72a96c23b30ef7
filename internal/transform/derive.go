package transform

// Derivation formulas for the financial columns:
//
//	discount   = list_price * discount_percent
//	sale_price = list_price - discount
//	profit     = sale_price - cost_price
//
// discount_percent is a fraction (0.10 = 10% off). Results are rounded
// to two decimal places to match the NUMERIC(12,2) destination columns,
// so the loaded values and any downstream aggregation agree exactly.
const moneyScale = 2

// Derive computes the derived financial fields for one sanitized row.
// Pure function of its input, no side effects.
func Derive(r Row) DerivedRow {
	discount := r.ListPrice.Mul(r.DiscountPercent).Round(moneyScale)
	salePrice := r.ListPrice.Sub(discount).Round(moneyScale)
	profit := salePrice.Sub(r.CostPrice).Round(moneyScale)

	return DerivedRow{
		Row:       r,
		Discount:  discount,
		SalePrice: salePrice,
		Profit:    profit,
	}
}

// DeriveAll derives every row of a batch, preserving order.
func DeriveAll(rows []Row) []DerivedRow {
	derived := make([]DerivedRow, len(rows))
	for i, r := range rows {
		derived[i] = Derive(r)
	}
	return derived
}
