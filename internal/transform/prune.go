package transform

// Prune projects a derived row onto the canonical output column set,
// dropping the derivation inputs (list price, cost price, discount
// percent). Pure projection, no error conditions.
func Prune(d DerivedRow) CleanedRecord {
	return CleanedRecord{
		OrderID:     d.OrderID,
		OrderDate:   d.OrderDate,
		Region:      d.Region,
		Category:    d.Category,
		SubCategory: d.SubCategory,
		ProductID:   d.ProductID,
		Quantity:    d.Quantity,
		Discount:    d.Discount,
		SalePrice:   d.SalePrice,
		Profit:      d.Profit,
	}
}

// PruneAll prunes every row of a batch, preserving order.
func PruneAll(derived []DerivedRow) []CleanedRecord {
	cleaned := make([]CleanedRecord, len(derived))
	for i, d := range derived {
		cleaned[i] = Prune(d)
	}
	return cleaned
}
