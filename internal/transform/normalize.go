package transform

import (
	"strings"

	"github.com/retailbase/salesload/internal/extract"
	"github.com/retailbase/salesload/internal/logging"
)

// Canonical column names the normalizer requires in every source file.
// The source naming convention is inconsistent ("Order Id", "cost
// price", "Discount Percent"), so headers are folded to lower_snake
// before lookup; the fold plus this list is the fixed schema mapping.
const (
	colOrderID         = "order_id"
	colOrderDate       = "order_date"
	colRegion          = "region"
	colCategory        = "category"
	colSubCategory     = "sub_category"
	colProductID       = "product_id"
	colQuantity        = "quantity"
	colListPrice       = "list_price"
	colCostPrice       = "cost_price"
	colDiscountPercent = "discount_percent"
)

var requiredColumns = []string{
	colOrderID, colOrderDate, colRegion, colCategory, colSubCategory,
	colProductID, colQuantity, colListPrice, colCostPrice, colDiscountPercent,
}

// CanonicalColumn folds a raw header name to its canonical form:
// trimmed, lowercased, spaces and dashes replaced with underscores.
func CanonicalColumn(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// Normalize renames the source columns to the canonical schema and
// returns one RawRecord per source row, in source order. Values are
// not changed. Columns outside the canonical set are dropped here;
// a missing required column is a SchemaError.
func Normalize(table *extract.Table) ([]RawRecord, error) {
	index := make(map[string]int, len(table.Columns))
	for i, name := range table.Columns {
		index[CanonicalColumn(name)] = i
	}

	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &SchemaError{
				Subject: col,
				Detail:  "required source column is missing",
			}
		}
	}

	records := make([]RawRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, RawRecord{
			OrderID:         row[index[colOrderID]],
			OrderDate:       row[index[colOrderDate]],
			Region:          row[index[colRegion]],
			Category:        row[index[colCategory]],
			SubCategory:     row[index[colSubCategory]],
			ProductID:       row[index[colProductID]],
			Quantity:        row[index[colQuantity]],
			ListPrice:       row[index[colListPrice]],
			CostPrice:       row[index[colCostPrice]],
			DiscountPercent: row[index[colDiscountPercent]],
		})
	}

	logging.Stage("normalize").Debug().
		Int("rows", len(records)).
		Int("source_columns", len(table.Columns)).
		Msg("Normalized source schema")

	return records, nil
}
