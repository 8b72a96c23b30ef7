package transform

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name          string
		listPrice     string
		costPrice     string
		discountPct   string
		wantDiscount  string
		wantSalePrice string
		wantProfit    string
	}{
		{
			name:      "ten percent discount",
			listPrice: "100", costPrice: "60", discountPct: "0.1",
			wantDiscount: "10", wantSalePrice: "90", wantProfit: "30",
		},
		{
			name:      "no discount",
			listPrice: "200", costPrice: "150", discountPct: "0.0",
			wantDiscount: "0", wantSalePrice: "200", wantProfit: "50",
		},
		{
			name:      "loss making sale",
			listPrice: "50", costPrice: "55", discountPct: "0.2",
			wantDiscount: "10", wantSalePrice: "40", wantProfit: "-15",
		},
		{
			name:      "sub cent discount rounds to money scale",
			listPrice: "33.33", costPrice: "20", discountPct: "0.07",
			// 33.33 * 0.07 = 2.3331 -> 2.33
			wantDiscount: "2.33", wantSalePrice: "31", wantProfit: "11",
		},
		{
			name:      "full discount",
			listPrice: "80", costPrice: "40", discountPct: "1",
			wantDiscount: "80", wantSalePrice: "0", wantProfit: "-40",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Row{
				OrderID:         1,
				OrderDate:       time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
				Region:          "South",
				Category:        "Furniture",
				SubCategory:     "Chairs",
				ProductID:       "FUR-CH-100",
				Quantity:        1,
				ListPrice:       money(tt.listPrice),
				CostPrice:       money(tt.costPrice),
				DiscountPercent: money(tt.discountPct),
			}

			d := Derive(row)

			if !d.Discount.Equal(money(tt.wantDiscount)) {
				t.Errorf("Discount: got %s, want %s", d.Discount, tt.wantDiscount)
			}
			if !d.SalePrice.Equal(money(tt.wantSalePrice)) {
				t.Errorf("SalePrice: got %s, want %s", d.SalePrice, tt.wantSalePrice)
			}
			if !d.Profit.Equal(money(tt.wantProfit)) {
				t.Errorf("Profit: got %s, want %s", d.Profit, tt.wantProfit)
			}

			// sale_price must equal list_price * (1 - discount_percent)
			// for exact inputs
			alt := row.ListPrice.Mul(decimal.NewFromInt(1).Sub(row.DiscountPercent)).Round(moneyScale)
			if !d.SalePrice.Equal(alt) {
				t.Errorf("SalePrice %s disagrees with list*(1-pct) = %s", d.SalePrice, alt)
			}
		})
	}
}

func TestDeriveAllPreservesOrder(t *testing.T) {
	rows := []Row{
		{OrderID: 3, ListPrice: money("10"), CostPrice: money("5"), DiscountPercent: money("0")},
		{OrderID: 1, ListPrice: money("20"), CostPrice: money("5"), DiscountPercent: money("0")},
		{OrderID: 2, ListPrice: money("30"), CostPrice: money("5"), DiscountPercent: money("0")},
	}

	derived := DeriveAll(rows)
	if len(derived) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(derived))
	}
	for i, d := range derived {
		if d.OrderID != rows[i].OrderID {
			t.Errorf("Row %d reordered: got order %d", i, d.OrderID)
		}
	}
}

func TestPruneDropsDerivationInputs(t *testing.T) {
	row := Row{
		OrderID:         7,
		OrderDate:       time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC),
		Region:          "West",
		Category:        "Technology",
		SubCategory:     "Phones",
		ProductID:       "TEC-PH-200",
		Quantity:        4,
		ListPrice:       money("500"),
		CostPrice:       money("350"),
		DiscountPercent: money("0.25"),
	}

	cleaned := Prune(Derive(row))

	if cleaned.OrderID != 7 || cleaned.Region != "West" || cleaned.Quantity != 4 {
		t.Errorf("Canonical fields not carried over: %+v", cleaned)
	}
	if !cleaned.Discount.Equal(money("125")) {
		t.Errorf("Discount: got %s", cleaned.Discount)
	}
	if !cleaned.SalePrice.Equal(money("375")) {
		t.Errorf("SalePrice: got %s", cleaned.SalePrice)
	}
	if !cleaned.Profit.Equal(money("25")) {
		t.Errorf("Profit: got %s", cleaned.Profit)
	}
}

func TestPruneAllPreservesOrder(t *testing.T) {
	derived := DeriveAll([]Row{
		{OrderID: 9, ListPrice: money("1"), CostPrice: money("1"), DiscountPercent: money("0")},
		{OrderID: 8, ListPrice: money("2"), CostPrice: money("1"), DiscountPercent: money("0")},
	})

	cleaned := PruneAll(derived)
	if cleaned[0].OrderID != 9 || cleaned[1].OrderID != 8 {
		t.Errorf("PruneAll reordered rows: %v, %v", cleaned[0].OrderID, cleaned[1].OrderID)
	}
}
