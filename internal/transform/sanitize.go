package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailbase/salesload/internal/logging"
)

// SanitizeStats reports what the sanitizer did with a batch. Exclusions
// are non-fatal and counted per reason so a run can be audited.
type SanitizeStats struct {
	Input    int
	Kept     int
	Excluded int
	ByReason map[string]int
}

func (s *SanitizeStats) exclude(reason string) {
	if s.ByReason == nil {
		s.ByReason = make(map[string]int)
	}
	s.Excluded++
	s.ByReason[reason]++
}

// Sanitize applies the null and type policy to a normalized batch.
// A row missing any required value, or carrying one that cannot be
// coerced, is excluded and counted; there is no silent defaulting of
// price, quantity, or date fields. The order date must parse under
// dateFormat (Go reference-time layout); an unparseable date is
// treated as null. Sanitize fails only when a non-empty batch loses
// every row, which signals a misconfigured source rather than a few
// bad records.
func Sanitize(records []RawRecord, dateFormat string) ([]Row, SanitizeStats, error) {
	stats := SanitizeStats{Input: len(records)}
	log := logging.Stage("sanitize")

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		row, reason := sanitizeOne(rec, dateFormat)
		if reason != "" {
			stats.exclude(reason)
			log.Debug().
				Int("row", i+1).
				Str("order_id", rec.OrderID).
				Str("reason", reason).
				Msg("Excluded row")
			continue
		}
		rows = append(rows, row)
	}
	stats.Kept = len(rows)

	if stats.Input > 0 && stats.Kept == 0 {
		return nil, stats, &TransformError{
			Detail: fmt.Sprintf("all %d rows excluded, check source format and date layout %q",
				stats.Input, dateFormat),
		}
	}

	if stats.Excluded > 0 {
		log.Warn().
			Int("excluded", stats.Excluded).
			Int("kept", stats.Kept).
			Interface("reasons", stats.ByReason).
			Msg("Excluded rows with missing or malformed values")
	}

	return rows, stats, nil
}

// sanitizeOne coerces a single record. The returned reason is empty
// when the row is kept.
func sanitizeOne(rec RawRecord, dateFormat string) (Row, string) {
	var row Row

	orderID := strings.TrimSpace(rec.OrderID)
	if orderID == "" {
		return row, "missing order_id"
	}
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return row, "malformed order_id"
	}

	date := strings.TrimSpace(rec.OrderDate)
	if date == "" {
		return row, "missing order_date"
	}
	orderDate, err := time.Parse(dateFormat, date)
	if err != nil {
		return row, "unparseable order_date"
	}

	for _, f := range []struct{ name, value string }{
		{"region", rec.Region},
		{"category", rec.Category},
		{"sub_category", rec.SubCategory},
		{"product_id", rec.ProductID},
	} {
		if strings.TrimSpace(f.value) == "" {
			return row, "missing " + f.name
		}
	}

	qty := strings.TrimSpace(rec.Quantity)
	if qty == "" {
		return row, "missing quantity"
	}
	quantity, err := strconv.Atoi(qty)
	if err != nil {
		return row, "malformed quantity"
	}

	listPrice, reason := parseMoney(rec.ListPrice, "list_price")
	if reason != "" {
		return row, reason
	}
	costPrice, reason := parseMoney(rec.CostPrice, "cost_price")
	if reason != "" {
		return row, reason
	}
	discountPct, reason := parseMoney(rec.DiscountPercent, "discount_percent")
	if reason != "" {
		return row, reason
	}

	return Row{
		OrderID:         id,
		OrderDate:       orderDate,
		Region:          strings.TrimSpace(rec.Region),
		Category:        strings.TrimSpace(rec.Category),
		SubCategory:     strings.TrimSpace(rec.SubCategory),
		ProductID:       strings.TrimSpace(rec.ProductID),
		Quantity:        quantity,
		ListPrice:       listPrice,
		CostPrice:       costPrice,
		DiscountPercent: discountPct,
	}, ""
}

func parseMoney(value, field string) (decimal.Decimal, string) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, "missing " + field
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, "malformed " + field
	}
	return d, ""
}
