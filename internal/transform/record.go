//-------------------------------------------------------------------------
//
// salesload
//
// Copyright (c) 2025 - 2026, the salesload authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package transform implements the record-level cleaning stages of the
// pipeline: schema normalization, null/type sanitization, financial
// field derivation, and column pruning. Every stage preserves source
// row order.
package transform

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one source row after schema normalization: canonical
// field names, values still untyped text. Consumed exactly once.
type RawRecord struct {
	OrderID         string
	OrderDate       string
	Region          string
	Category        string
	SubCategory     string
	ProductID       string
	Quantity        string
	ListPrice       string
	CostPrice       string
	DiscountPercent string
}

// Row is a sanitized record: every required field present and coerced
// to its target type. Money fields are fixed-precision decimals so the
// derivation formulas and the NUMERIC destination columns agree exactly.
type Row struct {
	OrderID         int64
	OrderDate       time.Time
	Region          string
	Category        string
	SubCategory     string
	ProductID       string
	Quantity        int
	ListPrice       decimal.Decimal
	CostPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
}

// DerivedRow carries the derived financial fields alongside the raw
// inputs they were computed from. The pruner drops the inputs.
type DerivedRow struct {
	Row
	Discount  decimal.Decimal
	SalePrice decimal.Decimal
	Profit    decimal.Decimal
}

// CleanedRecord is the canonical output row. Its field set matches the
// destination table exactly; the derivation inputs (list price, cost
// price, discount percent) never appear here.
type CleanedRecord struct {
	OrderID     int64
	OrderDate   time.Time
	Region      string
	Category    string
	SubCategory string
	ProductID   string
	Quantity    int
	Discount    decimal.Decimal
	SalePrice   decimal.Decimal
	Profit      decimal.Decimal
}
