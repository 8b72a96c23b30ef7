//-------------------------------------------------------------------------
//
// salesload
//
// Copyright (c) 2025 - 2026, the salesload authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package analytics implements the downstream read-only query surface
// over the canonical sales table: revenue ranking, regional ranking,
// and period-over-period growth. These queries are consumers of the
// loaded table; nothing here writes.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductRevenue is one row of the top-products ranking.
type ProductRevenue struct {
	ProductID string
	Revenue   decimal.Decimal
}

// TopProductsByRevenue returns the n products with the highest total
// sale_price.
func TopProductsByRevenue(ctx context.Context, pool *pgxpool.Pool, table string, n int) ([]ProductRevenue, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf(`
        SELECT product_id, SUM(sale_price) AS revenue
        FROM %s
        GROUP BY product_id
        ORDER BY revenue DESC
        LIMIT $1
    `, pgx.Identifier{table}.Sanitize()), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductRevenue
	for rows.Next() {
		var r ProductRevenue
		if err := rows.Scan(&r.ProductID, &r.Revenue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CategoryRegionSales is the top-selling region within one category.
type CategoryRegionSales struct {
	Category   string
	Region     string
	TotalSales decimal.Decimal
}

// TopRegionPerCategory returns, for each category, the single region
// with the maximum total sale_price, ranked with ROW_NUMBER.
func TopRegionPerCategory(ctx context.Context, pool *pgxpool.Pool, table string) ([]CategoryRegionSales, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf(`
        WITH regional AS (
            SELECT category, region, SUM(sale_price) AS total_sales,
                   ROW_NUMBER() OVER (
                       PARTITION BY category ORDER BY SUM(sale_price) DESC
                   ) AS rank
            FROM %s
            GROUP BY category, region
        )
        SELECT category, region, total_sales
        FROM regional
        WHERE rank = 1
        ORDER BY category
    `, pgx.Identifier{table}.Sanitize()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryRegionSales
	for rows.Next() {
		var r CategoryRegionSales
		if err := rows.Scan(&r.Category, &r.Region, &r.TotalSales); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MonthlySales is one month's total sales with growth over the
// previous month.
type MonthlySales struct {
	Month  time.Time
	Sales  decimal.Decimal
	Growth *decimal.Decimal // nil for the first month
}

// MonthOverMonthGrowth returns monthly total sale_price in calendar
// order, each month carrying its growth relative to the month before.
func MonthOverMonthGrowth(ctx context.Context, pool *pgxpool.Pool, table string) ([]MonthlySales, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf(`
        WITH monthly AS (
            SELECT date_trunc('month', order_date)::date AS month,
                   SUM(sale_price) AS sales
            FROM %s
            GROUP BY 1
        )
        SELECT month, sales,
               sales - LAG(sales) OVER (ORDER BY month) AS growth
        FROM monthly
        ORDER BY month
    `, pgx.Identifier{table}.Sanitize()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthlySales
	for rows.Next() {
		var r MonthlySales
		if err := rows.Scan(&r.Month, &r.Sales, &r.Growth); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SubCategoryGrowth compares one sub-category's profit across two years.
type SubCategoryGrowth struct {
	SubCategory string
	FirstYear   decimal.Decimal
	SecondYear  decimal.Decimal
	Growth      decimal.Decimal
}

// TopSubCategoryByProfitGrowth returns the sub-category with the
// highest profit growth from yearA to yearB.
func TopSubCategoryByProfitGrowth(ctx context.Context, pool *pgxpool.Pool, table string, yearA, yearB int) (*SubCategoryGrowth, error) {
	row := pool.QueryRow(ctx, fmt.Sprintf(`
        WITH yearly AS (
            SELECT sub_category,
                   SUM(profit) FILTER (WHERE EXTRACT(YEAR FROM order_date) = $1) AS first_year,
                   SUM(profit) FILTER (WHERE EXTRACT(YEAR FROM order_date) = $2) AS second_year
            FROM %s
            WHERE EXTRACT(YEAR FROM order_date) IN ($1, $2)
            GROUP BY sub_category
        )
        SELECT sub_category,
               COALESCE(first_year, 0),
               COALESCE(second_year, 0),
               COALESCE(second_year, 0) - COALESCE(first_year, 0) AS growth
        FROM yearly
        ORDER BY growth DESC
        LIMIT 1
    `, pgx.Identifier{table}.Sanitize()), yearA, yearB)

	var r SubCategoryGrowth
	if err := row.Scan(&r.SubCategory, &r.FirstYear, &r.SecondYear, &r.Growth); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}
