package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/retailbase/salesload/internal/config"
	"github.com/retailbase/salesload/internal/db"
	"github.com/retailbase/salesload/internal/extract"
	"github.com/retailbase/salesload/internal/transform"
)

// fakeLoader records what the pipeline hands it.
type fakeLoader struct {
	table    string
	replaced [][]transform.CleanedRecord
	appended [][]transform.CleanedRecord
	fail     error
}

func (f *fakeLoader) Table() string { return f.table }

func (f *fakeLoader) Replace(_ context.Context, batch []transform.CleanedRecord) error {
	if f.fail != nil {
		return f.fail
	}
	f.replaced = append(f.replaced, batch)
	return nil
}

func (f *fakeLoader) Append(_ context.Context, batch []transform.CleanedRecord) error {
	if f.fail != nil {
		return f.fail
	}
	f.appended = append(f.appended, batch)
	return nil
}

const fixtureCSV = `Order Id,Order Date,Region,Category,Sub Category,Product Id,Quantity,List Price,cost price,Discount Percent
1,2023-03-01,South,Furniture,Chairs,FUR-CH-100,2,100,60,0.1
2,2023-03-02,West,Technology,Phones,TEC-PH-200,1,200,150,0.0
3,bad-date,East,Office,Paper,OFF-PA-300,5,30,20,0.05
4,2023-03-04,North,Furniture,Tables,FUR-TA-400,1,400,320,0.2
`

func testConfig(t *testing.T, csv string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.Connection = "postgres://unused"
	cfg.Source.Path = path
	cfg.Load.Mode = config.ModeReplace
	return cfg
}

func TestRunReplace(t *testing.T) {
	cfg := testConfig(t, fixtureCSV)
	loader := &fakeLoader{table: "sales_orders"}

	result, err := Run(context.Background(), cfg, loader)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.RowsRead != 4 {
		t.Errorf("RowsRead: got %d, want 4", result.RowsRead)
	}
	if result.RowsExcluded != 1 {
		t.Errorf("RowsExcluded: got %d, want 1", result.RowsExcluded)
	}
	if result.RowsLoaded != 3 {
		t.Errorf("RowsLoaded: got %d, want 3", result.RowsLoaded)
	}
	if len(loader.replaced) != 1 || len(loader.appended) != 0 {
		t.Fatalf("Expected exactly one replace call, got %d replace / %d append",
			len(loader.replaced), len(loader.appended))
	}

	batch := loader.replaced[0]
	// Source order preserved; the bad-date row is gone
	wantIDs := []int64{1, 2, 4}
	for i, want := range wantIDs {
		if batch[i].OrderID != want {
			t.Errorf("Batch[%d].OrderID: got %d, want %d", i, batch[i].OrderID, want)
		}
	}

	// (100, 0.1, 60) -> sale 90, profit 30; (200, 0.0, 150) -> sale 200, profit 50
	if batch[0].SalePrice.String() != "90" || batch[0].Profit.String() != "30" {
		t.Errorf("Row 1 derivation: sale=%s profit=%s", batch[0].SalePrice, batch[0].Profit)
	}
	if batch[1].SalePrice.String() != "200" || batch[1].Profit.String() != "50" {
		t.Errorf("Row 2 derivation: sale=%s profit=%s", batch[1].SalePrice, batch[1].Profit)
	}
}

func TestRunAppend(t *testing.T) {
	cfg := testConfig(t, fixtureCSV)
	cfg.Load.Mode = config.ModeAppend
	loader := &fakeLoader{table: "sales_orders"}

	result, err := Run(context.Background(), cfg, loader)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Mode != config.ModeAppend {
		t.Errorf("Mode: got %s", result.Mode)
	}
	if len(loader.appended) != 1 || len(loader.replaced) != 0 {
		t.Fatalf("Expected exactly one append call, got %d append / %d replace",
			len(loader.appended), len(loader.replaced))
	}
}

func TestRunExtractFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Connection = "postgres://unused"
	cfg.Source.Path = "/nonexistent/orders.csv"
	cfg.Load.Mode = config.ModeReplace
	loader := &fakeLoader{table: "sales_orders"}

	_, err := Run(context.Background(), cfg, loader)
	if err == nil {
		t.Fatal("Expected extraction error")
	}
	if stage, code := Classify(err); stage != "extract" || code != ExitExtract {
		t.Errorf("Classify: got (%s, %d)", stage, code)
	}
	if len(loader.replaced)+len(loader.appended) != 0 {
		t.Error("Loader must not be called after an extraction failure")
	}
}

func TestRunSchemaFailure(t *testing.T) {
	// Header is missing the quantity column
	csv := "Order Id,Order Date,Region,Category,Sub Category,Product Id,List Price,cost price,Discount Percent\n" +
		"1,2023-03-01,South,Furniture,Chairs,FUR-CH-100,100,60,0.1\n"
	cfg := testConfig(t, csv)
	loader := &fakeLoader{table: "sales_orders"}

	_, err := Run(context.Background(), cfg, loader)
	if err == nil {
		t.Fatal("Expected schema error")
	}
	if stage, code := Classify(err); stage != "schema" || code != ExitSchema {
		t.Errorf("Classify: got (%s, %d)", stage, code)
	}
	if len(loader.replaced)+len(loader.appended) != 0 {
		t.Error("Loader must not be called after a schema failure")
	}
}

func TestRunTransformFailure(t *testing.T) {
	// Every row has an unparseable date
	csv := "Order Id,Order Date,Region,Category,Sub Category,Product Id,Quantity,List Price,cost price,Discount Percent\n" +
		"1,01/03/2023,South,Furniture,Chairs,FUR-CH-100,2,100,60,0.1\n" +
		"2,02/03/2023,West,Technology,Phones,TEC-PH-200,1,200,150,0.0\n"
	cfg := testConfig(t, csv)
	loader := &fakeLoader{table: "sales_orders"}

	_, err := Run(context.Background(), cfg, loader)
	if err == nil {
		t.Fatal("Expected transform error")
	}
	if stage, code := Classify(err); stage != "transform" || code != ExitTransform {
		t.Errorf("Classify: got (%s, %d)", stage, code)
	}
	if len(loader.replaced)+len(loader.appended) != 0 {
		t.Error("Loader must not be called after a transform failure")
	}
}

func TestRunLoadFailure(t *testing.T) {
	cfg := testConfig(t, fixtureCSV)
	loader := &fakeLoader{
		table: "sales_orders",
		fail:  &db.LoadError{Table: "sales_orders", Mode: "replace", Err: fmt.Errorf("connection reset")},
	}

	_, err := Run(context.Background(), cfg, loader)
	if err == nil {
		t.Fatal("Expected load error")
	}
	if stage, code := Classify(err); stage != "load" || code != ExitLoad {
		t.Errorf("Classify: got (%s, %d)", stage, code)
	}
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t, fixtureCSV)
	loader := &fakeLoader{table: "sales_orders"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, loader)
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(loader.replaced)+len(loader.appended) != 0 {
		t.Error("Loader must not be called after cancellation")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantStage string
		wantCode  int
	}{
		{
			name:      "extraction error",
			err:       &extract.ExtractionError{Path: "x.csv", Err: fmt.Errorf("no such file")},
			wantStage: "extract",
			wantCode:  ExitExtract,
		},
		{
			name:      "source schema error",
			err:       &transform.SchemaError{Subject: "quantity", Detail: "missing"},
			wantStage: "schema",
			wantCode:  ExitSchema,
		},
		{
			name:      "transform error",
			err:       &transform.TransformError{Detail: "all rows excluded"},
			wantStage: "transform",
			wantCode:  ExitTransform,
		},
		{
			name:      "load error",
			err:       &db.LoadError{Table: "t", Mode: "append", Err: fmt.Errorf("tx aborted")},
			wantStage: "load",
			wantCode:  ExitLoad,
		},
		{
			name:      "wrapped load error",
			err:       fmt.Errorf("outer: %w", &db.LoadError{Table: "t", Mode: "append", Err: fmt.Errorf("x")}),
			wantStage: "load",
			wantCode:  ExitLoad,
		},
		{
			name:      "unclassified error",
			err:       fmt.Errorf("something else"),
			wantStage: "run",
			wantCode:  ExitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, code := Classify(tt.err)
			if stage != tt.wantStage || code != tt.wantCode {
				t.Errorf("Classify() = (%s, %d), want (%s, %d)",
					stage, code, tt.wantStage, tt.wantCode)
			}
		})
	}
}
