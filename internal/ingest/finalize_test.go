package ingest

import (
	"testing"
	"time"
)

func productsWithRanks(ranks ...string) []ProductRow {
	products := make([]ProductRow, len(ranks))
	for i, r := range ranks {
		products[i] = ProductRow{ID: i + 1, CatalogCode: string(rune('A' + i)), RawRank: r}
	}
	return products
}

func TestFinalize_RankCoercionAndMedianImputation(t *testing.T) {
	tables := &Tables{Products: productsWithRanks("10", "x", "30", "", "50")}
	if err := Finalize(tables); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	// Median of the valid ranks {10, 30, 50} is 30; invalid and missing
	// ranks are imputed with it.
	want := []int{10, 30, 30, 30, 50}
	for i, p := range tables.Products {
		if p.SalesRank != want[i] {
			t.Errorf("rank[%d] = %d, want %d", i, p.SalesRank, want[i])
		}
	}
}

func TestFinalize_EvenCountMedianFloors(t *testing.T) {
	tables := &Tables{Products: productsWithRanks("10", "25", "bad", "bad2")}
	if err := Finalize(tables); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	// Median of {10, 25} is 17.5, floored to 17.
	if got := tables.Products[2].SalesRank; got != 17 {
		t.Errorf("imputed rank = %d, want 17", got)
	}
	if got := tables.Products[3].SalesRank; got != 17 {
		t.Errorf("imputed rank = %d, want 17", got)
	}
}

func TestFinalize_NegativeRankSurvives(t *testing.T) {
	tables := &Tables{Products: productsWithRanks("-1", "10", "30", "")}
	if err := Finalize(tables); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	// A rank that coerces is valid whatever its sign: -1 is kept as-is and
	// participates in the median ({-1, 10, 30} → 10) used for the missing row.
	want := []int{-1, 10, 30, 10}
	for i, p := range tables.Products {
		if p.SalesRank != want[i] {
			t.Errorf("rank[%d] = %d, want %d", i, p.SalesRank, want[i])
		}
	}
}

func TestFinalize_NoValidRankIsFatal(t *testing.T) {
	tables := &Tables{Products: productsWithRanks("", "junk", "NaN")}
	if err := Finalize(tables); err == nil {
		t.Fatal("expected error when no product has a valid rank")
	}
}

func TestFinalize_EmptyProductTableIsNotFatal(t *testing.T) {
	if err := Finalize(&Tables{}); err != nil {
		t.Fatalf("empty tables should finalize cleanly: %v", err)
	}
}

func TestFinalize_DateParsing(t *testing.T) {
	tables := &Tables{Reviews: []ReviewRow{
		{CatalogCode: "A", RawDate: "2001-5-13"},
		{CatalogCode: "A", RawDate: "2001-05-13"},
		{CatalogCode: "A", RawDate: "not-a-date"},
		{CatalogCode: "A", RawDate: ""},
	}}
	if err := Finalize(tables); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	want := time.Date(2001, 5, 13, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		if tables.Reviews[i].Date == nil || !tables.Reviews[i].Date.Equal(want) {
			t.Errorf("review[%d].Date = %v, want %v", i, tables.Reviews[i].Date, want)
		}
	}
	// Unparseable and empty dates become null; both rows are retained.
	if tables.Reviews[2].Date != nil || tables.Reviews[3].Date != nil {
		t.Error("unparseable dates must become null, not dropped")
	}
	if len(tables.Reviews) != 4 {
		t.Errorf("reviews = %d, no rows may be dropped", len(tables.Reviews))
	}
}
