package parse

import (
	"reflect"
	"testing"
)

// feedAll drives the accumulator with a synthetic line sequence and returns
// every emitted record, including the flushed tail.
func feedAll(t *testing.T, lines []string) []*Record {
	t.Helper()
	acc := &Accumulator{}
	var records []*Record
	for _, line := range lines {
		if rec := acc.Feed(line); rec != nil {
			records = append(records, rec)
		}
	}
	if rec := acc.Flush(); rec != nil {
		records = append(records, rec)
	}
	return records
}

func TestAccumulator_SingleRecord(t *testing.T) {
	records := feedAll(t, []string{
		"Id:   1",
		"ASIN: 0827229534",
		"  title: Patterns of Preaching",
		"  group: Book",
		"  salesrank: 396585",
		"  similar: 2  0804215715 156101074X",
		"  categories: 2",
		"  reviews: total: 2  downloaded: 2  avg rating: 5",
		"    2000-7-28  cutomer: A2JW67OY8U6HHK  rating: 5  votes: 10  helpful: 9",
		"    2003-12-14  cutomer: A2VE83MZF98ITY  rating: 5  votes: 6  helpful: 5",
	})

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != 1 {
		t.Errorf("ID = %d, want 1", rec.ID)
	}
	if rec.CatalogCode != "0827229534" {
		t.Errorf("CatalogCode = %q", rec.CatalogCode)
	}
	if rec.Title != "Patterns of Preaching" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Group != "Book" {
		t.Errorf("Group = %q", rec.Group)
	}
	if rec.SalesRank != "396585" {
		t.Errorf("SalesRank = %q", rec.SalesRank)
	}
	if want := []string{"0804215715", "156101074X"}; !reflect.DeepEqual(rec.Similar, want) {
		t.Errorf("Similar = %v, want %v", rec.Similar, want)
	}
	if len(rec.ReviewLines) != 2 {
		t.Fatalf("expected 2 review lines, got %d", len(rec.ReviewLines))
	}
	if rec.ReviewLines[0] != "2000-7-28  cutomer: A2JW67OY8U6HHK  rating: 5  votes: 10  helpful: 9" {
		t.Errorf("review line not trimmed verbatim: %q", rec.ReviewLines[0])
	}
}

func TestAccumulator_BoundaryEmission(t *testing.T) {
	acc := &Accumulator{}

	if rec := acc.Feed("Id: 1"); rec != nil {
		t.Fatal("first identifier must not emit a record")
	}
	acc.Feed("ASIN: AAA")

	rec := acc.Feed("Id: 2")
	if rec == nil {
		t.Fatal("second identifier must emit the previous record")
	}
	if rec.ID != 1 || rec.CatalogCode != "AAA" {
		t.Errorf("emitted record = %+v, want ID 1 / AAA", rec)
	}

	tail := acc.Flush()
	if tail == nil || tail.ID != 2 {
		t.Fatalf("flush should yield the trailing record, got %+v", tail)
	}
	if again := acc.Flush(); again != nil {
		t.Error("second flush must return nil")
	}
}

func TestAccumulator_ReviewCountdown(t *testing.T) {
	t.Run("short block yields only the lines present", func(t *testing.T) {
		records := feedAll(t, []string{
			"Id: 1",
			"ASIN: AAA",
			"  reviews: total: 3  downloaded: 3  avg rating: 4",
			"    2001-1-1  cutomer: X  rating: 4  votes: 1  helpful: 1",
			"    2001-1-2  cutomer: Y  rating: 3  votes: 2  helpful: 0",
			"Id: 2",
			"ASIN: BBB",
		})
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if got := len(records[0].ReviewLines); got != 2 {
			t.Errorf("review lines = %d, want 2 (no fabricated third)", got)
		}
	})

	t.Run("blank lines do not decrement", func(t *testing.T) {
		records := feedAll(t, []string{
			"Id: 1",
			"ASIN: AAA",
			"  reviews: total: 2  downloaded: 2  avg rating: 4",
			"",
			"    2001-1-1  cutomer: X  rating: 4  votes: 1  helpful: 1",
			"   ",
			"    2001-1-2  cutomer: Y  rating: 3  votes: 2  helpful: 0",
		})
		if got := len(records[0].ReviewLines); got != 2 {
			t.Errorf("review lines = %d, want 2 (blanks must not consume slots)", got)
		}
	})

	t.Run("lines beyond the declared total are ignored", func(t *testing.T) {
		records := feedAll(t, []string{
			"Id: 1",
			"ASIN: AAA",
			"  reviews: total: 1  downloaded: 1  avg rating: 4",
			"    2001-1-1  cutomer: X  rating: 4  votes: 1  helpful: 1",
			"    stray line after countdown exhausted",
		})
		if got := len(records[0].ReviewLines); got != 1 {
			t.Errorf("review lines = %d, want 1", got)
		}
	})

	t.Run("zero total collects nothing", func(t *testing.T) {
		records := feedAll(t, []string{
			"Id: 1",
			"ASIN: AAA",
			"  reviews: total: 0  downloaded: 0  avg rating: 0",
			"    2001-1-1  cutomer: X  rating: 4  votes: 1  helpful: 1",
		})
		if got := len(records[0].ReviewLines); got != 0 {
			t.Errorf("review lines = %d, want 0", got)
		}
	})
}

func TestAccumulator_FieldsBeforeRecordAreIgnored(t *testing.T) {
	records := feedAll(t, []string{
		"  title: Orphan Title",
		"ASIN: ORPHAN",
		"Id: 1",
		"ASIN: AAA",
	})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].CatalogCode != "AAA" {
		t.Errorf("CatalogCode = %q, orphan fields must not leak in", records[0].CatalogCode)
	}
}

func TestAccumulator_ReviewsHeaderResetsCollection(t *testing.T) {
	records := feedAll(t, []string{
		"Id: 1",
		"ASIN: AAA",
		"  reviews: total: 1  downloaded: 1  avg rating: 4",
		"    2001-1-1  cutomer: X  rating: 4  votes: 1  helpful: 1",
		"  reviews: total: 1  downloaded: 1  avg rating: 5",
		"    2002-2-2  cutomer: Y  rating: 5  votes: 3  helpful: 3",
	})
	lines := records[0].ReviewLines
	if len(lines) != 1 {
		t.Fatalf("expected 1 review line after reset, got %d", len(lines))
	}
	if lines[0] != "2002-2-2  cutomer: Y  rating: 5  votes: 3  helpful: 3" {
		t.Errorf("collection not reset by second header: %q", lines[0])
	}
}
