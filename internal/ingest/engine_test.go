package ingest

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDump = `Id:   0
ASIN: 0771044445

Id:   1
ASIN: 0827229534
  title: Patterns of Preaching: A Sermon Sampler
  group: Book
  salesrank: 396585
  similar: 5  0804215715 156101074X 0687023955 0687074231 082721619X
  categories: 2
   |Books[283155]|Subjects[1000]|Religion & Spirituality[22]
   |Books[283155]|Subjects[1000]|Christianity[12290]
  reviews: total: 2  downloaded: 2  avg rating: 5
    2000-7-28  cutomer: A2JW67OY8U6HHK  rating: 5  votes: 10  helpful: 9
    2003-12-14  cutomer: A2VE83MZF98ITY  rating: 5  votes: 6  helpful: 5
Id:   2
ASIN: 0738700797
  title: Candlemas: Feast of Flames
  group: Book
  salesrank: 168596
  similar: 2  0738700525 0738700940
  reviews: total: 1  downloaded: 1  avg rating: 4.5
    2001-12-16  cutomer: A11NCO6YTE4BTJ  rating: 5  votes: 5  helpful: 5
Id:   3
ASIN: 0486287785
  title: World War II Allied Fighter Planes Trading Cards
  group: Discontinued product
Id:   4
ASIN: 0842328327
  title: Life Application Bible Commentary: 1 and 2 Timothy and Titus
  group: Book
  salesrank: 631289
  similar: 0
  reviews: total: 0  downloaded: 0  avg rating: 0
`

func TestParseStream_FullDump(t *testing.T) {
	tables, result, err := ParseStream(strings.NewReader(sampleDump))
	if err != nil {
		t.Fatalf("ParseStream failed: %v", err)
	}

	if result.RecordsSeen != 5 {
		t.Errorf("records seen = %d, want 5", result.RecordsSeen)
	}
	if result.Discontinued != 1 {
		t.Errorf("discontinued = %d, want 1", result.Discontinued)
	}
	if len(tables.Products) != 4 {
		t.Errorf("products = %d, want 4 (discontinued excluded)", len(tables.Products))
	}
	if len(tables.Edges) != 7 {
		t.Errorf("edges = %d, want 7", len(tables.Edges))
	}
	if len(tables.Reviews) != 3 {
		t.Errorf("reviews = %d, want 3", len(tables.Reviews))
	}

	// Category lines must never be collected as review detail.
	for _, r := range tables.Reviews {
		if strings.Contains(r.RawDate, "|") {
			t.Errorf("category line leaked into reviews: %q", r.RawDate)
		}
	}
}

func TestParseStream_TruncatedFinalRecord(t *testing.T) {
	truncated := "Id: 1\nASIN: AAA\n  title: Cut Off Mid-Rec"
	tables, result, err := ParseStream(strings.NewReader(truncated))
	if err != nil {
		t.Fatalf("ParseStream failed: %v", err)
	}
	if result.RecordsSeen != 1 || len(tables.Products) != 1 {
		t.Fatalf("truncated record must still materialize: %+v", result)
	}
	if tables.Products[0].Title != "Cut Off Mid-Rec" {
		t.Errorf("title = %q", tables.Products[0].Title)
	}
}

func TestParseStream_EmptyInput(t *testing.T) {
	tables, result, err := ParseStream(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseStream failed: %v", err)
	}
	if result.RecordsSeen != 0 || len(tables.Products) != 0 {
		t.Errorf("empty input should yield empty tables, got %+v", result)
	}
}

func TestParseFile_PlainAndGzip(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "meta.txt")
	if err := os.WriteFile(plain, []byte(sampleDump), 0644); err != nil {
		t.Fatal(err)
	}

	gzPath := filepath.Join(dir, "meta.txt.gz")
	f, err := os.Create(gzPath)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(sampleDump)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{plain, gzPath} {
		tables, result, err := ParseFile(path)
		if err != nil {
			t.Fatalf("ParseFile(%s) failed: %v", path, err)
		}
		if result.Products != 4 || len(tables.Products) != 4 {
			t.Errorf("ParseFile(%s): products = %d, want 4", path, result.Products)
		}
		// ParseFile finalizes: every product carries a concrete rank.
		for _, p := range tables.Products {
			if p.SalesRank <= 0 {
				t.Errorf("ParseFile(%s): product %s rank not finalized: %d", path, p.CatalogCode, p.SalesRank)
			}
		}
	}
}

func TestFormatResult(t *testing.T) {
	out := FormatResult(&Result{RecordsSeen: 5, Discontinued: 1, Products: 4, Edges: 7, Reviews: 3})
	for _, want := range []string{"5 records", "4 products", "7 edges", "3 reviews"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q: %s", want, out)
		}
	}
}
