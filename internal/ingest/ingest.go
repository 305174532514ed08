// Package ingest turns the raw product metadata dump into three clean
// relational tables: products, co-purchase edges, and reviews.
//
// The pipeline is strictly sequential: the parse accumulator walks the input
// line by line, each completed record is materialized into raw rows, and a
// single finalization pass coerces sales ranks (with median imputation) and
// normalizes review dates across the whole tables. The finished tables are
// persisted as headered CSV; the edge table's two-column source/target shape
// is the contract consumed by the downstream rule-mining stage.
package ingest

import "time"

// ProductRow is one product. RawRank holds the dump text until Finalize
// coerces it into SalesRank; missing or unparseable ranks are imputed with
// the table-wide median.
type ProductRow struct {
	ID          int
	CatalogCode string
	Title       string
	RawRank     string
	SalesRank   int
	Group       string
}

// EdgeRow is one directed co-purchase relation.
type EdgeRow struct {
	Source string
	Target string
}

// ReviewRow is one parsed review-detail line. Date is populated by Finalize;
// a row with a null rating or date is kept, not discarded.
type ReviewRow struct {
	CatalogCode string
	RawDate     string
	Date        *time.Time
	Reviewer    string // empty when the line carried no reviewer id
	Rating      *int
	Votes       *int
	Helpful     *int
}

// Tables holds the three output tables accumulated over a full parse.
type Tables struct {
	Products []ProductRow
	Edges    []EdgeRow
	Reviews  []ReviewRow
}

// Result summarizes an ingestion run.
type Result struct {
	RecordsSeen  int
	Discontinued int
	Products     int
	Edges        int
	Reviews      int
}
