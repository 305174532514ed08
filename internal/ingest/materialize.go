package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hurttlocker/shelfgraph/internal/parse"
)

// Review-detail field patterns. The reviewer label is misspelled "cutomer"
// in the source format itself; the pattern preserves it verbatim.
var (
	ratingRE   = regexp.MustCompile(`rating:\s*(\d+)`)
	reviewerRE = regexp.MustCompile(`(?i)cutomer:\s*([A-Z0-9]+)`)
	votesRE    = regexp.MustCompile(`votes:\s*(\d+)`)
	helpfulRE  = regexp.MustCompile(`helpful:\s*(\d+)`)
)

const discontinuedGroup = "discontinued product"

// Materialize emits the rows for one completed record into t.
//
// Discontinued-group records are excluded entirely: no product, no edges,
// no reviews. Everything else yields one product row, one edge row per
// similar code in declaration order, and one review row per collected
// detail line. It returns whether the record was materialized.
func Materialize(rec *parse.Record, t *Tables) bool {
	if strings.ToLower(rec.Group) == discontinuedGroup {
		return false
	}

	t.Products = append(t.Products, ProductRow{
		ID:          rec.ID,
		CatalogCode: rec.CatalogCode,
		Title:       rec.Title,
		RawRank:     rec.SalesRank,
		Group:       rec.Group,
	})

	for _, code := range rec.Similar {
		t.Edges = append(t.Edges, EdgeRow{Source: rec.CatalogCode, Target: code})
	}

	for _, line := range rec.ReviewLines {
		t.Reviews = append(t.Reviews, parseReviewLine(rec.CatalogCode, line))
	}

	return true
}

// parseReviewLine extracts the fields of one review-detail line, e.g.
//
//	2001-5-13  cutomer: A1B2C3 rating: 4 votes: 10 helpful: 7
//
// The leading token is the date; the labeled fields are matched anywhere in
// the line and are null when absent. A row is emitted even when nothing but
// the date parsed.
func parseReviewLine(catalogCode, line string) ReviewRow {
	row := ReviewRow{CatalogCode: catalogCode}

	if fields := strings.Fields(line); len(fields) > 0 {
		row.RawDate = fields[0]
	}
	if m := reviewerRE.FindStringSubmatch(line); m != nil {
		row.Reviewer = m[1]
	}
	row.Rating = matchInt(ratingRE, line)
	row.Votes = matchInt(votesRE, line)
	row.Helpful = matchInt(helpfulRE, line)

	return row
}

func matchInt(re *regexp.Regexp, line string) *int {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
