package parse

import (
	"strconv"
	"strings"
)

// Record is the transient accumulation of one product block.
type Record struct {
	ID          int
	CatalogCode string
	Title       string
	Group       string
	SalesRank   string   // raw text; coerced during table finalization
	Similar     []string // catalog codes in declaration order
	ReviewLines []string // raw review-detail lines, trimmed
}

// Accumulator folds classified lines into Records.
//
// States: no record in progress, record in progress, and record in progress
// with an active review countdown. The countdown gates review collection: a
// non-blank unclassified line collects and decrements only while the counter
// is positive; once it hits zero, stray lines fall through as no-ops.
type Accumulator struct {
	rec       *Record
	remaining int // review-detail lines still owed to the current record
}

// Feed processes one raw line. When the line opens a new record, the
// previously completed record is returned; otherwise nil.
func (a *Accumulator) Feed(raw string) *Record {
	line := Classify(raw)

	switch line.Kind {
	case KindIdentifier:
		done := a.rec
		id, _ := strconv.Atoi(line.Value)
		a.rec = &Record{ID: id}
		a.remaining = 0
		return done

	case KindCatalogCode:
		if a.rec != nil {
			a.rec.CatalogCode = line.Value
		}

	case KindTitle:
		if a.rec != nil {
			a.rec.Title = line.Value
		}

	case KindGroup:
		if a.rec != nil {
			a.rec.Group = line.Value
		}

	case KindSalesRank:
		if a.rec != nil {
			a.rec.SalesRank = line.Value
		}

	case KindSimilar:
		if a.rec != nil {
			a.rec.Similar = line.Codes
		}

	case KindReviewsHeader:
		if a.rec != nil {
			a.rec.ReviewLines = nil
			a.remaining = line.Total
		}

	case KindCategories:
		// Consumed, never stored.

	default:
		if a.rec == nil || a.remaining <= 0 {
			return nil
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			// Blank lines mid-countdown neither collect nor decrement.
			return nil
		}
		a.rec.ReviewLines = append(a.rec.ReviewLines, trimmed)
		a.remaining--
	}

	return nil
}

// Flush returns the in-progress record at end of input, if any. A truncated
// dump still yields its final partial record.
func (a *Accumulator) Flush() *Record {
	done := a.rec
	a.rec = nil
	a.remaining = 0
	return done
}
