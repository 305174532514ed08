// Package parse implements the line-level state machine for the flat-text
// product metadata dump.
//
// The dump is one block per product: top-level `Id:` and `ASIN:` lines,
// indented `title:` / `group:` / `salesrank:` / `similar:` / `categories:` /
// `reviews:` lines, and a run of review-detail lines following each
// `reviews:` header. Classify tags a single raw line; Accumulator folds the
// tagged lines into Records, emitting each completed record when the next
// `Id:` boundary (or end of input) is reached.
package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind identifies which logical field a raw line carries.
type LineKind int

const (
	KindUnclassified LineKind = iota
	KindIdentifier
	KindCatalogCode
	KindTitle
	KindGroup
	KindSalesRank
	KindSimilar
	KindCategories
	KindReviewsHeader
)

var reviewsTotalRE = regexp.MustCompile(`total:\s*(\d+)`)

// Line is one classified input line.
type Line struct {
	Kind  LineKind
	Value string   // trailing value for Identifier/CatalogCode/Title/Group/SalesRank
	Codes []string // parsed catalog codes for KindSimilar
	Total int      // declared review count for KindReviewsHeader
}

// Classify tags a single raw line (trailing newline already stripped).
//
// Top-level fields (Id, ASIN) match on the untrimmed line; indented fields
// match on the trimmed line. Anything else is Unclassified — including
// review-detail lines, which the Accumulator collects by countdown rather
// than by prefix.
func Classify(raw string) Line {
	switch {
	case strings.HasPrefix(raw, "Id:"):
		return Line{Kind: KindIdentifier, Value: valueAfterLabel(raw)}
	case strings.HasPrefix(raw, "ASIN:"):
		return Line{Kind: KindCatalogCode, Value: valueAfterLabel(raw)}
	}

	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(trimmed, "title:"):
		return Line{Kind: KindTitle, Value: valueAfterLabel(trimmed)}
	case strings.HasPrefix(trimmed, "group:"):
		return Line{Kind: KindGroup, Value: valueAfterLabel(trimmed)}
	case strings.HasPrefix(trimmed, "salesrank:"):
		return Line{Kind: KindSalesRank, Value: valueAfterLabel(trimmed)}
	case strings.HasPrefix(trimmed, "similar:"):
		return Line{Kind: KindSimilar, Codes: parseSimilar(trimmed)}
	case strings.HasPrefix(trimmed, "categories:"):
		// Recognized so it never leaks into review collection; never stored.
		return Line{Kind: KindCategories}
	case strings.HasPrefix(trimmed, "reviews:"):
		return Line{Kind: KindReviewsHeader, Total: parseReviewsTotal(trimmed)}
	}

	return Line{Kind: KindUnclassified}
}

// valueAfterLabel returns the trimmed text after the first colon.
func valueAfterLabel(s string) string {
	if idx := strings.Index(s, ":"); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return ""
}

// parseSimilar parses `similar: N  CODE1 CODE2 ...`. The declared count caps
// how many codes are taken; fewer tokens than declared is tolerated.
func parseSimilar(trimmed string) []string {
	parts := strings.Fields(trimmed)
	if len(parts) < 2 {
		return nil
	}
	count, err := strconv.Atoi(parts[1])
	if err != nil || count <= 0 {
		return nil
	}
	codes := parts[2:]
	if len(codes) > count {
		codes = codes[:count]
	}
	if len(codes) == 0 {
		return nil
	}
	return codes
}

// parseReviewsTotal extracts the `total:` integer from a reviews header,
// e.g. `reviews: total: 12  downloaded: 12  avg rating: 4.5`. Missing → 0.
func parseReviewsTotal(trimmed string) int {
	m := reviewsTotalRE.FindStringSubmatch(trimmed)
	if m == nil {
		return 0
	}
	total, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return total
}
