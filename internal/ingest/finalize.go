package ingest

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// dateLayout accepts both YYYY-M-D and YYYY-MM-DD.
const dateLayout = "2006-1-2"

// Finalize post-processes the materialized tables in place.
//
// Sales ranks are coerced to integers; unparseable or missing ranks are
// imputed with the floor of the median of the valid ranks. Review date
// strings are parsed into calendar dates; unparseable dates become null
// with the row retained.
//
// A product table with zero valid ranks has no defined median and is a
// fatal condition.
func Finalize(t *Tables) error {
	if err := finalizeRanks(t.Products); err != nil {
		return err
	}
	finalizeDates(t.Reviews)
	return nil
}

func finalizeRanks(products []ProductRow) error {
	if len(products) == 0 {
		return nil
	}

	missing := make([]bool, len(products))
	valid := make([]int, 0, len(products))
	for i := range products {
		rank, ok := coerceRank(products[i].RawRank)
		if !ok {
			missing[i] = true
			continue
		}
		products[i].SalesRank = rank
		valid = append(valid, rank)
	}

	if len(valid) == 0 {
		return fmt.Errorf("no product has a valid sales rank: median undefined")
	}

	median := medianFloor(valid)
	for i := range products {
		if missing[i] {
			products[i].SalesRank = median
		}
	}
	return nil
}

// coerceRank parses a raw rank. Only coercion failure counts as missing;
// any parseable integer, negative included, is a valid rank.
func coerceRank(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// medianFloor returns the median of vs, rounded down for even-length input.
func medianFloor(vs []int) int {
	sorted := make([]int, len(vs))
	copy(sorted, vs)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return int(math.Floor(float64(sorted[mid-1]+sorted[mid]) / 2))
}

func finalizeDates(reviews []ReviewRow) {
	for i := range reviews {
		if reviews[i].RawDate == "" {
			continue
		}
		if d, err := time.Parse(dateLayout, reviews[i].RawDate); err == nil {
			reviews[i].Date = &d
		}
	}
}
