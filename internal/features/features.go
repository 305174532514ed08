// Package features derives per-reviewer behavioral statistics from a reviews
// table: review cadence, helpfulness, rating dispersion, and burstiness of
// inter-review gaps.
//
// Input rows come either from the ingestion pipeline's reviews table or from
// an independently supplied CSV. Rows without a reviewer id never form a
// group. Output ordering is deterministic (sorted by reviewer id) so that
// repeated runs over the same input produce byte-identical files.
package features

import (
	"math"
	"sort"
	"time"
)

// Review is one input row. Date, Rating, Votes, and Helpful are nullable.
type Review struct {
	Reviewer string
	Date     *time.Time
	Rating   *int
	Votes    *int
	Helpful  *int
}

// Row is the computed feature set for one reviewer. Pointer fields are null
// when the statistic is undefined for the group.
type Row struct {
	Reviewer         string
	TotalReviews     int
	AvgRating        *float64
	StdRating        float64 // 0, not null, for a single or unrated group
	HelpfulnessRatio *float64
	ActiveDaysSpan   *int
	MedianInterval   *float64
	Burstiness       *float64
	ReviewsPerMonth  *float64
}

// Compute aggregates reviews per reviewer. An empty input yields an empty
// (non-nil) result.
func Compute(reviews []Review) []Row {
	groups := make(map[string][]Review)
	for _, r := range reviews {
		if r.Reviewer == "" {
			continue
		}
		groups[r.Reviewer] = append(groups[r.Reviewer], r)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, computeGroup(id, groups[id]))
	}
	return rows
}

func computeGroup(id string, group []Review) Row {
	row := Row{Reviewer: id, TotalReviews: len(group)}

	// Rating stats over non-null ratings. Sample stdev; a group with fewer
	// than two ratings gets 0, not null.
	var ratings []float64
	for _, r := range group {
		if r.Rating != nil {
			ratings = append(ratings, float64(*r.Rating))
		}
	}
	if len(ratings) > 0 {
		avg := mean(ratings)
		row.AvgRating = &avg
		if len(ratings) > 1 {
			row.StdRating = sampleStdev(ratings, avg)
		}
	}

	// Helpfulness: null votes/helpful contribute nothing to the sums.
	votes, helpful := 0, 0
	for _, r := range group {
		if r.Votes != nil {
			votes += *r.Votes
		}
		if r.Helpful != nil {
			helpful += *r.Helpful
		}
	}
	if votes > 0 {
		ratio := float64(helpful) / float64(votes)
		row.HelpfulnessRatio = &ratio
	}

	dates := validDates(group)

	if len(dates) > 0 {
		span := int(dates[len(dates)-1].Sub(dates[0]).Hours() / 24)
		row.ActiveDaysSpan = &span

		if span > 0 {
			perMonth := float64(row.TotalReviews) / (float64(span) / 30)
			row.ReviewsPerMonth = &perMonth
		}
	}

	if len(dates) >= 2 {
		gaps := dayGaps(dates)
		med := medianFloat(gaps)
		row.MedianInterval = &med

		if len(gaps) >= 2 {
			gapMean := mean(gaps)
			if gapMean != 0 {
				burst := sampleStdev(gaps, gapMean) / gapMean
				row.Burstiness = &burst
			}
		}
	}

	return row
}

// validDates returns the group's non-null dates sorted ascending.
func validDates(group []Review) []time.Time {
	var dates []time.Time
	for _, r := range group {
		if r.Date != nil {
			dates = append(dates, *r.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// dayGaps returns successive differences between sorted dates, in whole days.
func dayGaps(dates []time.Time) []float64 {
	gaps := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		gaps = append(gaps, dates[i].Sub(dates[i-1]).Hours()/24)
	}
	return gaps
}

func mean(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// sampleStdev is the n-1 (sample) standard deviation.
func sampleStdev(vs []float64, m float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vs)-1))
}

func medianFloat(vs []float64) float64 {
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
