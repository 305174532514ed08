package features

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// WriteCSV persists the feature table at path with a header row.
// Undefined statistics are written as empty cells.
func WriteCSV(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	header := []string{
		"customer_id", "total_reviews", "avg_rating", "std_rating",
		"helpfulness_ratio", "active_days_span", "median_interval",
		"burstiness", "reviews_per_month",
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.Reviewer,
			strconv.Itoa(r.TotalReviews),
			formatNullFloat(r.AvgRating),
			formatFloat(r.StdRating),
			formatNullFloat(r.HelpfulnessRatio),
			formatNullIntP(r.ActiveDaysSpan),
			formatNullFloat(r.MedianInterval),
			formatNullFloat(r.Burstiness),
			formatNullFloat(r.ReviewsPerMonth),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("writing row for %s: %w", r.Reviewer, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

// ReadReviewsCSV loads a reviews table from a headered CSV. Column names are
// matched case-insensitively with the aliases the pipeline and the profiling
// input formats use (customer/customer_id, date/review_date). Votes and
// helpful columns may be entirely absent.
func ReadReviewsCSV(path string) ([]Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}

	col := headerIndex(records[0])
	reviewerIdx, ok := pick(col, "customer_id", "customer", "reviewer")
	if !ok {
		return nil, fmt.Errorf("%s: no reviewer id column", path)
	}
	dateIdx, _ := pick(col, "review_date", "date")
	ratingIdx, _ := pick(col, "rating")
	votesIdx, _ := pick(col, "votes")
	helpfulIdx, _ := pick(col, "helpful")

	var reviews []Review
	for _, rec := range records[1:] {
		r := Review{Reviewer: cell(rec, reviewerIdx)}
		if s := cell(rec, dateIdx); s != "" {
			if d, err := time.Parse("2006-1-2", s); err == nil {
				r.Date = &d
			}
		}
		r.Rating = parseNullInt(cell(rec, ratingIdx))
		r.Votes = parseNullInt(cell(rec, votesIdx))
		r.Helpful = parseNullInt(cell(rec, helpfulIdx))
		reviews = append(reviews, r)
	}
	return reviews, nil
}

func headerIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

func pick(col map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if idx, ok := col[name]; ok {
			return idx, true
		}
	}
	return -1, false
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func parseNullInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatNullFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatNullIntP(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
