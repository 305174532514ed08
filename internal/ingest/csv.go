package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// csvDateLayout is the normalized date form written to the reviews table.
const csvDateLayout = "2006-01-02"

// WriteCSV persists the three tables under dir as products.csv, edges.csv,
// and reviews.csv. Intermediate directories are created automatically.
func WriteCSV(dir string, t *Tables) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	if err := writeTable(filepath.Join(dir, "products.csv"),
		[]string{"Id", "ASIN", "title", "salesrank", "group"},
		len(t.Products), func(i int) []string {
			p := t.Products[i]
			return []string{strconv.Itoa(p.ID), p.CatalogCode, p.Title, strconv.Itoa(p.SalesRank), p.Group}
		}); err != nil {
		return err
	}

	if err := writeTable(filepath.Join(dir, "edges.csv"),
		[]string{"source", "target"},
		len(t.Edges), func(i int) []string {
			e := t.Edges[i]
			return []string{e.Source, e.Target}
		}); err != nil {
		return err
	}

	return writeTable(filepath.Join(dir, "reviews.csv"),
		[]string{"ASIN", "date", "customer", "rating", "votes", "helpful"},
		len(t.Reviews), func(i int) []string {
			r := t.Reviews[i]
			date := ""
			if r.Date != nil {
				date = r.Date.Format(csvDateLayout)
			}
			return []string{r.CatalogCode, date, r.Reviewer,
				formatNullInt(r.Rating), formatNullInt(r.Votes), formatNullInt(r.Helpful)}
		})
}

// writeTable writes one headered CSV file, fetching row i via rowFn.
func writeTable(path string, header []string, n int, rowFn func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(rowFn(i)); err != nil {
			f.Close()
			return fmt.Errorf("writing row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

func formatNullInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
