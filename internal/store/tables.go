package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hurttlocker/shelfgraph/internal/features"
	"github.com/hurttlocker/shelfgraph/internal/ingest"
)

// ReplaceTables swaps the stored product/edge/review tables for the given
// finalized tables in a single transaction. An ingestion run always replaces
// the previous one wholesale.
func (s *SQLiteStore) ReplaceTables(ctx context.Context, t *ingest.Tables) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"products", "edges", "reviews"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := insertProducts(ctx, tx, t.Products); err != nil {
		return err
	}
	if err := insertEdges(ctx, tx, t.Edges); err != nil {
		return err
	}
	if err := insertReviews(ctx, tx, t.Reviews); err != nil {
		return err
	}

	return tx.Commit()
}

func insertProducts(ctx context.Context, tx *sql.Tx, products []ingest.ProductRow) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO products (id, asin, title, salesrank, "group") VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare products insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx, p.ID, p.CatalogCode, p.Title, p.SalesRank, p.Group); err != nil {
			return fmt.Errorf("inserting product %s: %w", p.CatalogCode, err)
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, edges []ingest.EdgeRow) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (source, target) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare edges insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range edges {
		if _, err := stmt.ExecContext(ctx, e.Source, e.Target); err != nil {
			return fmt.Errorf("inserting edge %s→%s: %w", e.Source, e.Target, err)
		}
	}
	return nil
}

func insertReviews(ctx context.Context, tx *sql.Tx, reviews []ingest.ReviewRow) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reviews (asin, review_date, customer, rating, votes, helpful)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare reviews insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range reviews {
		customer := interface{}(nil)
		if r.Reviewer != "" {
			customer = r.Reviewer
		}
		if _, err := stmt.ExecContext(ctx, r.CatalogCode, formatDate(r.Date),
			customer, r.Rating, r.Votes, r.Helpful); err != nil {
			return fmt.Errorf("inserting review for %s: %w", r.CatalogCode, err)
		}
	}
	return nil
}

// ListReviews reads back the reviews table in the shape the feature engine
// consumes.
func (s *SQLiteStore) ListReviews(ctx context.Context) ([]features.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT customer, review_date, rating, votes, helpful FROM reviews`)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var reviews []features.Review
	for rows.Next() {
		var (
			customer sql.NullString
			date     sql.NullString
			rating   sql.NullInt64
			votes    sql.NullInt64
			helpful  sql.NullInt64
		)
		if err := rows.Scan(&customer, &date, &rating, &votes, &helpful); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}

		r := features.Review{Reviewer: customer.String}
		if date.Valid {
			if d, err := time.Parse(storeDateLayout, date.String); err == nil {
				r.Date = &d
			}
		}
		r.Rating = nullInt(rating)
		r.Votes = nullInt(votes)
		r.Helpful = nullInt(helpful)
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// ReplaceFeatures swaps the reviewer_features table for the given rows.
func (s *SQLiteStore) ReplaceFeatures(ctx context.Context, rows []features.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin features replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reviewer_features"); err != nil {
		return fmt.Errorf("clearing reviewer_features: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reviewer_features
		 (customer_id, total_reviews, avg_rating, std_rating, helpfulness_ratio,
		  active_days_span, median_interval, burstiness, reviews_per_month)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare features insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Reviewer, r.TotalReviews, r.AvgRating,
			r.StdRating, r.HelpfulnessRatio, r.ActiveDaysSpan, r.MedianInterval,
			r.Burstiness, r.ReviewsPerMonth); err != nil {
			return fmt.Errorf("inserting features for %s: %w", r.Reviewer, err)
		}
	}

	return tx.Commit()
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
