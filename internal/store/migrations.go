package store

import "fmt"

// migrate creates all tables and indexes if they don't exist.
func (s *SQLiteStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id        INTEGER NOT NULL,
			asin      TEXT UNIQUE NOT NULL,
			title     TEXT NOT NULL DEFAULT '',
			salesrank INTEGER NOT NULL,
			"group"   TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS edges (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			target TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS reviews (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			asin        TEXT NOT NULL,
			review_date TEXT,
			customer    TEXT,
			rating      INTEGER,
			votes       INTEGER,
			helpful     INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS reviewer_features (
			customer_id       TEXT PRIMARY KEY,
			total_reviews     INTEGER NOT NULL,
			avg_rating        REAL,
			std_rating        REAL NOT NULL,
			helpfulness_ratio REAL,
			active_days_span  INTEGER,
			median_interval   REAL,
			burstiness        REAL,
			reviews_per_month REAL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_asin ON reviews(asin)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_customer ON reviews(customer)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}
	return nil
}
