package analytics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides database operations for post analytics.
type Store struct {
	db *sql.DB
}

// NewStore creates a new analytics store at path.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS post_analytics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			post_id INTEGER NOT NULL UNIQUE,
			likes_count INTEGER NOT NULL DEFAULT 0,
			comments_count INTEGER NOT NULL DEFAULT 0,
			shares_count INTEGER NOT NULL DEFAULT 0,
			views_count INTEGER NOT NULL DEFAULT 0,
			clicks_count INTEGER NOT NULL DEFAULT 0,
			engagement_rate TEXT NOT NULL DEFAULT '0%',
			reach INTEGER NOT NULL DEFAULT 0,
			impressions INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_post_analytics_user ON post_analytics(user_id);
	`)
	return err
}

// Seed creates a zeroed analytics record for a freshly published post.
// It is a no-op if the post already has a record.
func (s *Store) Seed(userID, postID int64) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO post_analytics (user_id, post_id, updated_at) VALUES (?, ?, ?)`,
		userID, postID, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Get returns the analytics record for a post scoped to its owner.
func (s *Store) Get(postID, userID int64) (PostAnalytics, error) {
	row := s.db.QueryRow(`SELECT id, user_id, post_id, likes_count, comments_count, shares_count,
		views_count, clicks_count, engagement_rate, reach, impressions, updated_at
		FROM post_analytics WHERE post_id = ? AND user_id = ?`, postID, userID)
	return scanRecord(row)
}

// Update overwrites the counters for a post.
func (s *Store) Update(a PostAnalytics) error {
	res, err := s.db.Exec(`UPDATE post_analytics SET likes_count = ?, comments_count = ?, shares_count = ?,
		views_count = ?, clicks_count = ?, engagement_rate = ?, reach = ?, impressions = ?, updated_at = ?
		WHERE post_id = ? AND user_id = ?`,
		a.LikesCount, a.CommentsCount, a.SharesCount, a.ViewsCount, a.ClicksCount,
		a.EngagementRate, a.Reach, a.Impressions, time.Now().UTC().Format(time.RFC3339),
		a.PostID, a.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListForUser returns all analytics records for a user.
func (s *Store) ListForUser(userID int64) ([]PostAnalytics, error) {
	rows, err := s.db.Query(`SELECT id, user_id, post_id, likes_count, comments_count, shares_count,
		views_count, clicks_count, engagement_rate, reach, impressions, updated_at
		FROM post_analytics WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PostAnalytics
	for rows.Next() {
		a, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (PostAnalytics, error) {
	var a PostAnalytics
	var updated string
	err := row.Scan(&a.ID, &a.UserID, &a.PostID, &a.LikesCount, &a.CommentsCount, &a.SharesCount,
		&a.ViewsCount, &a.ClicksCount, &a.EngagementRate, &a.Reach, &a.Impressions, &updated)
	if err != nil {
		return PostAnalytics{}, err
	}
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return a, nil
}
