package postpilot

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/postpilot/analytics"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

// Store wraps a SQLite database and provides CRUD operations for users and posts.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write, busy_timeout so writers wait instead of
	// returning SQLITE_BUSY, synchronous=NORMAL is safe with WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    hashed_password TEXT NOT NULL,
    headline TEXT NOT NULL DEFAULT '',
    industry TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT '',
    company TEXT NOT NULL DEFAULT '',
    brand_voice TEXT NOT NULL DEFAULT 'professional',
    linkedin_id TEXT NOT NULL DEFAULT '',
    linkedin_connected INTEGER NOT NULL DEFAULT 0,
    access_token TEXT NOT NULL DEFAULT '',
    token_expiry TEXT,
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id),
    content TEXT NOT NULL,
    hashtags TEXT NOT NULL DEFAULT ',,',
    topic TEXT NOT NULL DEFAULT '',
    post_type TEXT NOT NULL DEFAULT 'professional',
    status TEXT NOT NULL DEFAULT 'draft',
    prompt_used TEXT NOT NULL DEFAULT '',
    model TEXT NOT NULL DEFAULT '',
    engagement TEXT NOT NULL DEFAULT '{}',
    scheduled_time TEXT,
    published_time TEXT,
    linkedin_url TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_user_status ON posts(user_id, status);
`)
	return err
}

// CreateUser inserts a new user and returns it with the assigned id.
func (s *Store) CreateUser(u User) (User, error) {
	u.CreatedAt = time.Now().UTC()
	res, err := s.db.Exec(`INSERT INTO users (email, name, hashed_password, headline, industry, role, company, brand_voice, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.Name, u.HashedPassword, u.Headline, u.Industry, u.Role, u.Company, orDefault(u.BrandVoice, "professional"), u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return User{}, err
	}
	u.ID, err = res.LastInsertId()
	return u, err
}

// GetUserByEmail returns the user with the given email.
func (s *Store) GetUserByEmail(email string) (User, error) {
	return s.scanUser(s.db.QueryRow(userSelect+` WHERE email = ?`, email))
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(id int64) (User, error) {
	return s.scanUser(s.db.QueryRow(userSelect+` WHERE id = ?`, id))
}

const userSelect = `SELECT id, email, name, hashed_password, headline, industry, role, company, brand_voice, linkedin_id, linkedin_connected, access_token, token_expiry, created_at FROM users`

func (s *Store) scanUser(row *sql.Row) (User, error) {
	var u User
	var connected int
	var expiry sql.NullString
	var created string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.HashedPassword, &u.Headline, &u.Industry, &u.Role, &u.Company,
		&u.BrandVoice, &u.LinkedInID, &connected, &u.AccessToken, &expiry, &created)
	if err != nil {
		return User{}, err
	}
	u.Connected = connected == 1
	if expiry.Valid {
		if t, err := time.Parse(time.RFC3339, expiry.String); err == nil {
			u.TokenExpiry = &t
		}
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return u, nil
}

// UpdateProfile updates the editable profile fields of a user.
func (s *Store) UpdateProfile(u User) error {
	_, err := s.db.Exec(`UPDATE users SET name = ?, headline = ?, industry = ?, role = ?, company = ?, brand_voice = ? WHERE id = ?`,
		u.Name, u.Headline, u.Industry, u.Role, u.Company, u.BrandVoice, u.ID)
	return err
}

// SetConnection stores the LinkedIn connection state for a user. A nil
// expiry together with empty token and id clears the connection.
func (s *Store) SetConnection(userID int64, linkedinID, accessToken string, expiry *time.Time, connected bool) error {
	var exp interface{}
	if expiry != nil {
		exp = expiry.UTC().Format(time.RFC3339)
	}
	conn := 0
	if connected {
		conn = 1
	}
	_, err := s.db.Exec(`UPDATE users SET linkedin_id = ?, access_token = ?, token_expiry = ?, linkedin_connected = ? WHERE id = ?`,
		linkedinID, accessToken, exp, conn, userID)
	return err
}

// SyncLinkedInProfile overwrites profile fields fetched from LinkedIn,
// keeping existing values where LinkedIn returned nothing.
func (s *Store) SyncLinkedInProfile(userID int64, name, email, headline, industry string) error {
	_, err := s.db.Exec(`UPDATE users SET
		name = CASE WHEN ? != '' THEN ? ELSE name END,
		email = CASE WHEN ? != '' THEN ? ELSE email END,
		headline = CASE WHEN ? != '' THEN ? ELSE headline END,
		industry = CASE WHEN ? != '' THEN ? ELSE industry END
		WHERE id = ?`,
		name, name, email, email, headline, headline, industry, industry, userID)
	return err
}

// SavePost inserts a post and returns it with the assigned id.
func (s *Store) SavePost(p Post) (Post, error) {
	p.CreatedAt = time.Now().UTC()
	eng, err := json.Marshal(p.Engagement)
	if err != nil {
		return Post{}, err
	}
	res, err := s.db.Exec(`INSERT INTO posts (user_id, content, hashtags, topic, post_type, status, prompt_used, model, engagement, scheduled_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Content, joinHashtags(p.Hashtags), p.Topic, p.PostType, p.Status, p.PromptUsed, p.Model, string(eng),
		timePtr(p.ScheduledTime), p.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return Post{}, err
	}
	p.ID, err = res.LastInsertId()
	return p, err
}

// GetPost returns a post by id scoped to its owner.
func (s *Store) GetPost(id, userID int64) (Post, error) {
	row := s.db.QueryRow(postSelect+` WHERE id = ? AND user_id = ?`, id, userID)
	return scanPost(row)
}

// ListPosts returns the user's posts, optionally filtered by status,
// newest first.
func (s *Store) ListPosts(userID int64, status string) ([]Post, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.Query(postSelect+` WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	} else {
		rows, err = s.db.Query(postSelect+` WHERE user_id = ? AND status = ? ORDER BY created_at DESC, id DESC`, userID, status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// SchedulePost sets the scheduled time and flips the post to scheduled.
func (s *Store) SchedulePost(id, userID int64, at time.Time) error {
	res, err := s.db.Exec(`UPDATE posts SET scheduled_time = ?, status = ? WHERE id = ? AND user_id = ?`,
		at.UTC().Format(time.RFC3339), StatusScheduled, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPublished flips a post to published and records the LinkedIn URL.
func (s *Store) MarkPublished(id, userID int64, linkedinURL string) error {
	_, err := s.db.Exec(`UPDATE posts SET status = ?, published_time = ?, linkedin_url = ? WHERE id = ? AND user_id = ?`,
		StatusPublished, time.Now().UTC().Format(time.RFC3339), linkedinURL, id, userID)
	return err
}

// PostCounts summarizes the user's posts created since the given time,
// feeding the analytics dashboard.
func (s *Store) PostCounts(userID int64, since time.Time) (analytics.PostCounts, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM posts WHERE user_id = ? AND created_at >= ? GROUP BY status`,
		userID, since.UTC().Format(time.RFC3339))
	if err != nil {
		return analytics.PostCounts{}, err
	}
	defer rows.Close()

	var counts analytics.PostCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return analytics.PostCounts{}, err
		}
		counts.Total += n
		switch status {
		case StatusDraft:
			counts.Drafts += n
		case StatusScheduled:
			counts.Scheduled += n
		case StatusPublished:
			counts.Published += n
		}
	}
	return counts, rows.Err()
}

const postSelect = `SELECT id, user_id, content, hashtags, topic, post_type, status, prompt_used, model, engagement, scheduled_time, published_time, linkedin_url, created_at FROM posts`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (Post, error) {
	var p Post
	var hashtags, engagement, created string
	var scheduled, published sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.Content, &hashtags, &p.Topic, &p.PostType, &p.Status,
		&p.PromptUsed, &p.Model, &engagement, &scheduled, &published, &p.LinkedInURL, &created)
	if err != nil {
		return Post{}, err
	}
	p.Hashtags = ParseHashtags(hashtags)
	_ = json.Unmarshal([]byte(engagement), &p.Engagement)
	if scheduled.Valid {
		if t, err := time.Parse(time.RFC3339, scheduled.String); err == nil {
			p.ScheduledTime = &t
		}
	}
	if published.Valid {
		if t, err := time.Parse(time.RFC3339, published.String); err == nil {
			p.PublishedTime = &t
		}
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return p, nil
}

// joinHashtags stores hashtags as a comma-delimited string (e.g. ",go,web,"),
// lowercased, so lookups can use instr on the delimited form.
func joinHashtags(tags []string) string {
	normalized := make([]string, len(tags))
	for i, t := range tags {
		normalized[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(t, "#")))
	}
	return "," + strings.Join(normalized, ",") + ","
}

// ParseHashtags splits a comma-delimited hashtag string into a slice.
func ParseHashtags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func timePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
