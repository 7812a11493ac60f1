// Package storage persists items, summaries, bookmarks and settings in sqlite.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Batch tags for summaries.
const (
	BatchMorning = "morning"
	BatchEvening = "evening"
	BatchManual  = "manual"
)

type Item struct {
	ID        int64
	Source    string
	URL       string
	Title     string
	Content   string
	CreatedAt string
}

type Bookmark struct {
	BookmarkID   int64
	BookmarkedAt string
	ItemID       int64
	Source       string
	URL          string
	Title        string
	SummaryText  string
}

type SearchResult struct {
	ItemID      int64
	Source      string
	URL         string
	Title       string
	SummaryText string
	Batch       string
	CreatedAt   string
}

type Storage struct {
	db *sql.DB
}

func Open(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			url TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL,
			content TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id INTEGER NOT NULL,
			summary_text TEXT NOT NULL,
			batch TEXT CHECK(batch IN ('morning', 'evening', 'manual')),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS bookmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			item_id INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE,
			UNIQUE(user_id, item_id)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_source ON items(source)`,
		`CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_item_id ON summaries(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_batch ON summaries(batch)`,
		`CREATE INDEX IF NOT EXISTS idx_bookmarks_user_id ON bookmarks(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookmarks_item_id ON bookmarks(item_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return nil
}

// SaveItem inserts an item if its URL is unseen and returns the row id either
// way. The URL uniqueness constraint makes ingestion idempotent.
func (s *Storage) SaveItem(source, url, title, content string) (int64, error) {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO items (source, url, title, content) VALUES (?, ?, ?, ?)`,
		source, url, title, content,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save item: %w", err)
	}

	var id int64
	err = s.db.QueryRow(`SELECT id FROM items WHERE url = ?`, url).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to look up item id: %w", err)
	}
	return id, nil
}

func (s *Storage) GetItem(id int64) (*Item, error) {
	var item Item
	var content sql.NullString
	err := s.db.QueryRow(
		`SELECT id, source, url, title, content, created_at FROM items WHERE id = ?`,
		id,
	).Scan(&item.ID, &item.Source, &item.URL, &item.Title, &content, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	item.Content = content.String
	return &item, nil
}

func (s *Storage) SaveSummary(itemID int64, summaryText, batch string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO summaries (item_id, summary_text, batch) VALUES (?, ?, ?)`,
		itemID, summaryText, batch,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save summary: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get summary id: %w", err)
	}
	return id, nil
}

// LatestSummary returns the most recent summary text for an item, or "" when
// none exists.
func (s *Storage) LatestSummary(itemID int64) (string, error) {
	var text string
	err := s.db.QueryRow(
		`SELECT summary_text FROM summaries WHERE item_id = ? ORDER BY id DESC LIMIT 1`,
		itemID,
	).Scan(&text)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest summary: %w", err)
	}
	return text, nil
}

// TodaysSentURLs returns the raw URLs of every item with a summary created
// today, regardless of batch. Morning and evening digests stay disjoint within
// a calendar day.
func (s *Storage) TodaysSentURLs() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT a.url FROM items a
		 JOIN summaries s ON a.id = s.item_id
		 WHERE date(s.created_at) = date('now')`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query today's sent urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

// SaveBookmark records a (user, item) pair. It reports false when the pair
// already exists; that case is a no-op, not an error.
func (s *Storage) SaveBookmark(userID string, itemID int64) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO bookmarks (user_id, item_id) VALUES (?, ?)`,
		userID, itemID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to save bookmark: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark insert: %w", err)
	}
	return affected > 0, nil
}

func (s *Storage) Bookmarks(userID string) ([]Bookmark, error) {
	rows, err := s.db.Query(
		`SELECT b.id, b.created_at, a.id, a.source, a.url, a.title,
			COALESCE((SELECT s.summary_text FROM summaries s
				WHERE s.item_id = a.id ORDER BY s.id DESC LIMIT 1), '')
		 FROM bookmarks b
		 JOIN items a ON b.item_id = a.id
		 WHERE b.user_id = ?
		 ORDER BY b.created_at DESC, b.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(
			&b.BookmarkID, &b.BookmarkedAt, &b.ItemID,
			&b.Source, &b.URL, &b.Title, &b.SummaryText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}

	return bookmarks, rows.Err()
}

// SearchSummaries finds summaries whose item title or text contains the
// keyword, case-insensitive, most recent first.
func (s *Storage) SearchSummaries(keyword string) ([]SearchResult, error) {
	pattern := "%" + keyword + "%"
	rows, err := s.db.Query(
		`SELECT a.id, a.source, a.url, a.title, s.summary_text, s.batch, s.created_at
		 FROM summaries s
		 JOIN items a ON s.item_id = a.id
		 WHERE LOWER(a.title) LIKE LOWER(?) OR LOWER(s.summary_text) LIKE LOWER(?)
		 ORDER BY s.created_at DESC, s.id DESC`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search summaries: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(
			&r.ItemID, &r.Source, &r.URL, &r.Title,
			&r.SummaryText, &r.Batch, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// RecentBySource lists the most recent items from a source, excluding one item
// id. Backs the "related" keyboard action.
func (s *Storage) RecentBySource(source string, excludeID int64, limit int) ([]Item, error) {
	rows, err := s.db.Query(
		`SELECT id, source, url, title, COALESCE(content, ''), created_at
		 FROM items
		 WHERE source = ? AND id != ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		source, excludeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID, &item.Source, &item.URL,
			&item.Title, &item.Content, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (s *Storage) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

func (s *Storage) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

// ScheduleTimes returns the stored digest times, falling back to the supplied
// defaults when unset.
func (s *Storage) ScheduleTimes(defaultMorning, defaultEvening string) (string, string) {
	morning := defaultMorning
	evening := defaultEvening

	if v, err := s.GetSetting("morning_time"); err == nil && v != "" {
		morning = v
	}
	if v, err := s.GetSetting("evening_time"); err == nil && v != "" {
		evening = v
	}

	return morning, evening
}
