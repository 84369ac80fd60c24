// Package store persists content items, digests and profiles in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"curator/internal/core"
)

// Store is the SQLite-backed persistence layer.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "curator.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *Store) initialize() error {
	itemsTable := `
	CREATE TABLE IF NOT EXISTS content_items (
		id TEXT PRIMARY KEY,
		source_kind TEXT NOT NULL,
		source_local_id TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT,
		url TEXT NOT NULL,
		category TEXT,
		published_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	);`

	// Digests are keyed per profile so one profile's scoring pass never
	// collides with another's.
	digestsTable := `
	CREATE TABLE IF NOT EXISTS digests (
		id TEXT NOT NULL,
		profile_id TEXT NOT NULL,
		source_kind TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		summary TEXT NOT NULL,
		relevance_score REAL,
		reasoning TEXT,
		category TEXT,
		created_at DATETIME NOT NULL,
		sent_at DATETIME,
		PRIMARY KEY (id, profile_id)
	);`

	profilesTable := `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		title TEXT,
		background TEXT,
		interests TEXT,
		preferences TEXT,
		expertise_level TEXT,
		active INTEGER NOT NULL DEFAULT 1
	);`

	for _, table := range []string{itemsTable, digestsTable, profilesTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveItems inserts normalized content items, ignoring ids already present.
// Returns the number of newly inserted rows.
func (s *Store) SaveItems(items []core.ContentItem) (int, error) {
	query := `
	INSERT OR IGNORE INTO content_items
	(id, source_kind, source_local_id, title, body, url, category, published_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	inserted := 0
	for _, item := range items {
		res, err := s.db.Exec(query,
			item.CompositeID(),
			item.SourceKind,
			item.SourceLocalID,
			item.Title,
			item.Body,
			item.URL,
			item.Category,
			item.PublishedAt.UTC(),
			time.Now().UTC(),
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to save item %s: %w", item.CompositeID(), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	return inserted, nil
}

// RecentItems returns content items published at or after since, newest
// first.
func (s *Store) RecentItems(since time.Time) ([]core.ContentItem, error) {
	query := `
	SELECT source_kind, source_local_id, title, body, url, category, published_at
	FROM content_items
	WHERE published_at >= ?
	ORDER BY published_at DESC`

	rows, err := s.db.Query(query, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []core.ContentItem
	for rows.Next() {
		var item core.ContentItem
		var published time.Time
		if err := rows.Scan(
			&item.SourceKind,
			&item.SourceLocalID,
			&item.Title,
			&item.Body,
			&item.URL,
			&item.Category,
			&published,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.PublishedAt = published.UTC()
		items = append(items, item)
	}

	return items, rows.Err()
}

// CreateDigestIfAbsent persists a digest unless one already exists for the
// same (id, profile) pair. Returns nil without error on a duplicate, which
// callers treat as "already processed".
func (s *Store) CreateDigestIfAbsent(d core.Digest) (*core.Digest, error) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT OR IGNORE INTO digests
	(id, profile_id, source_kind, url, title, summary, relevance_score, reasoning, category, created_at, sent_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`

	var score any
	if d.RelevanceScore != nil {
		score = *d.RelevanceScore
	}

	res, err := s.db.Exec(query,
		d.ID,
		d.ProfileID,
		d.SourceKind,
		d.URL,
		d.Title,
		d.Summary,
		score,
		d.Reasoning,
		d.Category,
		d.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest %s: %w", d.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check digest insert: %w", err)
	}
	if n == 0 {
		return nil, nil // duplicate
	}

	return &d, nil
}

// RecentDigests returns a profile's digests created at or after since,
// newest first. With excludeSent, rows whose sent_at is set are skipped so
// that unsent digests remain eligible for the next delivery attempt.
func (s *Store) RecentDigests(profileID string, since time.Time, excludeSent bool) ([]core.Digest, error) {
	query := `
	SELECT id, profile_id, source_kind, url, title, summary, relevance_score, reasoning, category, created_at, sent_at
	FROM digests
	WHERE profile_id = ? AND created_at >= ?`
	if excludeSent {
		query += ` AND sent_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, profileID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query digests: %w", err)
	}
	defer rows.Close()

	var digests []core.Digest
	for rows.Next() {
		d, err := scanDigest(rows)
		if err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}

	return digests, rows.Err()
}

// DigestIDsInWindow returns the set of digest ids a profile already has in
// the window, sent or not. Used as the dedup set for a scoring pass.
func (s *Store) DigestIDsInWindow(profileID string, since time.Time) (map[string]struct{}, error) {
	rows, err := s.db.Query(
		`SELECT id FROM digests WHERE profile_id = ? AND created_at >= ?`,
		profileID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query digest ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan digest id: %w", err)
		}
		ids[id] = struct{}{}
	}

	return ids, rows.Err()
}

// MarkSent stamps sent_at on the given digests. Rows already stamped are
// left untouched so sent_at is set at most once. Returns the number of rows
// updated.
func (s *Store) MarkSent(profileID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+2)
	args = append(args, time.Now().UTC(), profileID)
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(
		`UPDATE digests SET sent_at = ? WHERE profile_id = ? AND id IN (%s) AND sent_at IS NULL`,
		placeholders,
	)

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark digests sent: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count marked digests: %w", err)
	}

	return int(n), nil
}

// SaveProfile inserts or replaces a profile.
func (s *Store) SaveProfile(p core.Profile) error {
	interests, _ := json.Marshal(p.Interests)
	preferences, _ := json.Marshal(p.Preferences)

	query := `
	INSERT OR REPLACE INTO profiles
	(id, name, email, title, background, interests, preferences, expertise_level, active)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		p.ID, p.Name, p.Email, p.Title, p.Background,
		string(interests), string(preferences), p.ExpertiseLevel, boolToInt(p.Active),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.ID, err)
	}

	return nil
}

// SeedProfile inserts a profile only if its id is not present yet.
func (s *Store) SeedProfile(p core.Profile) error {
	existing, err := s.GetProfile(p.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.SaveProfile(p)
}

// ListActiveProfiles returns every profile marked active.
func (s *Store) ListActiveProfiles() ([]core.Profile, error) {
	rows, err := s.db.Query(
		`SELECT id, name, email, title, background, interests, preferences, expertise_level, active
		 FROM profiles WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []core.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// GetProfile returns the profile with the given id, or nil when absent.
func (s *Store) GetProfile(id string) (*core.Profile, error) {
	row := s.db.QueryRow(
		`SELECT id, name, email, title, background, interests, preferences, expertise_level, active
		 FROM profiles WHERE id = ?`, id)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDigest(row rowScanner) (core.Digest, error) {
	var d core.Digest
	var score sql.NullFloat64
	var sentAt sql.NullTime
	var createdAt time.Time

	err := row.Scan(
		&d.ID, &d.ProfileID, &d.SourceKind, &d.URL, &d.Title, &d.Summary,
		&score, &d.Reasoning, &d.Category, &createdAt, &sentAt,
	)
	if err != nil {
		return core.Digest{}, fmt.Errorf("failed to scan digest: %w", err)
	}

	d.CreatedAt = createdAt.UTC()
	if score.Valid {
		v := score.Float64
		d.RelevanceScore = &v
	}
	if sentAt.Valid {
		t := sentAt.Time.UTC()
		d.SentAt = &t
	}

	return d, nil
}

func scanProfile(row rowScanner) (core.Profile, error) {
	var p core.Profile
	var interests, preferences string
	var active int

	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Title, &p.Background,
		&interests, &preferences, &p.ExpertiseLevel, &active,
	)
	if err != nil {
		return core.Profile{}, err
	}

	if interests != "" {
		_ = json.Unmarshal([]byte(interests), &p.Interests)
	}
	if preferences != "" {
		_ = json.Unmarshal([]byte(preferences), &p.Preferences)
	}
	p.Active = active != 0

	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
