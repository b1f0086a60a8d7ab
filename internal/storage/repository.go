package storage

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glabrego/tidings/internal/feed"
)

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the SQLite database at path.
// WAL and foreign-key enforcement are set per connection through the DSN;
// the pool is capped at one connection since SQLite serializes writers
// anyway and a single writer avoids SQLITE_BUSY churn.
func NewRepository(path string) (*Repository, error) {
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &StorageError{Op: "open database", Err: err}
	}
	db.SetMaxOpenConns(1)
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS feeds (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  url TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  last_sync_at TEXT,
  last_sync_status TEXT NOT NULL DEFAULT '',
  collapsed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  feed_id INTEGER NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
  identity_key TEXT NOT NULL,
  title TEXT NOT NULL,
  link TEXT NOT NULL,
  published_at TEXT NOT NULL,
  summary TEXT NOT NULL DEFAULT '',
  full_content TEXT,
  read INTEGER NOT NULL DEFAULT 0,
  UNIQUE (feed_id, identity_key)
);
`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return &StorageError{Op: "create schema", Err: err}
	}
	return nil
}

// UpsertFeed inserts the URL as a new feed or returns the existing feed's
// id. New feeds start with the URL as their title until a sync supplies
// the real one.
func (r *Repository) UpsertFeed(ctx context.Context, url string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO feeds (url, title) VALUES (?1, ?1)
ON CONFLICT(url) DO UPDATE SET url = excluded.url
RETURNING id
`, url).Scan(&id)
	if err != nil {
		return 0, &StorageError{Op: "upsert feed", Err: err}
	}
	return id, nil
}

func (r *Repository) DeleteFeed(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id)
	if err != nil {
		return &StorageError{Op: "delete feed", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StorageError{Op: "delete feed", Err: err}
	}
	if affected == 0 {
		return &ReferentialError{Op: "delete feed", ID: id}
	}
	return nil
}

func (r *Repository) ListFeeds(ctx context.Context) ([]feed.Feed, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, url, title, last_sync_at, last_sync_status, collapsed
FROM feeds
ORDER BY title COLLATE NOCASE ASC, id ASC
`)
	if err != nil {
		return nil, &StorageError{Op: "query feeds", Err: err}
	}
	defer rows.Close()

	feeds := make([]feed.Feed, 0, 16)
	for rows.Next() {
		var f feed.Feed
		var syncedAt sql.NullString
		if err := rows.Scan(&f.ID, &f.URL, &f.Title, &syncedAt, &f.LastSyncStatus, &f.Collapsed); err != nil {
			return nil, &StorageError{Op: "scan feed", Err: err}
		}
		if syncedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, syncedAt.String)
			if err != nil {
				return nil, &StorageError{Op: "parse feed last_sync_at", Err: err}
			}
			f.LastSyncAt = &t
		}
		feeds = append(feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate feeds", Err: err}
	}
	return feeds, nil
}

// SetFeedMeta records the outcome of a sync attempt. An empty title keeps
// the stored one, so a failed fetch does not wipe a good title.
func (r *Repository) SetFeedMeta(ctx context.Context, id int64, title string, syncedAt time.Time, status string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE feeds
SET title = COALESCE(NULLIF(?2, ''), title), last_sync_at = ?3, last_sync_status = ?4
WHERE id = ?1
`, id, title, syncedAt.UTC().Format(time.RFC3339Nano), status)
	if err != nil {
		return &StorageError{Op: "set feed meta", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StorageError{Op: "set feed meta", Err: err}
	}
	if affected == 0 {
		return &ReferentialError{Op: "set feed meta", ID: id}
	}
	return nil
}

func (r *Repository) SetCollapsed(ctx context.Context, id int64, collapsed bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE feeds SET collapsed = ? WHERE id = ?`, collapsed, id)
	if err != nil {
		return &StorageError{Op: "set collapsed", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StorageError{Op: "set collapsed", Err: err}
	}
	if affected == 0 {
		return &ReferentialError{Op: "set collapsed", ID: id}
	}
	return nil
}

type UpsertStats struct {
	Inserted int
	Updated  int
}

// UpsertEntries reconciles one feed's parsed entries inside a single
// transaction. Conflicts on (feed_id, identity_key) update only the
// mutable columns; full_content and read are never touched, and the
// update counts a row only when something actually changed, so an
// unchanged re-sync reports {0, 0}. A nil parsed timestamp falls back to
// the insert time for new rows and leaves existing rows' timestamps
// alone.
func (r *Repository) UpsertEntries(ctx context.Context, feedID int64, entries []feed.ParsedEntry) (UpsertStats, error) {
	var stats UpsertStats

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, &StorageError{Op: "begin tx", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	var feedExists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM feeds WHERE id = ?)`, feedID).Scan(&feedExists); err != nil {
		return stats, &StorageError{Op: "check feed", Err: err}
	}
	if !feedExists {
		return stats, &ReferentialError{Op: "upsert entries", ID: feedID}
	}

	insert, err := tx.PrepareContext(ctx, `
INSERT INTO entries (feed_id, identity_key, title, link, published_at, summary)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(feed_id, identity_key) DO NOTHING
`)
	if err != nil {
		return stats, &StorageError{Op: "prepare insert", Err: err}
	}
	defer insert.Close()

	update, err := tx.PrepareContext(ctx, `
UPDATE entries
SET title = ?3, link = ?4, published_at = COALESCE(?5, published_at), summary = ?6
WHERE feed_id = ?1 AND identity_key = ?2
  AND (title <> ?3 OR link <> ?4 OR summary <> ?6
       OR (?5 IS NOT NULL AND published_at <> ?5))
`)
	if err != nil {
		return stats, &StorageError{Op: "prepare update", Err: err}
	}
	defer update.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, entry := range entries {
		var published any
		if entry.PublishedAt != nil {
			published = entry.PublishedAt.UTC().Format(time.RFC3339Nano)
		}
		insertPublished := published
		if insertPublished == nil {
			insertPublished = now
		}

		res, err := insert.ExecContext(ctx, feedID, entry.IdentityKey, entry.Title, entry.Link, insertPublished, entry.Summary)
		if err != nil {
			return stats, &StorageError{Op: "insert entry", Err: err}
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return stats, &StorageError{Op: "insert entry", Err: err}
		}
		if affected == 1 {
			stats.Inserted++
			continue
		}

		res, err = update.ExecContext(ctx, feedID, entry.IdentityKey, entry.Title, entry.Link, published, entry.Summary)
		if err != nil {
			return stats, &StorageError{Op: "update entry", Err: err}
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return stats, &StorageError{Op: "update entry", Err: err}
		}
		if affected == 1 {
			stats.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, &StorageError{Op: "commit tx", Err: err}
	}
	return stats, nil
}

const entryColumns = `id, feed_id, identity_key, title, link, published_at, summary, full_content, read`

func (r *Repository) GetEntry(ctx context.Context, id int64) (feed.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err != nil {
		return feed.Entry{}, &StorageError{Op: "get entry", Err: err}
	}
	return entry, nil
}

func (r *Repository) ListEntries(ctx context.Context, feedID int64) ([]feed.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+entryColumns+`
FROM entries
WHERE feed_id = ?
ORDER BY published_at DESC, id DESC
`, feedID)
	if err != nil {
		return nil, &StorageError{Op: "query entries", Err: err}
	}
	defer rows.Close()

	entries := make([]feed.Entry, 0, 32)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan entry", Err: err}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate entries", Err: err}
	}
	return entries, nil
}

func (r *Repository) SetFullContent(ctx context.Context, entryID int64, text string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE entries SET full_content = ? WHERE id = ?`, text, entryID)
	if err != nil {
		return &StorageError{Op: "set full content", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StorageError{Op: "set full content", Err: err}
	}
	if affected == 0 {
		return &ReferentialError{Op: "set full content", ID: entryID}
	}
	return nil
}

func (r *Repository) MarkRead(ctx context.Context, entryID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE entries SET read = 1 WHERE id = ?`, entryID)
	if err != nil {
		return &StorageError{Op: "mark read", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StorageError{Op: "mark read", Err: err}
	}
	if affected == 0 {
		return &ReferentialError{Op: "mark read", ID: entryID}
	}
	return nil
}

// DeleteEntriesOlderThan removes entries published before cutoff and
// reports how many were removed.
func (r *Repository) DeleteEntriesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE published_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, &StorageError{Op: "expire entries", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, &StorageError{Op: "expire entries", Err: err}
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (feed.Entry, error) {
	var entry feed.Entry
	var publishedAt string
	var fullContent sql.NullString
	if err := row.Scan(
		&entry.ID,
		&entry.FeedID,
		&entry.IdentityKey,
		&entry.Title,
		&entry.Link,
		&publishedAt,
		&entry.Summary,
		&fullContent,
		&entry.Read,
	); err != nil {
		return feed.Entry{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, publishedAt)
	if err != nil {
		return feed.Entry{}, err
	}
	entry.PublishedAt = parsed
	if fullContent.Valid {
		entry.FullContent = &fullContent.String
	}
	return entry, nil
}
