package sqlite

import (
	"context"
	"database/sql"

	"github.com/elmortem/assetfinder/data"
	"github.com/elmortem/assetfinder/store"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (CGO_ENABLED=0 compatible)
)

// SQLiteStore persists the cache in a SQLite database. Each reference
// path is one row, so external tooling can query the index directly
// with SQL. Saves replace the whole dataset inside one transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed store. The dbPath can be
// ":memory:" for an in-memory database or a file path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode keeps Load usable while a Save transaction is open
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initSchema creates the database schema.
func (ss *SQLiteStore) initSchema() error {
	schema := `
	-- One value per save-wide attribute (rebuild timestamps)
	CREATE TABLE IF NOT EXISTS af_meta (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);

	-- One row per (target, processor, source, path)
	CREATE TABLE IF NOT EXISTS af_entries (
		target TEXT NOT NULL,
		processor TEXT NOT NULL,
		source TEXT NOT NULL,
		path TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_af_entries_target ON af_entries(target);

	-- Last-indexed state per unit
	CREATE TABLE IF NOT EXISTS af_fingerprints (
		identity TEXT PRIMARY KEY,
		fingerprint INTEGER NOT NULL
	);
	`

	_, err := ss.db.Exec(schema)
	return err
}

// Name returns the identifier name defined for this store.
func (*SQLiteStore) Name() string {
	return "sqlite"
}

// Open is part of the lifecycle behaviour and gets called before the first use.
func (ss *SQLiteStore) Open(ctx context.Context) error {
	return ss.db.PingContext(ctx)
}

// Close is part of the lifecycle behaviour and gets called when the store is no longer needed.
func (ss *SQLiteStore) Close(ctx context.Context) error {
	return ss.db.Close()
}

func (ss *SQLiteStore) Load(ctx context.Context) (*store.Container, error) {
	var saved int
	err := ss.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM af_meta WHERE key = 'lastRebuildTime'").Scan(&saved)
	if err != nil {
		return nil, err
	}
	if saved == 0 {
		return nil, store.ErrNotExist
	}

	c := &store.Container{}
	rows, err := ss.db.QueryContext(ctx, "SELECT key, value FROM af_meta")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return nil, err
		}
		switch key {
		case "lastRebuildTime":
			c.LastRebuildTime = value
		case "lastRebuildDuration":
			c.LastRebuildDuration = value
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := ss.loadEntries(ctx, c); err != nil {
		return nil, err
	}

	rows, err = ss.db.QueryContext(ctx,
		"SELECT identity, fingerprint FROM af_fingerprints ORDER BY identity")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var fp store.Fingerprint
		if err := rows.Scan(&fp.Identity, &fp.Fingerprint); err != nil {
			return nil, err
		}
		c.Fingerprints = append(c.Fingerprints, fp)
	}
	return c, rows.Err()
}

// loadEntries rebuilds the nested container shape from the flat rows.
// The ordering clause makes consecutive rows share target, processor and
// source runs, so grouping needs no intermediate maps.
func (ss *SQLiteStore) loadEntries(ctx context.Context, c *store.Container) error {
	rows, err := ss.db.QueryContext(ctx, `
		SELECT target, processor, source, path FROM af_entries
		ORDER BY target, processor, source, path
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var target, processor, source, path string
		if err := rows.Scan(&target, &processor, &source, &path); err != nil {
			return err
		}

		if len(c.Entries) == 0 || c.Entries[len(c.Entries)-1].Identity != data.ID(target) {
			c.Entries = append(c.Entries, store.Entry{Identity: data.ID(target)})
		}
		entry := &c.Entries[len(c.Entries)-1]

		if len(entry.Groups) == 0 || entry.Groups[len(entry.Groups)-1].ProcessorID != processor {
			entry.Groups = append(entry.Groups, store.Group{ProcessorID: processor})
		}
		group := &entry.Groups[len(entry.Groups)-1]

		if len(group.References) == 0 || group.References[len(group.References)-1].Identity != data.ID(source) {
			group.References = append(group.References, store.Reference{Identity: data.ID(source)})
		}
		ref := &group.References[len(group.References)-1]
		ref.Paths = append(ref.Paths, path)
	}
	return rows.Err()
}

func (ss *SQLiteStore) Save(ctx context.Context, c *store.Container) error {
	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM af_meta",
		"DELETE FROM af_entries",
		"DELETE FROM af_fingerprints",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO af_meta (key, value) VALUES ('lastRebuildTime', ?), ('lastRebuildDuration', ?)",
		c.LastRebuildTime, c.LastRebuildDuration); err != nil {
		return err
	}

	insert, err := tx.PrepareContext(ctx,
		"INSERT INTO af_entries (target, processor, source, path) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer insert.Close()

	for _, entry := range c.Entries {
		for _, group := range entry.Groups {
			for _, ref := range group.References {
				for _, path := range ref.Paths {
					if _, err := insert.ExecContext(ctx,
						string(entry.Identity), group.ProcessorID, string(ref.Identity), path); err != nil {
						return err
					}
				}
			}
		}
	}

	for _, fp := range c.Fingerprints {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO af_fingerprints (identity, fingerprint) VALUES (?, ?)",
			string(fp.Identity), fp.Fingerprint); err != nil {
			return err
		}
	}

	return tx.Commit()
}
