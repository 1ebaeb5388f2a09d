package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists analytics events in SQLite.
type Store struct {
	db   *sql.DB
	salt string
}

// NewStore opens (or creates) the analytics database and loads the
// per-installation salt used for IP hashing.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
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
	if err := s.initSalt(); err != nil {
		return nil, fmt.Errorf("init salt: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			properties TEXT,
			ip_hash TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
		CREATE INDEX IF NOT EXISTS idx_events_name ON events(name);
		CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// initSalt loads or generates the persistent salt for IP hashing.
func (s *Store) initSalt() error {
	salt, err := s.GetSetting("hash_salt")
	if err != nil {
		return err
	}
	if salt == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		salt = hex.EncodeToString(b)
		if err := s.SetSetting("hash_salt", salt); err != nil {
			return err
		}
	}
	s.salt = salt
	return nil
}

// HashIP returns the salted hash of a client address. Raw addresses are
// never stored.
func (s *Store) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(s.salt + ip))
	return hex.EncodeToString(sum[:16])
}

// GetSetting retrieves a setting value by key. Returns empty string if not found.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// SaveBatch stores every event of a collect request under the given IP
// hash. Client timestamps outside a sane range fall back to the server
// clock.
func (s *Store) SaveBatch(req *CollectRequest, ipHash string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO events (session_id, name, category, properties, ip_hash, timestamp) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, ev := range req.Events {
		ts := now
		if ev.Timestamp > 0 {
			t := time.UnixMilli(ev.Timestamp).UTC()
			if t.After(now.Add(-24*time.Hour)) && t.Before(now.Add(time.Hour)) {
				ts = t
			}
		}
		var props []byte
		if len(ev.Properties) > 0 {
			props, _ = json.Marshal(ev.Properties)
		}
		if _, err := stmt.Exec(req.SessionID, ev.Name, ev.Category, string(props), ipHash, ts); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetStats returns aggregated statistics for the given time period.
func (s *Store) GetStats(from, to time.Time) (*Stats, error) {
	stats := &Stats{
		Period:      from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		TopEvents:   []EventStat{},
		DailyEvents: []DailyStat{},
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events WHERE timestamp BETWEEN ? AND ?`, from, to).
		Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT session_id) FROM events WHERE timestamp BETWEEN ? AND ?`, from, to).
		Scan(&stats.UniqueSessions); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT name, COUNT(*) AS c FROM events
		WHERE timestamp BETWEEN ? AND ?
		GROUP BY name ORDER BY c DESC LIMIT 10`, from, to)
	if err != nil {
		return nil, fmt.Errorf("top events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var es EventStat
		if err := rows.Scan(&es.Name, &es.Count); err != nil {
			return nil, err
		}
		stats.TopEvents = append(stats.TopEvents, es)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	daily, err := s.db.Query(`
		SELECT date(timestamp) AS d, COUNT(*) FROM events
		WHERE timestamp BETWEEN ? AND ?
		GROUP BY d ORDER BY d`, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily events: %w", err)
	}
	defer daily.Close()
	for daily.Next() {
		var ds DailyStat
		if err := daily.Scan(&ds.Date, &ds.Count); err != nil {
			return nil, err
		}
		stats.DailyEvents = append(stats.DailyEvents, ds)
	}
	return stats, daily.Err()
}

// DeleteOlderThan removes events past the retention horizon and returns
// the number deleted.
func (s *Store) DeleteOlderThan(retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	res, err := s.db.Exec(`DELETE FROM events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartCleanupScheduler periodically prunes events older than
// retentionDays. Returns a stop function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				_, _ = s.DeleteOlderThan(retentionDays)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
