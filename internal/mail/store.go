package mail

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS emails (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id TEXT UNIQUE,
	from_address TEXT,
	subject TEXT,
	date TEXT,
	archived_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// Archive stores matched message envelopes in a local sqlite database.
// The message-id uniqueness means re-polling the same window never
// duplicates rows.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (creating if needed) the archive database at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Store inserts the messages, skipping any message-id already archived.
// Returns the number of newly archived messages.
func (a *Archive) Store(messages []Message) (int, error) {
	stored := 0
	for _, m := range messages {
		res, err := a.db.Exec(
			`INSERT OR IGNORE INTO emails (message_id, from_address, subject, date) VALUES (?, ?, ?, ?)`,
			m.ID, m.From, m.Subject, m.Date.Format(time.RFC3339),
		)
		if err != nil {
			return stored, fmt.Errorf("archiving %s: %w", m.ID, err)
		}
		n, err := res.RowsAffected()
		if err == nil {
			stored += int(n)
		}
	}
	return stored, nil
}

// Count returns the number of archived messages.
func (a *Archive) Count() (int, error) {
	var n int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM emails`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}
