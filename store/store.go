// Package store keeps a journal of global definitions in SQLite so a session
// can be rebuilt after a restart.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	sexp "github.com/rphilander/sexp/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS definitions (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	session    TEXT NOT NULL,
	name       TEXT NOT NULL,
	source     TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS definitions_session ON definitions(session, seq);`

// Store is a journal for one session inside a shared database file.
type Store struct {
	db      *sql.DB
	path    string
	session string
	log     *logrus.Entry
}

var _ sexp.Journal = (*Store)(nil)

// SessionInfo summarises one session's journal.
type SessionInfo struct {
	ID          string
	Definitions int
	LastWrite   string
}

// Open opens (or creates) the database at path and scopes the store to
// session.
func Open(path, session string) (*Store, error) {
	if session == "" {
		return nil, fmt.Errorf("open %s: missing session id", path)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s := &Store{
		db:      db,
		path:    path,
		session: session,
		log:     logrus.WithFields(logrus.Fields{"component": "store", "db": path, "session": session}),
	}
	s.log.Debug("opened journal")
	return s, nil
}

func (s *Store) Session() string { return s.session }

// Append records name = source for the session.
func (s *Store) Append(name, source string) error {
	_, err := s.db.Exec(
		`INSERT INTO definitions (session, name, source, created_at) VALUES (?, ?, ?, ?)`,
		s.session, name, source, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append %s: %w", name, err)
	}
	return nil
}

// Remove forgets every journaled definition of name.
func (s *Store) Remove(name string) error {
	if _, err := s.db.Exec(`DELETE FROM definitions WHERE session = ? AND name = ?`, s.session, name); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Clear drops the session's whole journal.
func (s *Store) Clear() error {
	res, err := s.db.Exec(`DELETE FROM definitions WHERE session = ?`, s.session)
	if err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	n, _ := res.RowsAffected()
	s.log.WithField("rows", n).Info("cleared journal")
	return nil
}

// Load returns the session's definitions in the order they were made.
// Replaying them in order leaves the latest definition of each name bound.
func (s *Store) Load() ([]sexp.Definition, error) {
	rows, err := s.db.Query(`SELECT name, source FROM definitions WHERE session = ? ORDER BY seq`, s.session)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer rows.Close()

	var defs []sexp.Definition
	for rows.Next() {
		var d sexp.Definition
		if err := rows.Scan(&d.Name, &d.Source); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return defs, nil
}

// Sessions lists every session with a journal in the database, most
// recently written first.
func (s *Store) Sessions() ([]SessionInfo, error) {
	rows, err := s.db.Query(`
		SELECT session, COUNT(*), MAX(created_at)
		FROM definitions
		GROUP BY session
		ORDER BY MAX(created_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.Definitions, &info.LastWrite); err != nil {
			return nil, fmt.Errorf("sessions: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	s.log.Debug("closing journal")
	return s.db.Close()
}
