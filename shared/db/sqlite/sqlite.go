package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/dfryer1193/flog/shared/db"
	_ "modernc.org/sqlite"
)

const (
	DefaultPath = "./flog.db"
)

type SQLiteConfig struct {
	Path string
}

// SQLiteDB implements the db.Database interface for SQLite
type SQLiteDB struct {
	dbPath string
	db     *sql.DB
}

var _ db.Database = (*SQLiteDB)(nil)

// NewSQLiteDB creates a new SQLite database instance. An empty path falls back to DefaultPath.
func NewSQLiteDB(cfg SQLiteConfig) *SQLiteDB {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	return &SQLiteDB{
		dbPath: path,
	}
}

// pragmas are applied to every pooled connection through the DSN.
var pragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"cache_size(-64000)",
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	q.Set("_time_format", "sqlite")
	return path + "?" + q.Encode()
}

// Connect opens the database and migrates it to the latest schema.
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	conn, err := sql.Open("sqlite", dsn(s.dbPath))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.db = conn
	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

// Path is the file the database lives in.
func (s *SQLiteDB) Path() string {
	return s.dbPath
}
