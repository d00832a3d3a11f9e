package sqlite

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewSQLiteDB(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "explicit path", path: "/tmp/explicit.db", want: "/tmp/explicit.db"},
		{name: "default path", want: DefaultPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database := NewSQLiteDB(SQLiteConfig{Path: tt.path})
			if database.Path() != tt.want {
				t.Errorf("Path() = %v, want %v", database.Path(), tt.want)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	got := dsn("/data/flog.db")
	if !strings.HasPrefix(got, "/data/flog.db?") {
		t.Errorf("dsn() = %q, want path prefix", got)
	}
	for _, want := range []string{"foreign_keys%281%29", "busy_timeout%285000%29", "_time_format=sqlite"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn() = %q, missing %q", got, want)
		}
	}
}

func connect(t *testing.T) *SQLiteDB {
	t.Helper()
	database := NewSQLiteDB(SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSQLiteDB_Connect(t *testing.T) {
	database := connect(t)

	if database.DB() == nil {
		t.Error("DB() returned nil after Connect()")
	}

	if err := database.Connect(); err == nil {
		t.Error("Connect() should return error when already connected")
	}
}

func TestSQLiteDB_Close(t *testing.T) {
	database := NewSQLiteDB(SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")})

	if err := database.Close(); err != nil {
		t.Errorf("Close() without Connect error = %v", err)
	}

	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := database.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if database.DB() != nil {
		t.Error("DB() should return nil after Close()")
	}
}

func TestSQLiteDB_Reconnect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	first := NewSQLiteDB(SQLiteConfig{Path: path})
	if err := first.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Migrations are already applied; a second connect must not fail.
	second := NewSQLiteDB(SQLiteConfig{Path: path})
	if err := second.Connect(); err != nil {
		t.Fatalf("second Connect() error = %v", err)
	}
	defer second.Close()
}

func TestMigrations_Schema(t *testing.T) {
	conn := connect(t).DB()

	for _, table := range []string{"schema_migrations", "posts", "comments", "platform"} {
		var count int
		err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to check table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("table %s not created", table)
		}
	}

	var version int
	var dirty bool
	if err := conn.QueryRow("SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty); err != nil {
		t.Fatalf("Failed to read schema version: %v", err)
	}
	if version != 3 || dirty {
		t.Errorf("schema version = %d (dirty %v), want 3 clean", version, dirty)
	}
}

func TestSQLiteDB_SchemaVersion(t *testing.T) {
	if _, _, err := NewSQLiteDB(SQLiteConfig{}).SchemaVersion(); err == nil {
		t.Error("SchemaVersion() before Connect error = nil, want error")
	}

	version, dirty, err := connect(t).SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != 3 || dirty {
		t.Errorf("SchemaVersion() = %d (dirty %v), want 3 clean", version, dirty)
	}
}

func TestMigrations_Constraints(t *testing.T) {
	conn := connect(t).DB()
	now := time.Now().UTC()

	_, err := conn.Exec(`INSERT INTO posts (slug, title, content, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"bad", "Bad", "x", "archived", now, now)
	if err == nil {
		t.Error("expected CHECK constraint to reject unknown status")
	}

	res, err := conn.Exec(`INSERT INTO posts (slug, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"a", "A", "x", now, now)
	if err != nil {
		t.Fatalf("insert post: %v", err)
	}
	postID, _ := res.LastInsertId()

	_, err = conn.Exec(`INSERT INTO comments (post_id, author_name, author_email, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		postID, "ann", "ann@example.com", "hi", now, now)
	if err != nil {
		t.Fatalf("insert comment: %v", err)
	}

	if _, err := conn.Exec(`DELETE FROM posts WHERE id = ?`, postID); err != nil {
		t.Fatalf("delete post: %v", err)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM comments`).Scan(&count); err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if count != 0 {
		t.Errorf("comments after post delete = %d, want 0 (cascade)", count)
	}
}
