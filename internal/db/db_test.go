package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	// Use temp directory for test isolation
	tmpDir := t.TempDir()

	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	// Verify database file was created
	dbPath := filepath.Join(tmpDir, "sidenote.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}

	// Verify WAL mode is active
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	// Verify schema was created by checking for records table
	var tableName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='records'").Scan(&tableName)
	if err != nil {
		t.Fatalf("records table not found: %v", err)
	}
	if tableName != "records" {
		t.Errorf("table name = %s, want records", tableName)
	}
}

func TestInit_CreatesDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	baseDir := filepath.Join(tmpDir, "nested", "path", ".sidenote")

	db, err := Init(baseDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	// Verify nested directories were created
	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		t.Errorf("base directory not created at %s", baseDir)
	}
}

func TestUserVersion(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	// After Init, version should be CurrentSchemaVersion (migration ran)
	version, err := GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version after Init = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestInit_IdentityHashColumn(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	present, err := columnExists(db, "records", "identity_hash")
	if err != nil {
		t.Fatalf("columnExists() error = %v", err)
	}
	if !present {
		t.Error("identity_hash column missing after Init")
	}

	// Index on the column exists
	var indexName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='idx_records_identity_hash'").Scan(&indexName)
	if err != nil {
		t.Fatalf("identity_hash index not found: %v", err)
	}
}

// Stores created before identity_hash existed must gain the column and
// its index on the next startup, in that order, without data loss.
func TestMigrate_AddsIdentityHashToLegacyStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "sidenote.db")

	// Build a legacy store by hand: v1 table, no identity_hash
	legacy, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE records (
	  id                 TEXT PRIMARY KEY,
	  path               TEXT NOT NULL,
	  identity_reference BLOB,
	  title              TEXT NOT NULL,
	  body               TEXT NOT NULL,
	  created_at         INTEGER NOT NULL,
	  modified_at        INTEGER NOT NULL
	);
	CREATE INDEX idx_records_path ON records(path);
	PRAGMA user_version=1;
	`
	if _, err := legacy.Exec(schema); err != nil {
		t.Fatalf("legacy schema setup failed: %v", err)
	}
	if _, err := legacy.Exec(
		`INSERT INTO records (id, path, title, body, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"01LEGACY", "/tmp/old.txt", "old", "content", 100, 100,
	); err != nil {
		t.Fatalf("legacy insert failed: %v", err)
	}
	legacy.Close()

	// Init runs migrations against the legacy file
	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() on legacy store error = %v", err)
	}
	defer db.Close()

	present, err := columnExists(db, "records", "identity_hash")
	if err != nil {
		t.Fatal(err)
	}
	if !present {
		t.Fatal("identity_hash column not added to legacy store")
	}

	// Existing row survived with a NULL identity_hash
	var hash sql.NullString
	if err := db.QueryRow(`SELECT identity_hash FROM records WHERE id = '01LEGACY'`).Scan(&hash); err != nil {
		t.Fatalf("legacy row lost: %v", err)
	}
	if hash.Valid {
		t.Errorf("identity_hash = %q, want NULL for legacy row", hash.String)
	}
}

// The additive migration runs on every startup and must be a no-op
// when the column is already present.
func TestMigrate_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := Migrate(db); err != nil {
			t.Fatalf("Migrate() run %d error = %v", i+2, err)
		}
	}
	db.Close()

	// Reopening (as a process restart would) also re-runs it
	db2, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	db2.Close()
}
