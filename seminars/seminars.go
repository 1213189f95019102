package seminars

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Custom errors for seminar, section and topic operations
var (
	ErrSeminarNotFound    = errors.New("seminar not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrTopicNotFound      = errors.New("topic not found")
	ErrDuplicateSection   = errors.New("section with this name already exists in the seminar")
	ErrDuplicateTopic     = errors.New("topic with this name already exists in the section")
	ErrEmptyName          = errors.New("name can't be blank")
	ErrNameTooLong        = errors.New("name is too long (maximum is 255 characters)")
	ErrInvalidSourceType  = errors.New("source_type must be html or feed")
	ErrParentOutOfSection = errors.New("parent topic belongs to another section")
	ErrTopicCycle         = errors.New("parent topic is the topic itself or one of its subtopics")
)

// MaxNameLength is the longest section or topic name the store accepts,
// counted in runes.
const MaxNameLength = 255

// Source types a seminar's agenda can be fetched from.
const (
	SourceTypeHTML = "html"
	SourceTypeFeed = "feed"
)

// Store keeps seminars, their sections and their topics in SQLite.
type Store struct {
	db *sql.DB
}

// Seminar is the event an agenda belongs to. The import engine only uses
// its ID as a foreign key; the remaining fields tell the orchestrator where
// the agenda lives and which dialect it is written in.
type Seminar struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	SourceURL      string     `json:"source_url,omitempty"`
	SourceType     string     `json:"source_type"` // "html" or "feed"
	Dialect        string     `json:"dialect"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastImportedAt *time.Time `json:"last_imported_at,omitempty"`
}

// SeminarUpdate represents fields that can be updated on a seminar.
type SeminarUpdate struct {
	Name       *string
	SourceURL  *string
	SourceType *string
	Dialect    *string
}

// NewStore opens (or creates) the database at dbPath and makes sure the
// schema exists. Foreign keys are switched on so that deleting a seminar
// removes its sections and topics.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", withForeignKeys(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func withForeignKeys(dbPath string) string {
	if strings.Contains(dbPath, "_foreign_keys") {
		return dbPath
	}
	if strings.Contains(dbPath, "?") {
		return dbPath + "&_foreign_keys=on"
	}
	return dbPath + "?_foreign_keys=on"
}

// initSchema creates the seminar, section and topic tables if they don't
// exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS seminars (
		seminar_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		source_url TEXT,
		source_type TEXT NOT NULL DEFAULT 'html',
		dialect TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		last_imported_at TEXT
	);

	CREATE TABLE IF NOT EXISTS sections (
		section_id TEXT PRIMARY KEY,
		seminar_id TEXT NOT NULL REFERENCES seminars(seminar_id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		allow_public_submissions INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		UNIQUE (seminar_id, name)
	);

	CREATE TABLE IF NOT EXISTS topics (
		topic_id TEXT PRIMARY KEY,
		section_id TEXT NOT NULL REFERENCES sections(section_id) ON DELETE CASCADE,
		parent_topic_id TEXT REFERENCES topics(topic_id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		link TEXT,
		votable INTEGER NOT NULL DEFAULT 1,
		payable INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		UNIQUE (section_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_topics_parent ON topics(parent_topic_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSeminar creates a new seminar.
func (s *Store) CreateSeminar(name, sourceURL, sourceType, dialect string) (*Seminar, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if sourceType == "" {
		sourceType = SourceTypeHTML
	}
	if err := validateSourceType(sourceType); err != nil {
		return nil, err
	}

	now := time.Now()
	seminar := &Seminar{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(name),
		SourceURL:  sourceURL,
		SourceType: sourceType,
		Dialect:    dialect,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	query := `
		INSERT INTO seminars (
			seminar_id, name, source_url, source_type, dialect,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		seminar.ID.String(),
		seminar.Name,
		nullString(seminar.SourceURL),
		seminar.SourceType,
		seminar.Dialect,
		formatTime(&seminar.CreatedAt),
		formatTime(&seminar.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert seminar: %w", err)
	}

	return seminar, nil
}

// GetSeminar retrieves a seminar by ID.
func (s *Store) GetSeminar(id uuid.UUID) (*Seminar, error) {
	query := `
		SELECT seminar_id, name, source_url, source_type, dialect,
		       created_at, updated_at, last_imported_at
		FROM seminars
		WHERE seminar_id = ?
	`

	seminar, err := scanSeminar(s.db.QueryRow(query, id.String()))
	if err == sql.ErrNoRows {
		return nil, ErrSeminarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query seminar: %w", err)
	}

	return seminar, nil
}

// ListSeminars lists all seminars, newest first.
func (s *Store) ListSeminars() ([]Seminar, error) {
	query := `
		SELECT seminar_id, name, source_url, source_type, dialect,
		       created_at, updated_at, last_imported_at
		FROM seminars
		ORDER BY created_at DESC, rowid DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query seminars: %w", err)
	}
	defer rows.Close()

	var seminars []Seminar
	for rows.Next() {
		seminar, err := scanSeminar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seminar: %w", err)
		}
		seminars = append(seminars, *seminar)
	}

	return seminars, rows.Err()
}

// UpdateSeminar updates a seminar with the provided fields.
func (s *Store) UpdateSeminar(id uuid.UUID, update SeminarUpdate) error {
	setClauses := []string{"updated_at = ?"}
	now := time.Now()
	args := []any{formatTime(&now)}

	if update.Name != nil {
		if err := validateName(*update.Name); err != nil {
			return err
		}
		setClauses = append(setClauses, "name = ?")
		args = append(args, strings.TrimSpace(*update.Name))
	}
	if update.SourceURL != nil {
		setClauses = append(setClauses, "source_url = ?")
		args = append(args, nullString(*update.SourceURL))
	}
	if update.SourceType != nil {
		if err := validateSourceType(*update.SourceType); err != nil {
			return err
		}
		setClauses = append(setClauses, "source_type = ?")
		args = append(args, *update.SourceType)
	}
	if update.Dialect != nil {
		setClauses = append(setClauses, "dialect = ?")
		args = append(args, *update.Dialect)
	}

	args = append(args, id.String())
	query := fmt.Sprintf("UPDATE seminars SET %s WHERE seminar_id = ?",
		strings.Join(setClauses, ", "))

	return s.execOne(query, ErrSeminarNotFound, args...)
}

// MarkImported records the time of the latest import run for a seminar.
func (s *Store) MarkImported(id uuid.UUID, at time.Time) error {
	return s.execOne("UPDATE seminars SET last_imported_at = ? WHERE seminar_id = ?",
		ErrSeminarNotFound, formatTime(&at), id.String())
}

// DeleteSeminar deletes a seminar together with its sections and topics.
func (s *Store) DeleteSeminar(id uuid.UUID) error {
	return s.execOne("DELETE FROM seminars WHERE seminar_id = ?", ErrSeminarNotFound, id.String())
}

// execOne runs a statement that must touch exactly one row, returning
// notFound when it touched none.
func (s *Store) execOne(query string, notFound error, args ...any) error {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeminar(row rowScanner) (*Seminar, error) {
	var idStr, name, sourceType, dialect, createdAtStr, updatedAtStr string
	var sourceURL, lastImportedAtStr sql.NullString

	err := row.Scan(
		&idStr, &name, &sourceURL, &sourceType, &dialect,
		&createdAtStr, &updatedAtStr, &lastImportedAtStr,
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse seminar ID: %w", err)
	}

	seminar := &Seminar{
		ID:         id,
		Name:       name,
		SourceURL:  sourceURL.String,
		SourceType: sourceType,
		Dialect:    dialect,
		CreatedAt:  parseTime(createdAtStr),
		UpdatedAt:  parseTime(updatedAtStr),
	}
	if lastImportedAtStr.Valid {
		t := parseTime(lastImportedAtStr.String)
		seminar.LastImportedAt = &t
	}

	return seminar, nil
}

// validateName applies the persistence-level rules shared by seminars,
// sections and topics.
func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func validateSourceType(sourceType string) error {
	if sourceType != SourceTypeHTML && sourceType != SourceTypeFeed {
		return ErrInvalidSourceType
	}
	return nil
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint") ||
		strings.Contains(err.Error(), "unique constraint")
}

// isForeignKeyViolation reports whether err came from a FOREIGN KEY
// constraint.
func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint")
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	// Try RFC3339Nano first, fall back to RFC3339 for compatibility
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
