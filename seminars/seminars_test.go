package seminars

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a test store
func createTestStore(t *testing.T) *Store {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")
	store, err := NewStore(dbPath)
	require.NoError(t, err, "should create store")
	t.Cleanup(func() { store.Close() })
	return store
}

// Test helper: create a seminar in the store
func createTestSeminar(t *testing.T, store *Store) *Seminar {
	seminar, err := store.CreateSeminar("Go Meetup", "https://example.com/agenda", SourceTypeHTML, "plain")
	require.NoError(t, err)
	return seminar
}

// TestCreateSeminar_Success verifies creating a seminar
func TestCreateSeminar_Success(t *testing.T) {
	store := createTestStore(t)

	seminar, err := store.CreateSeminar("  Go Meetup ", "https://example.com/agenda", SourceTypeFeed, "richtext")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, seminar.ID)
	assert.Equal(t, "Go Meetup", seminar.Name, "name should be trimmed")
	assert.Equal(t, SourceTypeFeed, seminar.SourceType)
	assert.Equal(t, "richtext", seminar.Dialect)
	assert.Nil(t, seminar.LastImportedAt)

	retrieved, err := store.GetSeminar(seminar.ID)
	require.NoError(t, err)
	assert.Equal(t, seminar.Name, retrieved.Name)
	assert.Equal(t, seminar.SourceURL, retrieved.SourceURL)
	assert.Equal(t, seminar.CreatedAt.UTC(), retrieved.CreatedAt.UTC())
}

// TestCreateSeminar_DefaultSourceType verifies html is the default source
// type
func TestCreateSeminar_DefaultSourceType(t *testing.T) {
	store := createTestStore(t)

	seminar, err := store.CreateSeminar("Go Meetup", "", "", "plain")
	require.NoError(t, err)
	assert.Equal(t, SourceTypeHTML, seminar.SourceType)

	retrieved, err := store.GetSeminar(seminar.ID)
	require.NoError(t, err)
	assert.Empty(t, retrieved.SourceURL)
}

// TestCreateSeminar_Validation verifies invalid seminars are rejected
func TestCreateSeminar_Validation(t *testing.T) {
	store := createTestStore(t)

	_, err := store.CreateSeminar("   ", "", "", "plain")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = store.CreateSeminar(strings.Repeat("a", MaxNameLength+1), "", "", "plain")
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, err = store.CreateSeminar("Go Meetup", "", "pdf", "plain")
	assert.ErrorIs(t, err, ErrInvalidSourceType)
}

// TestGetSeminar_NotFound verifies a missing seminar is reported
func TestGetSeminar_NotFound(t *testing.T) {
	store := createTestStore(t)

	_, err := store.GetSeminar(uuid.New())
	assert.ErrorIs(t, err, ErrSeminarNotFound)
}

// TestListSeminars verifies listing returns every seminar
func TestListSeminars(t *testing.T) {
	store := createTestStore(t)

	list, err := store.ListSeminars()
	require.NoError(t, err)
	assert.Empty(t, list)

	first := createTestSeminar(t, store)
	second, err := store.CreateSeminar("Rust Night", "", "", "plain")
	require.NoError(t, err)

	list, err = store.ListSeminars()
	require.NoError(t, err)
	require.Len(t, list, 2)

	ids := []uuid.UUID{list[0].ID, list[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)
}

// TestUpdateSeminar verifies only the given fields change
func TestUpdateSeminar(t *testing.T) {
	store := createTestStore(t)
	seminar := createTestSeminar(t, store)

	newName := "Go Meetup Berlin"
	newDialect := "richtext"
	err := store.UpdateSeminar(seminar.ID, SeminarUpdate{Name: &newName, Dialect: &newDialect})
	require.NoError(t, err)

	retrieved, err := store.GetSeminar(seminar.ID)
	require.NoError(t, err)
	assert.Equal(t, newName, retrieved.Name)
	assert.Equal(t, newDialect, retrieved.Dialect)
	assert.Equal(t, seminar.SourceURL, retrieved.SourceURL, "unchanged fields are kept")
	assert.False(t, retrieved.UpdatedAt.Before(seminar.UpdatedAt))
}

// TestUpdateSeminar_Errors verifies update validation and missing seminars
func TestUpdateSeminar_Errors(t *testing.T) {
	store := createTestStore(t)
	seminar := createTestSeminar(t, store)

	blank := " "
	err := store.UpdateSeminar(seminar.ID, SeminarUpdate{Name: &blank})
	assert.ErrorIs(t, err, ErrEmptyName)

	badType := "pdf"
	err = store.UpdateSeminar(seminar.ID, SeminarUpdate{SourceType: &badType})
	assert.ErrorIs(t, err, ErrInvalidSourceType)

	name := "Anything"
	err = store.UpdateSeminar(uuid.New(), SeminarUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrSeminarNotFound)
}

// TestMarkImported verifies the import time is recorded
func TestMarkImported(t *testing.T) {
	store := createTestStore(t)
	seminar := createTestSeminar(t, store)

	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.MarkImported(seminar.ID, at))

	retrieved, err := store.GetSeminar(seminar.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved.LastImportedAt)
	assert.True(t, at.Equal(*retrieved.LastImportedAt))

	assert.ErrorIs(t, store.MarkImported(uuid.New(), at), ErrSeminarNotFound)
}

// TestDeleteSeminar_Cascades verifies sections and topics go with the
// seminar
func TestDeleteSeminar_Cascades(t *testing.T) {
	store := createTestStore(t)
	seminar := createTestSeminar(t, store)

	section, err := store.CreateSection(seminar.ID, "Development", 0, false)
	require.NoError(t, err)
	_, err = store.CreateTopic(TopicParams{SectionID: section.ID, Name: "Topic 1", Votable: true, Payable: true})
	require.NoError(t, err)

	require.NoError(t, store.DeleteSeminar(seminar.ID))

	_, err = store.GetSeminar(seminar.ID)
	assert.ErrorIs(t, err, ErrSeminarNotFound)

	_, err = store.FindSection(seminar.ID, "Development")
	assert.ErrorIs(t, err, ErrSectionNotFound)

	_, err = store.FindTopic(section.ID, "Topic 1")
	assert.ErrorIs(t, err, ErrTopicNotFound)

	assert.ErrorIs(t, store.DeleteSeminar(seminar.ID), ErrSeminarNotFound)
}

// TestWithForeignKeys verifies the DSN option is added exactly once
func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "test.db?_foreign_keys=on", withForeignKeys("test.db"))
	assert.Equal(t, "file:test.db?cache=shared&_foreign_keys=on", withForeignKeys("file:test.db?cache=shared"))
	assert.Equal(t, "test.db?_foreign_keys=off", withForeignKeys("test.db?_foreign_keys=off"))
}
