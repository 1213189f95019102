package seminars

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a seminar with one section
func createTestSection(t *testing.T, store *Store) (*Seminar, *Section) {
	seminar := createTestSeminar(t, store)
	section, err := store.CreateSection(seminar.ID, "Development", 0, false)
	require.NoError(t, err)
	return seminar, section
}

// Test helper: create a topic
func createTestTopic(t *testing.T, store *Store, sectionID uuid.UUID, name string, parent *Topic) *Topic {
	params := TopicParams{SectionID: sectionID, Name: name, Votable: true, Payable: true}
	if parent != nil {
		params.ParentTopicID = &parent.ID
	}
	topic, err := store.CreateTopic(params)
	require.NoError(t, err)
	return topic
}

// TestCreateSection_Success verifies creating and finding a section
func TestCreateSection_Success(t *testing.T) {
	store := createTestStore(t)
	seminar := createTestSeminar(t, store)

	section, err := store.CreateSection(seminar.ID, "Development", 0, true)
	require.NoError(t, err)
	assert.Equal(t, seminar.ID, section.SeminarID)
	assert.Equal(t, 0, section.Order)
	assert.True(t, section.AllowPublicSubmissions)

	found, err := store.FindSection(seminar.ID, "Development")
	require.NoError(t, err)
	assert.Equal(t, section.ID, found.ID)
	assert.True(t, found.AllowPublicSubmissions)

	count, err := store.CountSections(seminar.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// TestCreateSection_Duplicate verifies section names are unique per
// seminar
func TestCreateSection_Duplicate(t *testing.T) {
	store := createTestStore(t)
	seminar, _ := createTestSection(t, store)

	_, err := store.CreateSection(seminar.ID, "Development", 1, false)
	assert.ErrorIs(t, err, ErrDuplicateSection)

	other, err := store.CreateSeminar("Other", "", "", "plain")
	require.NoError(t, err)
	_, err = store.CreateSection(other.ID, "Development", 0, false)
	assert.NoError(t, err, "same name in another seminar is fine")
}

// TestCreateSection_Errors verifies validation and missing seminars
func TestCreateSection_Errors(t *testing.T) {
	store := createTestStore(t)
	seminar := createTestSeminar(t, store)

	_, err := store.CreateSection(seminar.ID, "", 0, false)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = store.CreateSection(seminar.ID, strings.Repeat("x", MaxNameLength+1), 0, false)
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, err = store.CreateSection(uuid.New(), "Development", 0, false)
	assert.ErrorIs(t, err, ErrSeminarNotFound)
}

// TestFindSection_CaseSensitive verifies identity is the exact name
func TestFindSection_CaseSensitive(t *testing.T) {
	store := createTestStore(t)
	seminar, _ := createTestSection(t, store)

	_, err := store.FindSection(seminar.ID, "development")
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

// TestListSections_Order verifies sections come back by position
func TestListSections_Order(t *testing.T) {
	store := createTestStore(t)
	seminar := createTestSeminar(t, store)

	_, err := store.CreateSection(seminar.ID, "Second", 1, false)
	require.NoError(t, err)
	_, err = store.CreateSection(seminar.ID, "First", 0, false)
	require.NoError(t, err)

	sections, err := store.ListSections(seminar.ID)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "First", sections[0].Name)
	assert.Equal(t, "Second", sections[1].Name)
}

// TestCreateTopic_Success verifies creating top-level topics and subtopics
func TestCreateTopic_Success(t *testing.T) {
	store := createTestStore(t)
	_, section := createTestSection(t, store)

	parent, err := store.CreateTopic(TopicParams{
		SectionID: section.ID,
		Name:      "Parent",
		Link:      "https://example.com/talk",
		Votable:   true,
	})
	require.NoError(t, err)
	assert.True(t, parent.IsTopLevel())
	require.NotNil(t, parent.Link)
	assert.Equal(t, "https://example.com/talk", *parent.Link)
	assert.True(t, parent.Votable)
	assert.False(t, parent.Payable)

	child := createTestTopic(t, store, section.ID, "Child", parent)
	assert.False(t, child.IsTopLevel())

	found, err := store.FindTopic(section.ID, "Child")
	require.NoError(t, err)
	require.NotNil(t, found.ParentTopicID)
	assert.Equal(t, parent.ID, *found.ParentTopicID)
	assert.Nil(t, found.Link)
	assert.True(t, found.Votable)
	assert.True(t, found.Payable)
}

// TestCreateTopic_Duplicate verifies topic names are unique per section
func TestCreateTopic_Duplicate(t *testing.T) {
	store := createTestStore(t)
	seminar, section := createTestSection(t, store)
	createTestTopic(t, store, section.ID, "Topic 1", nil)

	_, err := store.CreateTopic(TopicParams{SectionID: section.ID, Name: "Topic 1"})
	assert.ErrorIs(t, err, ErrDuplicateTopic)

	other, err := store.CreateSection(seminar.ID, "Other", 1, false)
	require.NoError(t, err)
	_, err = store.CreateTopic(TopicParams{SectionID: other.ID, Name: "Topic 1"})
	assert.NoError(t, err, "same name in another section is fine")
}

// TestCreateTopic_ParentChecks verifies parents must exist in the same
// section
func TestCreateTopic_ParentChecks(t *testing.T) {
	store := createTestStore(t)
	seminar, section := createTestSection(t, store)
	other, err := store.CreateSection(seminar.ID, "Other", 1, false)
	require.NoError(t, err)
	foreign := createTestTopic(t, store, other.ID, "Foreign", nil)

	missing := uuid.New()
	_, err = store.CreateTopic(TopicParams{SectionID: section.ID, Name: "Orphan", ParentTopicID: &missing})
	assert.ErrorIs(t, err, ErrTopicNotFound)

	_, err = store.CreateTopic(TopicParams{SectionID: section.ID, Name: "Stray", ParentTopicID: &foreign.ID})
	assert.ErrorIs(t, err, ErrParentOutOfSection)

	_, err = store.CreateTopic(TopicParams{SectionID: uuid.New(), Name: "Lost"})
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

// TestUpdateTopicParent verifies attaching a top-level topic
func TestUpdateTopicParent(t *testing.T) {
	store := createTestStore(t)
	_, section := createTestSection(t, store)
	parent := createTestTopic(t, store, section.ID, "Parent", nil)
	child := createTestTopic(t, store, section.ID, "Child", nil)

	require.NoError(t, store.UpdateTopicParent(child.ID, parent.ID))

	updated, err := store.GetTopic(child.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ParentTopicID)
	assert.Equal(t, parent.ID, *updated.ParentTopicID)
}

// TestUpdateTopicParent_RefusesCycles verifies a topic can't become its
// own ancestor
func TestUpdateTopicParent_RefusesCycles(t *testing.T) {
	store := createTestStore(t)
	_, section := createTestSection(t, store)
	a := createTestTopic(t, store, section.ID, "A", nil)
	b := createTestTopic(t, store, section.ID, "B", a)
	c := createTestTopic(t, store, section.ID, "C", b)

	assert.ErrorIs(t, store.UpdateTopicParent(a.ID, a.ID), ErrTopicCycle)
	assert.ErrorIs(t, store.UpdateTopicParent(a.ID, c.ID), ErrTopicCycle)

	unchanged, err := store.GetTopic(a.ID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.ParentTopicID)
}

// TestUpdateTopicParent_Errors verifies missing topics and foreign parents
func TestUpdateTopicParent_Errors(t *testing.T) {
	store := createTestStore(t)
	seminar, section := createTestSection(t, store)
	other, err := store.CreateSection(seminar.ID, "Other", 1, false)
	require.NoError(t, err)
	topic := createTestTopic(t, store, section.ID, "Topic", nil)
	foreign := createTestTopic(t, store, other.ID, "Foreign", nil)

	assert.ErrorIs(t, store.UpdateTopicParent(uuid.New(), topic.ID), ErrTopicNotFound)
	assert.ErrorIs(t, store.UpdateTopicParent(topic.ID, uuid.New()), ErrTopicNotFound)
	assert.ErrorIs(t, store.UpdateTopicParent(topic.ID, foreign.ID), ErrParentOutOfSection)
}

// TestListTopics verifies topics of every section come back in creation
// order
func TestListTopics(t *testing.T) {
	store := createTestStore(t)
	seminar, section := createTestSection(t, store)
	other, err := store.CreateSection(seminar.ID, "Other", 1, false)
	require.NoError(t, err)

	createTestTopic(t, store, section.ID, "First", nil)
	createTestTopic(t, store, other.ID, "Second", nil)
	createTestTopic(t, store, section.ID, "Third", nil)

	unrelated, err := store.CreateSeminar("Unrelated", "", "", "plain")
	require.NoError(t, err)
	unrelatedSection, err := store.CreateSection(unrelated.ID, "Development", 0, false)
	require.NoError(t, err)
	createTestTopic(t, store, unrelatedSection.ID, "Elsewhere", nil)

	topics, err := store.ListTopics(seminar.ID)
	require.NoError(t, err)
	require.Len(t, topics, 3)
	assert.Equal(t, "First", topics[0].Name)
	assert.Equal(t, "Second", topics[1].Name)
	assert.Equal(t, "Third", topics[2].Name)
}

// TestAgenda verifies the stored tree is rebuilt
func TestAgenda(t *testing.T) {
	store := createTestStore(t)
	seminar, section := createTestSection(t, store)
	parent := createTestTopic(t, store, section.ID, "Parent", nil)
	createTestTopic(t, store, section.ID, "Child 1", parent)
	createTestTopic(t, store, section.ID, "Child 2", parent)
	createTestTopic(t, store, section.ID, "Sibling", nil)

	agenda, err := store.Agenda(seminar.ID)
	require.NoError(t, err)
	require.Len(t, agenda, 1)
	assert.Equal(t, "Development", agenda[0].Name)

	require.Len(t, agenda[0].Topics, 2)
	assert.Equal(t, "Parent", agenda[0].Topics[0].Name)
	assert.Equal(t, "Sibling", agenda[0].Topics[1].Name)

	subtopics := agenda[0].Topics[0].Subtopics
	require.Len(t, subtopics, 2)
	assert.Equal(t, "Child 1", subtopics[0].Name)
	assert.Equal(t, "Child 2", subtopics[1].Name)
}
