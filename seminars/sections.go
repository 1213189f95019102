package seminars

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Section is a named grouping of topics within a seminar. Order is the
// number of sections the seminar already had when this one was created.
type Section struct {
	ID                     uuid.UUID `json:"id"`
	SeminarID              uuid.UUID `json:"seminar_id"`
	Name                   string    `json:"name"`
	Order                  int       `json:"order"`
	AllowPublicSubmissions bool      `json:"allow_public_submissions"`
	CreatedAt              time.Time `json:"created_at"`
}

// Topic is a discussion item. Topics form a tree through ParentTopicID;
// top-level topics have a nil parent.
type Topic struct {
	ID            uuid.UUID  `json:"id"`
	SectionID     uuid.UUID  `json:"section_id"`
	ParentTopicID *uuid.UUID `json:"parent_topic_id,omitempty"`
	Name          string     `json:"name"`
	Link          *string    `json:"link,omitempty"`
	Votable       bool       `json:"votable"`
	Payable       bool       `json:"payable"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IsTopLevel returns true if the topic has no parent.
func (t *Topic) IsTopLevel() bool {
	return t.ParentTopicID == nil
}

// TopicParams holds the attributes of a topic to be created.
type TopicParams struct {
	SectionID     uuid.UUID
	ParentTopicID *uuid.UUID
	Name          string
	Link          string // empty means no link
	Votable       bool
	Payable       bool
}

// CreateSection creates a section in a seminar at the given order.
func (s *Store) CreateSection(seminarID uuid.UUID, name string, order int, allowPublicSubmissions bool) (*Section, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	section := &Section{
		ID:                     uuid.New(),
		SeminarID:              seminarID,
		Name:                   strings.TrimSpace(name),
		Order:                  order,
		AllowPublicSubmissions: allowPublicSubmissions,
		CreatedAt:              time.Now(),
	}

	query := `
		INSERT INTO sections (
			section_id, seminar_id, name, position,
			allow_public_submissions, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		section.ID.String(),
		section.SeminarID.String(),
		section.Name,
		section.Order,
		section.AllowPublicSubmissions,
		formatTime(&section.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSection
		}
		if isForeignKeyViolation(err) {
			return nil, ErrSeminarNotFound
		}
		return nil, fmt.Errorf("failed to insert section: %w", err)
	}

	return section, nil
}

// FindSection looks up a section of a seminar by its exact name.
func (s *Store) FindSection(seminarID uuid.UUID, name string) (*Section, error) {
	query := `
		SELECT section_id, seminar_id, name, position, allow_public_submissions, created_at
		FROM sections
		WHERE seminar_id = ? AND name = ?
	`

	section, err := scanSection(s.db.QueryRow(query, seminarID.String(), strings.TrimSpace(name)))
	if err == sql.ErrNoRows {
		return nil, ErrSectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query section: %w", err)
	}

	return section, nil
}

// CountSections returns how many sections a seminar has.
func (s *Store) CountSections(seminarID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sections WHERE seminar_id = ?",
		seminarID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sections: %w", err)
	}
	return count, nil
}

// ListSections lists the sections of a seminar in order.
func (s *Store) ListSections(seminarID uuid.UUID) ([]Section, error) {
	query := `
		SELECT section_id, seminar_id, name, position, allow_public_submissions, created_at
		FROM sections
		WHERE seminar_id = ?
		ORDER BY position, rowid
	`

	rows, err := s.db.Query(query, seminarID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, *section)
	}

	return sections, rows.Err()
}

// CreateTopic creates a topic. A parent, when given, must live in the same
// section.
func (s *Store) CreateTopic(params TopicParams) (*Topic, error) {
	if err := validateName(params.Name); err != nil {
		return nil, err
	}
	if params.ParentTopicID != nil {
		if err := s.checkParent(params.SectionID, *params.ParentTopicID); err != nil {
			return nil, err
		}
	}

	topic := &Topic{
		ID:            uuid.New(),
		SectionID:     params.SectionID,
		ParentTopicID: params.ParentTopicID,
		Name:          strings.TrimSpace(params.Name),
		Votable:       params.Votable,
		Payable:       params.Payable,
		CreatedAt:     time.Now(),
	}
	if params.Link != "" {
		link := params.Link
		topic.Link = &link
	}

	query := `
		INSERT INTO topics (
			topic_id, section_id, parent_topic_id, name, link,
			votable, payable, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		topic.ID.String(),
		topic.SectionID.String(),
		uuidOrNil(topic.ParentTopicID),
		topic.Name,
		nullString(params.Link),
		topic.Votable,
		topic.Payable,
		formatTime(&topic.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTopic
		}
		if isForeignKeyViolation(err) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to insert topic: %w", err)
	}

	return topic, nil
}

// FindTopic looks up a topic of a section by its exact name.
func (s *Store) FindTopic(sectionID uuid.UUID, name string) (*Topic, error) {
	query := topicColumns + " WHERE section_id = ? AND name = ?"

	topic, err := scanTopic(s.db.QueryRow(query, sectionID.String(), strings.TrimSpace(name)))
	if err == sql.ErrNoRows {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query topic: %w", err)
	}

	return topic, nil
}

// GetTopic retrieves a topic by ID.
func (s *Store) GetTopic(id uuid.UUID) (*Topic, error) {
	topic, err := scanTopic(s.db.QueryRow(topicColumns+" WHERE topic_id = ?", id.String()))
	if err == sql.ErrNoRows {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query topic: %w", err)
	}

	return topic, nil
}

// UpdateTopicParent attaches a topic to a parent in the same section.
func (s *Store) UpdateTopicParent(topicID, parentID uuid.UUID) error {
	topic, err := s.GetTopic(topicID)
	if err != nil {
		return err
	}
	if err := s.checkParent(topic.SectionID, parentID); err != nil {
		return err
	}
	if err := s.checkAncestry(topicID, parentID); err != nil {
		return err
	}

	return s.execOne("UPDATE topics SET parent_topic_id = ? WHERE topic_id = ?",
		ErrTopicNotFound, parentID.String(), topicID.String())
}

// ListTopics lists every topic of a seminar in creation order.
func (s *Store) ListTopics(seminarID uuid.UUID) ([]Topic, error) {
	query := `
		SELECT t.topic_id, t.section_id, t.parent_topic_id, t.name, t.link,
		       t.votable, t.payable, t.created_at
		FROM topics t
		JOIN sections s ON s.section_id = t.section_id
		WHERE s.seminar_id = ?
		ORDER BY t.rowid
	`

	rows, err := s.db.Query(query, seminarID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	var topics []Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, *topic)
	}

	return topics, rows.Err()
}

// Agenda loads a seminar's sections and topics and arranges them as a tree.
func (s *Store) Agenda(seminarID uuid.UUID) ([]AgendaSection, error) {
	sections, err := s.ListSections(seminarID)
	if err != nil {
		return nil, err
	}
	topics, err := s.ListTopics(seminarID)
	if err != nil {
		return nil, err
	}
	return BuildAgenda(sections, topics), nil
}

func (s *Store) checkParent(sectionID, parentID uuid.UUID) error {
	parent, err := s.GetTopic(parentID)
	if err != nil {
		return err
	}
	if parent.SectionID != sectionID {
		return ErrParentOutOfSection
	}
	return nil
}

// checkAncestry walks up from parentID and fails if it reaches topicID.
func (s *Store) checkAncestry(topicID, parentID uuid.UUID) error {
	seen := map[uuid.UUID]bool{}
	current := &parentID
	for current != nil {
		if *current == topicID {
			return ErrTopicCycle
		}
		if seen[*current] {
			return ErrTopicCycle
		}
		seen[*current] = true

		ancestor, err := s.GetTopic(*current)
		if err != nil {
			return err
		}
		current = ancestor.ParentTopicID
	}
	return nil
}

const topicColumns = `
	SELECT topic_id, section_id, parent_topic_id, name, link,
	       votable, payable, created_at
	FROM topics`

func scanSection(row rowScanner) (*Section, error) {
	var idStr, seminarIDStr, name, createdAtStr string
	var order int
	var allowPublic bool

	if err := row.Scan(&idStr, &seminarIDStr, &name, &order, &allowPublic, &createdAtStr); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse section ID: %w", err)
	}
	seminarID, err := uuid.Parse(seminarIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse seminar ID: %w", err)
	}

	return &Section{
		ID:                     id,
		SeminarID:              seminarID,
		Name:                   name,
		Order:                  order,
		AllowPublicSubmissions: allowPublic,
		CreatedAt:              parseTime(createdAtStr),
	}, nil
}

func scanTopic(row rowScanner) (*Topic, error) {
	var idStr, sectionIDStr, name, createdAtStr string
	var parentIDStr, link sql.NullString
	var votable, payable bool

	err := row.Scan(&idStr, &sectionIDStr, &parentIDStr, &name, &link,
		&votable, &payable, &createdAtStr)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse topic ID: %w", err)
	}
	sectionID, err := uuid.Parse(sectionIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse section ID: %w", err)
	}

	topic := &Topic{
		ID:        id,
		SectionID: sectionID,
		Name:      name,
		Votable:   votable,
		Payable:   payable,
		CreatedAt: parseTime(createdAtStr),
	}
	if parentIDStr.Valid {
		parentID, err := uuid.Parse(parentIDStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse parent topic ID: %w", err)
		}
		topic.ParentTopicID = &parentID
	}
	if link.Valid {
		topic.Link = &link.String
	}

	return topic, nil
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
