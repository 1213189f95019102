// Package importer merges extracted agendas into the seminar store. It
// creates sections and topics the first time they are seen and skips them
// on later runs, so importing the same document twice changes nothing.
package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pevans/seminarfed/dialect"
	"github.com/pevans/seminarfed/seminars"
)

// Repository is the storage the importer needs. seminars.Store implements
// it. Find* return seminars.ErrSectionNotFound / seminars.ErrTopicNotFound
// when nothing matches; any other error counts as a failure of that item.
type Repository interface {
	FindSection(seminarID uuid.UUID, name string) (*seminars.Section, error)
	CountSections(seminarID uuid.UUID) (int, error)
	CreateSection(seminarID uuid.UUID, name string, order int, allowPublicSubmissions bool) (*seminars.Section, error)
	FindTopic(sectionID uuid.UUID, name string) (*seminars.Topic, error)
	CreateTopic(params seminars.TopicParams) (*seminars.Topic, error)
	UpdateTopicParent(topicID, parentID uuid.UUID) error
}

// Stats counts what happened during one run.
type Stats struct {
	SectionsCreated int `json:"sections_created"`
	SectionsSkipped int `json:"sections_skipped"`
	SectionsFailed  int `json:"sections_failed"`
	TopicsCreated   int `json:"topics_created"`
	TopicsSkipped   int `json:"topics_skipped"`
	TopicsFailed    int `json:"topics_failed"`
}

func (s Stats) String() string {
	return fmt.Sprintf("sections: %d created, %d skipped, %d failed; topics: %d created, %d skipped, %d failed",
		s.SectionsCreated, s.SectionsSkipped, s.SectionsFailed,
		s.TopicsCreated, s.TopicsSkipped, s.TopicsFailed)
}

// Log is the human-readable record of one run, one line per event.
type Log []string

func (l Log) String() string {
	return strings.Join(l, "\n")
}

// Importer performs create-or-skip operations for one seminar and keeps the
// run's stats and log. It is not safe for concurrent use; one run uses one
// Importer.
type Importer struct {
	repo      Repository
	seminarID uuid.UUID
	stats     Stats
	log       Log
}

var _ dialect.Sink = (*Importer)(nil)

// New creates an importer writing into the given seminar.
func New(repo Repository, seminarID uuid.UUID) *Importer {
	return &Importer{
		repo:      repo,
		seminarID: seminarID,
	}
}

// Stats returns the counters so far.
func (im *Importer) Stats() Stats {
	return im.stats
}

// Log returns a copy of the log so far.
func (im *Importer) Log() Log {
	return append(Log(nil), im.log...)
}

// Logf appends a line to the log.
func (im *Importer) Logf(format string, args ...any) {
	im.log = append(im.log, fmt.Sprintf(format, args...))
}

// CreateOrSkipSection returns the seminar's section with the given name,
// creating it at the end of the seminar's section order when it does not
// exist yet. It returns nil when the section could not be persisted.
func (im *Importer) CreateOrSkipSection(in dialect.SectionInput) *seminars.Section {
	existing, err := im.repo.FindSection(im.seminarID, in.Name)
	if err == nil {
		im.stats.SectionsSkipped++
		im.Logf("Section %q already exists, skipping", in.Name)
		return existing
	}
	if !errors.Is(err, seminars.ErrSectionNotFound) {
		return im.sectionFailed(in.Name, err)
	}

	order, err := im.repo.CountSections(im.seminarID)
	if err != nil {
		return im.sectionFailed(in.Name, err)
	}

	section, err := im.repo.CreateSection(im.seminarID, in.Name, order, in.AllowPublicSubmissions)
	if err != nil {
		return im.sectionFailed(in.Name, err)
	}

	im.stats.SectionsCreated++
	im.Logf("Created section %q (order %d)", section.Name, section.Order)
	return section
}

func (im *Importer) sectionFailed(name string, err error) *seminars.Section {
	im.stats.SectionsFailed++
	im.Logf("Failed to create section %q: %v", name, err)
	return nil
}

// CreateOrSkipTopic returns the section's topic with the given name,
// creating it under parent when it does not exist yet. An existing
// top-level topic is attached to parent when one is given. It returns nil
// when the topic could not be persisted.
func (im *Importer) CreateOrSkipTopic(section *seminars.Section, in dialect.TopicInput, parent *seminars.Topic) *seminars.Topic {
	existing, err := im.repo.FindTopic(section.ID, in.Name)
	if err == nil {
		im.stats.TopicsSkipped++
		im.Logf("Topic %q already exists in %q, skipping%s", in.Name, section.Name, im.backfill(existing, parent))
		return existing
	}
	if !errors.Is(err, seminars.ErrTopicNotFound) {
		return im.topicFailed(section, in.Name, err)
	}

	params := seminars.TopicParams{
		SectionID: section.ID,
		Name:      in.Name,
		Link:      in.Link,
		Votable:   in.Votable,
		Payable:   in.Payable,
	}
	if parent != nil {
		params.ParentTopicID = &parent.ID
	}

	topic, err := im.repo.CreateTopic(params)
	if err != nil {
		return im.topicFailed(section, in.Name, err)
	}

	im.stats.TopicsCreated++
	line := fmt.Sprintf("Created topic %q in %q", topic.Name, section.Name)
	if parent == nil {
		line += " (top-level)"
	} else {
		line += fmt.Sprintf(" (subtopic of %q)", parent.Name)
	}
	if in.Link != "" {
		line += " with link " + in.Link
	}
	im.log = append(im.log, line)
	return topic
}

// backfill attaches an existing top-level topic to parent and returns a note
// for the skip line, or "" when there was nothing to do.
func (im *Importer) backfill(existing, parent *seminars.Topic) string {
	if parent == nil || existing.ParentTopicID != nil || parent.ID == existing.ID {
		return ""
	}

	if err := im.repo.UpdateTopicParent(existing.ID, parent.ID); err != nil {
		return fmt.Sprintf(" (could not attach to parent %q: %v)", parent.Name, err)
	}

	parentID := parent.ID
	existing.ParentTopicID = &parentID
	return fmt.Sprintf(" (attached to parent %q)", parent.Name)
}

func (im *Importer) topicFailed(section *seminars.Section, name string, err error) *seminars.Topic {
	im.stats.TopicsFailed++
	im.Logf("Failed to create topic %q in %q: %v", name, section.Name, err)
	return nil
}
