// Package dialect holds the extraction strategies, one per agenda website
// markup style. A strategy walks a parsed document, decides which headers
// are sections and which lists hold their topics, and hands every section
// and topic it finds to a Sink.
package dialect

import (
	"errors"
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/seminarfed/seminars"
)

// ErrUnknownDialect is returned when no strategy is registered under a
// dialect id.
var ErrUnknownDialect = errors.New("unknown dialect")

// SectionInput describes a section found in the document.
type SectionInput struct {
	Name                   string
	AllowPublicSubmissions bool
}

// TopicInput describes a topic found in the document.
type TopicInput struct {
	Name    string
	Link    string // empty means no link
	Votable bool
	Payable bool
}

// Sink receives what a strategy finds. The importer implements it.
// CreateOrSkipSection and CreateOrSkipTopic return nil when the record could
// not be persisted.
type Sink interface {
	CreateOrSkipSection(in SectionInput) *seminars.Section
	CreateOrSkipTopic(section *seminars.Section, in TopicInput, parent *seminars.Topic) *seminars.Topic
	Logf(format string, args ...any)
}

// Strategy extracts an agenda from one dialect's markup.
type Strategy interface {
	Name() string
	Config() Config
	Process(doc *goquery.Document, sink Sink)
}

// Dialect ids.
const (
	PlainID    = "plain"
	RichTextID = "richtext"
)

// Registry maps dialect ids to strategies. The set of dialects is closed;
// configuration can only tune the known ones.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds every known dialect with its defaults, applying the
// given overrides. Overrides for an unknown dialect are an error.
func NewRegistry(overrides map[string]Overrides) (*Registry, error) {
	for id := range overrides {
		if id != PlainID && id != RichTextID {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, id)
		}
	}

	return &Registry{
		strategies: map[string]Strategy{
			PlainID:    NewPlain(overrides[PlainID].Apply(DefaultPlainConfig())),
			RichTextID: NewRichText(overrides[RichTextID].Apply(DefaultRichTextConfig())),
		},
	}, nil
}

// Lookup returns the strategy registered under id.
func (r *Registry) Lookup(id string) (Strategy, error) {
	strategy, ok := r.strategies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, id)
	}
	return strategy, nil
}

// Names returns the registered dialect ids in alphabetical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a strategy is registered under id.
func (r *Registry) Has(id string) bool {
	_, ok := r.strategies[id]
	return ok
}
