package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/pevans/seminarfed/dialect"
	"github.com/pevans/seminarfed/seminars"
	"github.com/rs/zerolog/log"
)

// ErrNoSourceURL is returned when a seminar has nowhere to import from.
var ErrNoSourceURL = errors.New("seminar has no source URL")

// Store is what a Runner needs from storage: the importer's repository plus
// seminar lookup and bookkeeping.
type Store interface {
	Repository
	GetSeminar(id uuid.UUID) (*seminars.Seminar, error)
	MarkImported(id uuid.UUID, at time.Time) error
}

// Fetcher retrieves agenda documents. *fetch.Client implements it.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) (*goquery.Document, error)
	ResolveFeed(ctx context.Context, feedURL string) (string, error)
}

// Result is the outcome of one import run. Success is false only when the
// run could not start or the document could not be fetched or parsed;
// sections and topics that fail individually are reported in Stats and Log.
type Result struct {
	Success bool   `json:"success"`
	Log     string `json:"log"`
	Stats   Stats  `json:"stats"`

	// Err is why the run did not start or did not finish; nil on success.
	Err error `json:"-"`
}

// Runner runs imports: it picks the seminar's dialect, gets the document and
// drives the strategy with a fresh Importer.
type Runner struct {
	store    Store
	registry *dialect.Registry
	fetcher  Fetcher
	now      func() time.Time
}

// NewRunner creates a runner. fetcher may be nil when only ImportHTML and
// ImportDocument are used.
func NewRunner(store Store, registry *dialect.Registry, fetcher Fetcher) *Runner {
	return &Runner{
		store:    store,
		registry: registry,
		fetcher:  fetcher,
		now:      time.Now,
	}
}

// ImportHTML imports an agenda given as raw HTML. An empty dialectID uses
// the seminar's configured dialect.
func (r *Runner) ImportHTML(seminarID uuid.UUID, html, dialectID string) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return failed(nil, fmt.Errorf("failed to parse HTML: %w", err))
	}
	return r.ImportDocument(seminarID, doc, dialectID)
}

// ImportDocument imports an already parsed agenda. An empty dialectID uses
// the seminar's configured dialect.
func (r *Runner) ImportDocument(seminarID uuid.UUID, doc *goquery.Document, dialectID string) Result {
	seminar, strategy, err := r.prepare(seminarID, dialectID)
	if err != nil {
		return failed(nil, err)
	}
	return r.run(seminar, strategy, doc, nil)
}

// ImportSeminar fetches the seminar's agenda from its source URL and imports
// it with the seminar's dialect. Feed sources are resolved to the newest
// entry's page first.
func (r *Runner) ImportSeminar(ctx context.Context, seminarID uuid.UUID) Result {
	return r.ImportSource(ctx, seminarID, "")
}

// ImportSource is ImportSeminar with an explicit dialect. An empty dialectID
// uses the seminar's configured dialect.
func (r *Runner) ImportSource(ctx context.Context, seminarID uuid.UUID, dialectID string) Result {
	seminar, strategy, err := r.prepare(seminarID, dialectID)
	if err != nil {
		return failed(nil, err)
	}
	if seminar.SourceURL == "" {
		return failed(nil, ErrNoSourceURL)
	}
	if r.fetcher == nil {
		return failed(nil, errors.New("no fetcher configured"))
	}

	var preamble Log
	url := seminar.SourceURL
	if seminar.SourceType == seminars.SourceTypeFeed {
		url, err = r.fetcher.ResolveFeed(ctx, seminar.SourceURL)
		if err != nil {
			return failed(preamble, fmt.Errorf("failed to resolve feed %s: %w", seminar.SourceURL, err))
		}
		preamble = append(preamble, fmt.Sprintf("Resolved feed %s to %s", seminar.SourceURL, url))
	}

	doc, err := r.fetcher.FetchHTML(ctx, url)
	if err != nil {
		return failed(preamble, fmt.Errorf("failed to fetch %s: %w", url, err))
	}

	return r.run(seminar, strategy, doc, preamble)
}

func (r *Runner) prepare(seminarID uuid.UUID, dialectID string) (*seminars.Seminar, dialect.Strategy, error) {
	seminar, err := r.store.GetSeminar(seminarID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load seminar %s: %w", seminarID, err)
	}

	if dialectID == "" {
		dialectID = seminar.Dialect
	}
	strategy, err := r.registry.Lookup(dialectID)
	if err != nil {
		return nil, nil, err
	}

	return seminar, strategy, nil
}

func (r *Runner) run(seminar *seminars.Seminar, strategy dialect.Strategy, doc *goquery.Document, preamble Log) Result {
	im := New(r.store, seminar.ID)
	im.log = append(im.log, preamble...)
	im.Logf("Importing agenda for seminar %q with the %s dialect", seminar.Name, strategy.Name())

	strategy.Process(doc, im)

	stats := im.Stats()
	im.Logf("Finished: %s", stats)

	if err := r.store.MarkImported(seminar.ID, r.now()); err != nil {
		log.Warn().Err(err).Str("seminar", seminar.ID.String()).Msg("failed to record import time")
	}

	log.Info().
		Str("seminar", seminar.ID.String()).
		Str("dialect", strategy.Name()).
		Int("sections_created", stats.SectionsCreated).
		Int("sections_skipped", stats.SectionsSkipped).
		Int("sections_failed", stats.SectionsFailed).
		Int("topics_created", stats.TopicsCreated).
		Int("topics_skipped", stats.TopicsSkipped).
		Int("topics_failed", stats.TopicsFailed).
		Msg("import finished")

	return Result{
		Success: true,
		Log:     im.Log().String(),
		Stats:   stats,
	}
}

func failed(preamble Log, err error) Result {
	log.Warn().Err(err).Msg("import failed")
	lines := append(Log(nil), preamble...)
	lines = append(lines, "Import failed: "+err.Error())
	return Result{
		Success: false,
		Log:     lines.String(),
		Err:     err,
	}
}
