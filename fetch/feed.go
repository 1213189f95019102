package fetch

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// ResolveFeed fetches an RSS or Atom feed and returns the link of its newest
// item. Seminars announced through a feed point at the feed; the agenda is
// the page the latest entry links to. Items without a date rank below dated
// ones; among equals, feed order wins.
func (c *Client) ResolveFeed(ctx context.Context, feedURL string) (string, error) {
	body, err := c.Get(ctx, feedURL)
	if err != nil {
		return "", err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse feed: %w", err)
	}

	link := NewestLink(feed)
	if link == "" {
		return "", ErrEmptyFeed
	}
	return link, nil
}

// NewestLink picks the link of the most recent item of a parsed feed, or ""
// when no item has a link.
func NewestLink(feed *gofeed.Feed) string {
	var (
		best     string
		bestTime time.Time
	)
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		at := itemTime(item)
		if best == "" || at.After(bestTime) {
			best = link
			bestTime = at
		}
	}
	return best
}

// itemTime returns the published time of an item, falling back to the
// updated time (gofeed parses RSS pubDate and Atom published/updated into
// these fields).
func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}
