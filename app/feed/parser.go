package feed

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

const (
	hintLastBuildDate = "howler:lastBuildDate"
	hintTTL           = "howler:ttl"
	hintSkipDays      = "howler:skipDays"
	hintSkipHours     = "howler:skipHours"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	p := gofeed.NewParser()
	p.RSSTranslator = &hintTranslator{}

	return &Parser{
		gofeedParser: p,
	}
}

// Run parses an RSS or Atom document.
func (p *Parser) Run(r io.Reader) (*Document, error) {
	parsed, err := p.gofeedParser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	doc := &Document{
		Title: strings.TrimSpace(parsed.Title),
		Hints: hintsFrom(parsed.Custom),
		Items: make([]Item, 0, len(parsed.Items)),
	}

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		doc.Items = append(doc.Items, p.normalizeItem(item))
	}

	return doc, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        strings.TrimSpace(item.GUID),
		Title:       strings.TrimSpace(item.Title),
		PublishedAt: item.PublishedParsed,
	}

	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		normalized.EnclosureURL = strings.TrimSpace(item.Enclosures[0].URL)
	}

	return normalized
}

// hintTranslator keeps the channel fields the universal model drops.
type hintTranslator struct {
	gofeed.DefaultRSSTranslator
}

func (t *hintTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	out, err := t.DefaultRSSTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}

	channel, ok := feed.(*rss.Feed)
	if !ok {
		return out, nil
	}

	if out.Custom == nil {
		out.Custom = make(map[string]string)
	}
	setHint(out.Custom, hintLastBuildDate, channel.LastBuildDate)
	setHint(out.Custom, hintTTL, channel.TTL)
	setHint(out.Custom, hintSkipDays, strings.Join(channel.SkipDays, ","))
	setHint(out.Custom, hintSkipHours, strings.Join(channel.SkipHours, ","))

	return out, nil
}

func setHint(custom map[string]string, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		custom[key] = value
	}
}

func hintsFrom(custom map[string]string) ChannelHints {
	return ChannelHints{
		LastBuildDate: custom[hintLastBuildDate],
		TTL:           custom[hintTTL],
		SkipDays:      splitHint(custom[hintSkipDays]),
		SkipHours:     splitHint(custom[hintSkipHours]),
	}
}

func splitHint(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}
