package feed

import (
	"strings"
	"testing"
	"time"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Podcast: The Show</title>
    <link>https://example.com</link>
    <lastBuildDate>Mon, 03 Jul 2023 12:00:00 GMT</lastBuildDate>
    <ttl>60</ttl>
    <skipHours><hour>1</hour><hour>2</hour></skipHours>
    <skipDays><day>Sunday</day></skipDays>
    <item>
      <title> Episode 1 </title>
      <guid>abc</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <enclosure url="https://cdn.example.com/ep1.mp3?x=1" length="1024" type="audio/mpeg"/>
    </item>
    <item>
      <title>Episode 2</title>
      <guid>def</guid>
      <pubDate>sometime last week</pubDate>
      <enclosure url="https://cdn.example.com/ep2.mp3" type="audio/mpeg"/>
    </item>
    <item>
      <title>No media</title>
      <guid>ghi</guid>
    </item>
  </channel>
</rss>`

	doc, err := NewParser().Run(strings.NewReader(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if doc.Title != "Podcast: The Show" {
		t.Errorf("Expected title 'Podcast: The Show', got: %s", doc.Title)
	}
	if doc.Hints.TTL != "60" {
		t.Errorf("Expected ttl hint '60', got: %q", doc.Hints.TTL)
	}
	if doc.Hints.LastBuildDate != "Mon, 03 Jul 2023 12:00:00 GMT" {
		t.Errorf("Expected lastBuildDate hint, got: %q", doc.Hints.LastBuildDate)
	}
	if len(doc.Hints.SkipHours) != 2 || len(doc.Hints.SkipDays) != 1 {
		t.Errorf("Expected 2 skip hours and 1 skip day, got %v and %v", doc.Hints.SkipHours, doc.Hints.SkipDays)
	}

	if len(doc.Items) != 3 {
		t.Fatalf("Expected 3 items, got: %d", len(doc.Items))
	}

	first := doc.Items[0]
	if first.GUID != "abc" {
		t.Errorf("Expected GUID 'abc', got: %s", first.GUID)
	}
	if first.Title != "Episode 1" {
		t.Errorf("Expected trimmed title 'Episode 1', got: %q", first.Title)
	}
	if first.EnclosureURL != "https://cdn.example.com/ep1.mp3?x=1" {
		t.Errorf("Expected enclosure URL with query, got: %s", first.EnclosureURL)
	}
	want := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if first.PublishedAt == nil || !first.PublishedAt.Equal(want) {
		t.Errorf("Expected published %v, got %v", want, first.PublishedAt)
	}
	if !first.Actionable() {
		t.Error("Expected first item to be actionable")
	}

	if doc.Items[1].PublishedAt != nil {
		t.Errorf("Expected unparsable date to be unknown, got %v", doc.Items[1].PublishedAt)
	}
	if doc.Items[1].GUID != "def" {
		t.Errorf("Expected document order to be kept, got %s second", doc.Items[1].GUID)
	}

	if doc.Items[2].Actionable() {
		t.Error("Expected item without enclosure to be non-actionable")
	}
}

func TestParseAtomEnclosure(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Cast</title>
  <id>urn:uuid:feed</id>
  <updated>2023-07-03T12:00:00Z</updated>
  <entry>
    <title>Entry One</title>
    <id>urn:uuid:entry-1</id>
    <published>2023-07-01T08:00:00Z</published>
    <updated>2023-07-01T08:00:00Z</updated>
    <link rel="enclosure" href="https://cdn.example.com/one.ogg" type="audio/ogg"/>
  </entry>
</feed>`

	doc, err := NewParser().Run(strings.NewReader(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if doc.Title != "Atom Cast" {
		t.Errorf("Expected title 'Atom Cast', got: %s", doc.Title)
	}
	if !doc.Hints.Empty() {
		t.Errorf("Expected no channel hints for Atom, got %+v", doc.Hints)
	}
	if len(doc.Items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(doc.Items))
	}

	item := doc.Items[0]
	if item.GUID != "urn:uuid:entry-1" {
		t.Errorf("Expected GUID from entry id, got: %s", item.GUID)
	}
	if item.EnclosureURL != "https://cdn.example.com/one.ogg" {
		t.Errorf("Expected enclosure link, got: %s", item.EnclosureURL)
	}
}

func TestParseMissingTitle(t *testing.T) {
	doc, err := NewParser().Run(strings.NewReader(`<rss version="2.0"><channel><item><guid>x</guid></item></channel></rss>`))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if doc.Title != "" {
		t.Errorf("Expected empty title, got %q", doc.Title)
	}
}

func TestParseInvalidDocument(t *testing.T) {
	_, err := NewParser().Run(strings.NewReader("this is not a feed"))
	if err == nil {
		t.Fatal("Expected error for invalid document")
	}
}
