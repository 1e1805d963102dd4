package feed

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type subscriptionFile struct {
	Feeds []subscriptionEntry `yaml:"feeds"`
}

type subscriptionEntry struct {
	URL   string `yaml:"url"`
	Flags *int   `yaml:"flags"`
	Since string `yaml:"since"` // YYYY-MM-DD
}

// DefaultSubscriptionFlags applies to entries that do not set flags.
const DefaultSubscriptionFlags = FlagFetchFeed | FlagUpdateCatalog

// LoadSubscriptions reads a YAML import file of the form
//
//	feeds:
//	  - url: https://example.com/podcast.xml
//	    flags: 3
//	    since: 2024-01-01
func LoadSubscriptions(path string) ([]Subscription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseSubscriptions(data)
}

func ParseSubscriptions(data []byte) ([]Subscription, error) {
	var file subscriptionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	subs := make([]Subscription, 0, len(file.Feeds))
	seen := make(map[string]bool, len(file.Feeds))

	for i, entry := range file.Feeds {
		sub, err := entry.validate()
		if err != nil {
			return nil, fmt.Errorf("invalid feed at index %d: %w", i, err)
		}
		if seen[sub.URL] {
			return nil, fmt.Errorf("invalid feed at index %d: duplicate url %s", i, sub.URL)
		}
		seen[sub.URL] = true
		subs = append(subs, sub)
	}

	return subs, nil
}

func (e subscriptionEntry) validate() (Subscription, error) {
	rawURL := strings.TrimSpace(e.URL)
	if rawURL == "" {
		return Subscription{}, fmt.Errorf("feed URL is required")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Subscription{}, fmt.Errorf("malformed feed URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Subscription{}, fmt.Errorf("feed URL must be absolute http(s): %s", rawURL)
	}

	sub := Subscription{
		URL:   rawURL,
		Flags: DefaultSubscriptionFlags,
	}
	if e.Flags != nil {
		sub.Flags = Flags(*e.Flags)
	}

	if e.Since != "" {
		since, err := time.Parse(time.DateOnly, e.Since)
		if err != nil {
			return Subscription{}, fmt.Errorf("since must be YYYY-MM-DD: %w", err)
		}
		sub.Since = &since
	}

	return sub, nil
}
