package tasks

import (
	"context"

	"github.com/lysyi3m/rss-howler/app/database"
)

// FeedRunner drives sync tasks one feed at a time.
// Used by the main application for both store and ad-hoc targets.
//
//	runner := NewRunner(feedRepo, client, parser, processor, collector)
//	summary, err := runner.Run(ctx)
type FeedRunner interface {
	Run(ctx context.Context) (Summary, error)
	RunFeeds(ctx context.Context, feeds []database.Feed) Summary
}
