package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-howler/app/database"
	"github.com/lysyi3m/rss-howler/app/feed"
	"github.com/lysyi3m/rss-howler/app/fetch"
	"github.com/lysyi3m/rss-howler/app/logger"
	"github.com/lysyi3m/rss-howler/app/metrics"
)

var _ FeedRunner = (*Runner)(nil)

// Summary totals one run.
type Summary struct {
	Synced      int
	NotModified int
	Moved       int
	Gone        int
	Failed      int
}

func (s Summary) Total() int {
	return s.Synced + s.NotModified + s.Gone + s.Failed
}

// Runner syncs feeds sequentially. A failing feed is logged and never stops
// the feeds after it.
type Runner struct {
	feedRepo  database.FeedRepository
	client    *fetch.Client
	parser    *feed.Parser
	processor *feed.Processor
	metrics   metrics.Recorder
}

func NewRunner(feedRepo database.FeedRepository, client *fetch.Client, parser *feed.Parser, processor *feed.Processor, recorder metrics.Recorder) *Runner {
	return &Runner{
		feedRepo:  feedRepo,
		client:    client,
		parser:    parser,
		processor: processor,
		metrics:   recorder,
	}
}

// Run syncs every enabled feed in the store, ordered by URL.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.feedRepo == nil {
		return Summary{}, fmt.Errorf("no feed store attached")
	}

	feeds, err := r.feedRepo.ListEnabledFeeds(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list enabled feeds: %w", err)
	}

	slog.DebugContext(ctx, "Syncing enabled feeds", "count", len(feeds))
	return r.RunFeeds(ctx, feeds), nil
}

func (r *Runner) RunFeeds(ctx context.Context, feeds []database.Feed) Summary {
	var summary Summary

	for _, f := range feeds {
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "Run interrupted", "remaining", len(feeds)-summary.Total())
			break
		}

		task := NewSyncFeedTask(f, r.client, r.parser, r.processor, r.feedRepo, r.metrics)
		r.executeTask(ctx, task, &summary)
	}

	slog.InfoContext(ctx, "Run completed",
		"synced", summary.Synced,
		"not_modified", summary.NotModified,
		"moved", summary.Moved,
		"gone", summary.Gone,
		"failed", summary.Failed)

	return summary
}

func (r *Runner) executeTask(ctx context.Context, task *SyncFeedTask, summary *Summary) {
	task.Start()
	taskCtx := logger.Ctx(ctx, slog.String("feed", task.GetFeedURL()), slog.String("task_id", task.GetID()))

	err := task.Execute(taskCtx)
	summary.Moved += task.Moves
	r.metrics.RecordFeedOutcome(task.Outcome)

	switch task.Outcome {
	case metrics.OutcomeSynced:
		summary.Synced++
	case metrics.OutcomeNotModified:
		summary.NotModified++
	case metrics.OutcomeGone:
		summary.Gone++
	default:
		summary.Failed++
	}

	switch {
	case err == nil:
		slog.DebugContext(taskCtx, "Task completed", "type", task.GetType(), "flags", feed.Flags(task.Feed.Flags), "duration", task.GetDuration())
	case errors.Is(err, feed.ErrFeedGone):
		slog.WarnContext(taskCtx, "Feed gone, disabled", "error", err)
	default:
		slog.ErrorContext(taskCtx, "Task failed", "type", task.GetType(), "duration", task.GetDuration(), "error", err)
	}
}
