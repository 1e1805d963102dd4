package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
)

var _ ItemRepository = (*ItemRepo)(nil)

// ItemRepo handles database operations for seen items
type ItemRepo struct {
	db *sqlx.DB
}

func NewItemRepository(db *sqlx.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

func (r *ItemRepo) HasSeen(ctx context.Context, guid string) (bool, error) {
	const q = `SELECT COUNT(*) FROM seen_items WHERE guid = ?;`

	var count int
	if err := r.db.GetContext(ctx, &count, q, guid); err != nil {
		return false, fmt.Errorf("failed to check seen item: %w", err)
	}

	return count > 0, nil
}

// RecordSeen inserts the item once; a second insert for the same GUID
// returns ErrConflict.
func (r *ItemRepo) RecordSeen(ctx context.Context, item SeenItem) error {
	const q = `INSERT INTO seen_items (guid, enclosure_url, title, feed_title, downloaded_at)
	VALUES (:guid, :enclosure_url, :title, :feed_title, :downloaded_at);`

	_, err := r.db.NamedExecContext(ctx, q, item)
	if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) &&
		(sqliteErr.Code() == sqliteConstraintPrimaryKey || sqliteErr.Code() == sqliteConstraintUnique) {
		return fmt.Errorf("item %s already recorded: %w", item.GUID, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to record seen item: %w", err)
	}

	return nil
}
