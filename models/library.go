package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// Library links a user to a show they added. The shared show and episode
// rows are never duplicated per user; this composite-key row is the only
// per-user state besides watch marks.
type Library struct {
	tableName struct{} `pg:"library"`

	UserID    uuid.UUID `pg:"user_id,pk,type:uuid"`
	ShowID    int64     `pg:"show_id,pk"`
	CreatedAt time.Time `pg:"created_at,default:now()"`

	Show *Show `pg:"rel:has-one,fk:show_id"`
}

func IsInLibrary(ctx context.Context, db *pg.DB, uID uuid.UUID, showID int64) (bool, error) {
	exists, err := db.Model((*Library)(nil)).
		Context(ctx).
		Where("user_id = ? AND show_id = ?", uID, showID).
		Exists()
	if err != nil {
		return false, errors.Wrap(err, "failed to check library membership")
	}
	return exists, nil
}

// AddShowToLibrary is idempotent: re-adding an already linked show is a
// no-op, not an error.
func AddShowToLibrary(ctx context.Context, db *pg.DB, uID uuid.UUID, showID int64) (*Library, error) {
	lib := &Library{
		UserID:    uID,
		ShowID:    showID,
		CreatedAt: time.Now(),
	}
	_, err := db.Model(lib).
		Context(ctx).
		OnConflict("DO NOTHING").
		Insert()
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert library entry")
	}
	return lib, nil
}

// RemoveShowFromLibrary deletes the caller's watch marks under the show
// and the library link in one transaction. The shared show and episode
// rows and every other user's marks are untouched. Returns false when the
// user had not added the show.
func RemoveShowFromLibrary(ctx context.Context, db *pg.DB, uID uuid.UUID, showID int64) (bool, error) {
	tx, err := db.BeginContext(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to begin library removal")
	}
	defer func() {
		_ = tx.Close()
	}()

	_, err = tx.Model((*WatchMark)(nil)).
		Context(ctx).
		Where("user_id = ?", uID).
		Where("episode_id IN (SELECT episode_id FROM episode WHERE show_id = ?)", showID).
		Delete()
	if err != nil {
		return false, errors.Wrap(err, "failed to delete watch marks")
	}

	res, err := tx.Model((*Library)(nil)).
		Context(ctx).
		Where("user_id = ? AND show_id = ?", uID, showID).
		Delete()
	if err != nil {
		return false, errors.Wrap(err, "failed to delete library entry")
	}

	if err := tx.Commit(); err != nil {
		return false, errors.Wrap(err, "failed to commit library removal")
	}
	return res.RowsAffected() > 0, nil
}

// GetLibraryList returns the user's shows, most recently added first.
func GetLibraryList(ctx context.Context, db *pg.DB, uID uuid.UUID) ([]*Library, error) {
	var list []*Library
	err := db.Model(&list).
		Context(ctx).
		Where("library.user_id = ?", uID).
		Relation("Show").
		OrderExpr("library.created_at DESC").
		Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch library list")
	}
	return list, nil
}

type showCount struct {
	ShowID int64
	N      int
}

// GetLibraryEpisodeCounts returns total episode counts per show in the
// user's library.
func GetLibraryEpisodeCounts(ctx context.Context, db *pg.DB, uID uuid.UUID) (map[int64]int, error) {
	var counts []showCount
	err := db.Model((*Episode)(nil)).
		Context(ctx).
		ColumnExpr("episode.show_id AS show_id").
		ColumnExpr("count(*) AS n").
		Join("JOIN library AS l ON l.show_id = episode.show_id").
		Where("l.user_id = ?", uID).
		GroupExpr("episode.show_id").
		Select(&counts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count library episodes")
	}
	res := make(map[int64]int, len(counts))
	for _, c := range counts {
		res[c.ShowID] = c.N
	}
	return res, nil
}

// GetLibraryWatchedCounts returns per show counts of the user's episodes
// watched (non-null watched_at only).
func GetLibraryWatchedCounts(ctx context.Context, db *pg.DB, uID uuid.UUID) (map[int64]int, error) {
	var counts []showCount
	err := db.Model((*WatchMark)(nil)).
		Context(ctx).
		ColumnExpr("e.show_id AS show_id").
		ColumnExpr("count(*) AS n").
		Join("JOIN episode AS e ON e.episode_id = watch_mark.episode_id").
		Where("watch_mark.user_id = ?", uID).
		Where("watch_mark.watched_at IS NOT NULL").
		GroupExpr("e.show_id").
		Select(&counts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count watched episodes")
	}
	res := make(map[int64]int, len(counts))
	for _, c := range counts {
		res[c.ShowID] = c.N
	}
	return res, nil
}
