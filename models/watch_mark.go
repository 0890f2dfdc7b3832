package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// WatchMark records that a user watched an episode. A row with a null
// watched_at is an episode that was watched and then un-watched; it reads
// the same as no row at all, but keeps its identity across toggles.
type WatchMark struct {
	tableName struct{} `pg:"watch_mark"`

	UserID    uuid.UUID  `pg:"user_id,pk,type:uuid"`
	EpisodeID int64      `pg:"episode_id,pk"`
	WatchedAt *time.Time `pg:"watched_at"`
	CreatedAt time.Time  `pg:"created_at,default:now()"`
	UpdatedAt time.Time  `pg:"updated_at,default:now()"`
}

// UserOwnsEpisode reports whether the episode's show is in the user's
// library. Watch marks may only exist for owned episodes.
func UserOwnsEpisode(ctx context.Context, db *pg.DB, uID uuid.UUID, episodeID int64) (bool, error) {
	exists, err := db.Model((*Episode)(nil)).
		Context(ctx).
		Join("JOIN library AS l ON l.show_id = episode.show_id").
		Where("episode.episode_id = ?", episodeID).
		Where("l.user_id = ?", uID).
		Exists()
	if err != nil {
		return false, errors.Wrap(err, "failed to check episode ownership")
	}
	return exists, nil
}

// ToggleWatchMark flips the watched state of one (user, episode) pair and
// returns the new state. The flip happens in a single upsert, so the row
// update is serialized by the store; concurrent toggles of the same pair
// resolve last-write-wins, and different users never touch each other's
// rows.
func ToggleWatchMark(ctx context.Context, db *pg.DB, uID uuid.UUID, episodeID int64, now time.Time) (bool, error) {
	mark := &WatchMark{
		UserID:    uID,
		EpisodeID: episodeID,
		WatchedAt: &now,
	}
	_, err := db.Model(mark).
		Context(ctx).
		OnConflict("(user_id, episode_id) DO UPDATE").
		Set("watched_at = CASE WHEN watch_mark.watched_at IS NULL THEN EXCLUDED.watched_at ELSE NULL END, updated_at = now()").
		Returning("watched_at").
		Insert()
	if err != nil {
		return false, errors.Wrap(err, "failed to toggle watch mark")
	}
	return mark.WatchedAt != nil, nil
}

// GetWatchMarksForShow returns the user's marks for all episodes of one
// show, keyed by episode id. Unwatched rows (null watched_at) are
// included so callers can distinguish row presence when they care.
func GetWatchMarksForShow(ctx context.Context, db *pg.DB, uID uuid.UUID, showID int64) (map[int64]*time.Time, error) {
	var marks []*WatchMark
	err := db.Model(&marks).
		Context(ctx).
		Join("JOIN episode AS e ON e.episode_id = watch_mark.episode_id").
		Where("watch_mark.user_id = ?", uID).
		Where("e.show_id = ?", showID).
		Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch watch marks")
	}
	res := make(map[int64]*time.Time, len(marks))
	for _, m := range marks {
		res[m.EpisodeID] = m.WatchedAt
	}
	return res, nil
}
