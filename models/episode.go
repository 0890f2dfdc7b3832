package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
)

// Episode is a shared catalogue row keyed by the external episode id.
// Season and number are nullable: some entries are unordered specials.
type Episode struct {
	tableName struct{} `pg:"episode"`

	EpisodeID int64      `pg:"episode_id,pk"`
	ShowID    int64      `pg:"show_id,notnull"`
	Season    *int       `pg:"season"`
	Number    *int       `pg:"number"`
	Title     string     `pg:"title,notnull,use_zero"`
	AirDate   *time.Time `pg:"air_date"`
	Runtime   *int       `pg:"runtime"`
	CreatedAt time.Time  `pg:"created_at,default:now()"`

	Show *Show `pg:"rel:has-one,fk:show_id"`
}

// GetEpisodesForShow returns the show's episodes in presentation order:
// season ascending, episode number ascending, unnumbered entries after
// all numbered ones, external id as the final tie-break.
func GetEpisodesForShow(ctx context.Context, db *pg.DB, showID int64) ([]*Episode, error) {
	var episodes []*Episode
	err := db.Model(&episodes).
		Context(ctx).
		Where("show_id = ?", showID).
		OrderExpr("season ASC NULLS LAST").
		OrderExpr("number ASC NULLS LAST").
		OrderExpr("episode_id ASC").
		Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch episodes")
	}
	return episodes, nil
}

func CountEpisodesForShow(ctx context.Context, db *pg.DB, showID int64) (int, error) {
	count, err := db.Model((*Episode)(nil)).
		Context(ctx).
		Where("show_id = ?", showID).
		Count()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count episodes")
	}
	return count, nil
}

func GetEpisodeByID(ctx context.Context, db *pg.DB, episodeID int64) (*Episode, error) {
	var episode Episode
	err := db.Model(&episode).
		Context(ctx).
		Where("episode_id = ?", episodeID).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch episode")
	}
	return &episode, nil
}
