package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
)

// Show is a shared catalogue row keyed by the external catalogue id.
// It is never duplicated per user and never deleted by a single user's
// library removal.
type Show struct {
	tableName struct{} `pg:"show"`

	ShowID    int64     `pg:"show_id,pk"`
	Name      string    `pg:"name,notnull"`
	ImageURL  *string   `pg:"image_url"`
	Summary   *string   `pg:"summary"`
	CreatedAt time.Time `pg:"created_at,default:now()"`
	UpdatedAt time.Time `pg:"updated_at,default:now()"`

	Episodes []*Episode `pg:"rel:has-many,fk:show_id"`
}

func GetShowByID(ctx context.Context, db *pg.DB, showID int64) (*Show, error) {
	var show Show
	err := db.Model(&show).
		Context(ctx).
		Where("show_id = ?", showID).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch show")
	}
	return &show, nil
}

func ShowExists(ctx context.Context, db *pg.DB, showID int64) (bool, error) {
	exists, err := db.Model((*Show)(nil)).
		Context(ctx).
		Where("show_id = ?", showID).
		Exists()
	if err != nil {
		return false, errors.Wrap(err, "failed to check show existence")
	}
	return exists, nil
}

// MergeCatalogue inserts a show together with its full episode list in a
// single transaction. Rows whose external id is already present are left
// untouched, so two racing first-syncs of the same show converge on
// identical state. The show row only becomes visible together with its
// episodes.
func MergeCatalogue(ctx context.Context, db *pg.DB, show *Show, episodes []*Episode) error {
	tx, err := db.BeginContext(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin catalogue merge")
	}
	defer func() {
		_ = tx.Close()
	}()

	_, err = tx.Model(show).
		Context(ctx).
		OnConflict("DO NOTHING").
		Insert()
	if err != nil {
		return errors.Wrap(err, "failed to insert show")
	}

	if len(episodes) > 0 {
		_, err = tx.Model(&episodes).
			Context(ctx).
			OnConflict("DO NOTHING").
			Insert()
		if err != nil {
			return errors.Wrap(err, "failed to insert episodes")
		}
	}

	return tx.Commit()
}
