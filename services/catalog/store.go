package catalog

import (
	"context"

	"github.com/pkg/errors"
	cs "github.com/webtor-io/common-services"

	"github.com/showlog-io/showlog/models"
)

// PGStore backs the catalogue with PostgreSQL.
type PGStore struct {
	pg *cs.PG
}

func NewPGStore(pg *cs.PG) *PGStore {
	return &PGStore{pg: pg}
}

func (s *PGStore) GetShow(ctx context.Context, showID int64) (*models.Show, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("db not initialized")
	}
	return models.GetShowByID(ctx, db, showID)
}

func (s *PGStore) CountEpisodes(ctx context.Context, showID int64) (int, error) {
	db := s.pg.Get()
	if db == nil {
		return 0, errors.New("db not initialized")
	}
	return models.CountEpisodesForShow(ctx, db, showID)
}

func (s *PGStore) MergeCatalogue(ctx context.Context, show *models.Show, episodes []*models.Episode) error {
	db := s.pg.Get()
	if db == nil {
		return errors.New("db not initialized")
	}
	return models.MergeCatalogue(ctx, db, show, episodes)
}
