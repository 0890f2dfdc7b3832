package overlay

import (
	"context"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	cs "github.com/webtor-io/common-services"

	"github.com/showlog-io/showlog/models"
)

// PGStore backs the overlay with PostgreSQL. Conflicting writes are
// serialized by the store's row-level atomicity; no additional locking.
type PGStore struct {
	pg *cs.PG
}

func NewPGStore(pg *cs.PG) *PGStore {
	return &PGStore{pg: pg}
}

var errNoDB = errors.New("db not initialized")

func (s *PGStore) ShowExists(ctx context.Context, showID int64) (bool, error) {
	db := s.pg.Get()
	if db == nil {
		return false, errNoDB
	}
	return models.ShowExists(ctx, db, showID)
}

func (s *PGStore) GetShow(ctx context.Context, showID int64) (*models.Show, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errNoDB
	}
	return models.GetShowByID(ctx, db, showID)
}

func (s *PGStore) AddToLibrary(ctx context.Context, userID uuid.UUID, showID int64) error {
	db := s.pg.Get()
	if db == nil {
		return errNoDB
	}
	_, err := models.AddShowToLibrary(ctx, db, userID, showID)
	return err
}

func (s *PGStore) RemoveFromLibrary(ctx context.Context, userID uuid.UUID, showID int64) (bool, error) {
	db := s.pg.Get()
	if db == nil {
		return false, errNoDB
	}
	return models.RemoveShowFromLibrary(ctx, db, userID, showID)
}

func (s *PGStore) IsInLibrary(ctx context.Context, userID uuid.UUID, showID int64) (bool, error) {
	db := s.pg.Get()
	if db == nil {
		return false, errNoDB
	}
	return models.IsInLibrary(ctx, db, userID, showID)
}

func (s *PGStore) LibraryList(ctx context.Context, userID uuid.UUID) ([]*models.Library, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errNoDB
	}
	return models.GetLibraryList(ctx, db, userID)
}

func (s *PGStore) LibraryEpisodeCounts(ctx context.Context, userID uuid.UUID) (map[int64]int, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errNoDB
	}
	return models.GetLibraryEpisodeCounts(ctx, db, userID)
}

func (s *PGStore) LibraryWatchedCounts(ctx context.Context, userID uuid.UUID) (map[int64]int, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errNoDB
	}
	return models.GetLibraryWatchedCounts(ctx, db, userID)
}

func (s *PGStore) UserOwnsEpisode(ctx context.Context, userID uuid.UUID, episodeID int64) (bool, error) {
	db := s.pg.Get()
	if db == nil {
		return false, errNoDB
	}
	return models.UserOwnsEpisode(ctx, db, userID, episodeID)
}

func (s *PGStore) ToggleWatchMark(ctx context.Context, userID uuid.UUID, episodeID int64, at time.Time) (bool, error) {
	db := s.pg.Get()
	if db == nil {
		return false, errNoDB
	}
	return models.ToggleWatchMark(ctx, db, userID, episodeID, at)
}

func (s *PGStore) EpisodesForShow(ctx context.Context, showID int64) ([]*models.Episode, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errNoDB
	}
	return models.GetEpisodesForShow(ctx, db, showID)
}

func (s *PGStore) WatchMarksForShow(ctx context.Context, userID uuid.UUID, showID int64) (map[int64]*time.Time, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errNoDB
	}
	return models.GetWatchMarksForShow(ctx, db, userID, showID)
}
