package overlay

import (
	"context"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/showlog-io/showlog/models"
)

var (
	// ErrForbidden marks an attempt to act on a show or episode outside
	// the caller's library. This is a security boundary, not a
	// convenience check; no write happens.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks an unknown show or episode id.
	ErrNotFound = errors.New("not found")
)

// Store is the per-user overlay over the shared catalogue: library links
// and watch marks, partitioned by user id.
type Store interface {
	ShowExists(ctx context.Context, showID int64) (bool, error)
	GetShow(ctx context.Context, showID int64) (*models.Show, error)
	AddToLibrary(ctx context.Context, userID uuid.UUID, showID int64) error
	RemoveFromLibrary(ctx context.Context, userID uuid.UUID, showID int64) (bool, error)
	IsInLibrary(ctx context.Context, userID uuid.UUID, showID int64) (bool, error)
	LibraryList(ctx context.Context, userID uuid.UUID) ([]*models.Library, error)
	LibraryEpisodeCounts(ctx context.Context, userID uuid.UUID) (map[int64]int, error)
	LibraryWatchedCounts(ctx context.Context, userID uuid.UUID) (map[int64]int, error)
	UserOwnsEpisode(ctx context.Context, userID uuid.UUID, episodeID int64) (bool, error)
	ToggleWatchMark(ctx context.Context, userID uuid.UUID, episodeID int64, at time.Time) (bool, error)
	EpisodesForShow(ctx context.Context, showID int64) ([]*models.Episode, error)
	WatchMarksForShow(ctx context.Context, userID uuid.UUID, showID int64) (map[int64]*time.Time, error)
}

type Overlay struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Overlay {
	return &Overlay{
		store: store,
		now:   time.Now,
	}
}

// AddToLibrary links the user to an already synced show. Re-adding is a
// no-op. The show must be present in the catalogue, which the sync
// engine guarantees for the resolve-and-add flow.
func (s *Overlay) AddToLibrary(ctx context.Context, userID uuid.UUID, showID int64) error {
	exists, err := s.store.ShowExists(ctx, showID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return s.store.AddToLibrary(ctx, userID, showID)
}

// RemoveFromLibrary drops the link and exactly the caller's watch marks
// under the show, atomically. Other users and the shared catalogue are
// untouched.
func (s *Overlay) RemoveFromLibrary(ctx context.Context, userID uuid.UUID, showID int64) error {
	removed, err := s.store.RemoveFromLibrary(ctx, userID, showID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// ToggleWatched flips the watched state of one episode for the caller
// and returns the new state. Episodes of shows outside the caller's
// library fail with ErrForbidden before any write.
func (s *Overlay) ToggleWatched(ctx context.Context, userID uuid.UUID, episodeID int64) (bool, error) {
	owned, err := s.store.UserOwnsEpisode(ctx, userID, episodeID)
	if err != nil {
		return false, err
	}
	if !owned {
		return false, ErrForbidden
	}
	return s.store.ToggleWatchMark(ctx, userID, episodeID, s.now())
}

// LibraryItem is one show of a user's library with watch progress.
type LibraryItem struct {
	Show            *models.Show
	AddedAt         time.Time
	TotalEpisodes   int
	WatchedEpisodes int
	Percent         int
}

// Library lists the user's shows, most recently added first, with
// watched/total/percent per show.
func (s *Overlay) Library(ctx context.Context, userID uuid.UUID) ([]*LibraryItem, error) {
	list, err := s.store.LibraryList(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.LibraryEpisodeCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	watched, err := s.store.LibraryWatchedCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]*LibraryItem, 0, len(list))
	for _, lib := range list {
		item := &LibraryItem{
			Show:            lib.Show,
			AddedAt:         lib.CreatedAt,
			TotalEpisodes:   totals[lib.ShowID],
			WatchedEpisodes: watched[lib.ShowID],
		}
		item.Percent = Percent(item.WatchedEpisodes, item.TotalEpisodes)
		items = append(items, item)
	}
	return items, nil
}

// ShowDetail returns one show of the user's library with its episodes
// grouped by season and per-season progress. Shows outside the library
// fail with ErrForbidden.
func (s *Overlay) ShowDetail(ctx context.Context, userID uuid.UUID, showID int64) (*ShowDetail, error) {
	linked, err := s.store.IsInLibrary(ctx, userID, showID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, ErrForbidden
	}
	show, err := s.store.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	if show == nil {
		return nil, ErrNotFound
	}
	episodes, err := s.store.EpisodesForShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	marks, err := s.store.WatchMarksForShow(ctx, userID, showID)
	if err != nil {
		return nil, err
	}
	return BuildShowDetail(show, episodes, marks), nil
}
