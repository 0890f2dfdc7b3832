package catalog

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/showlog-io/showlog/models"
	"github.com/showlog-io/showlog/services/tvmaze"
)

var (
	// ErrInvalidInput marks an empty or malformed query. No state change.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a query or id with no catalogue match. No state change.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable marks a catalogue service failure. Any
	// partial fetch is discarded, never partially merged.
	ErrUpstreamUnavailable = errors.New("catalogue service unavailable")
)

// Client is the consumed slice of the external catalogue contract.
type Client interface {
	SearchShows(ctx context.Context, query string) ([]tvmaze.SearchResult, error)
	GetShow(ctx context.Context, externalID int64) (*tvmaze.Show, error)
	GetEpisodes(ctx context.Context, externalID int64) ([]tvmaze.Episode, error)
}

// Store is the durable side of the catalogue: deduplicated shows and
// episodes shared by every user.
type Store interface {
	GetShow(ctx context.Context, showID int64) (*models.Show, error)
	CountEpisodes(ctx context.Context, showID int64) (int, error)
	MergeCatalogue(ctx context.Context, show *models.Show, episodes []*models.Episode) error
}

// Candidate is one entry of a ranked disambiguation set.
type Candidate struct {
	ExternalID   int64   `json:"externalId"`
	Name         string  `json:"name"`
	PremiereYear *int    `json:"premiereYear,omitempty"`
	ImageURL     *string `json:"imageUrl,omitempty"`
}

// Resolution is the outcome of resolving a free-text query. Exactly one
// of Show and Candidates is set: a single match auto-selects and syncs,
// multiple matches are returned for the user to choose from.
type Resolution struct {
	Show       *models.Show
	Candidates []Candidate
}

type Catalog struct {
	client Client
	store  Store
}

func New(client Client, store Store) *Catalog {
	return &Catalog{
		client: client,
		store:  store,
	}
}

// Resolve turns a free-text title into a synced show or a ranked
// candidate list. Zero matches fail with ErrNotFound; a candidate list
// causes no catalogue writes.
func (s *Catalog) Resolve(ctx context.Context, query string) (*Resolution, error) {
	q := strings.TrimSpace(norm.NFC.String(query))
	if q == "" {
		return nil, ErrInvalidInput
	}
	results, err := s.client.SearchShows(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(ErrUpstreamUnavailable, "search failed: %v", err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	if len(results) == 1 {
		show, err := s.Sync(ctx, results[0].Show.ID)
		if err != nil {
			return nil, err
		}
		return &Resolution{Show: show}, nil
	}
	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		c := Candidate{
			ExternalID:   r.Show.ID,
			Name:         r.Show.Name,
			PremiereYear: r.Show.PremiereYear(),
		}
		if r.Show.Image != nil {
			img := r.Show.Image.Medium
			c.ImageURL = &img
		}
		candidates = append(candidates, c)
	}
	return &Resolution{Candidates: candidates}, nil
}

// Sync idempotently mirrors one external show and its full episode list
// into the local catalogue. A show already present with episodes is
// returned as is; a present show with zero episodes is treated as an
// interrupted first sync and re-merged. The merge lands fully or not at
// all, and duplicate rows are silently absorbed, so concurrent syncs of
// the same id converge without locking.
func (s *Catalog) Sync(ctx context.Context, externalID int64) (*models.Show, error) {
	existing, err := s.store.GetShow(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		n, err := s.store.CountEpisodes(ctx, externalID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return existing, nil
		}
		log.Infof("show %v present with no episodes, re-syncing", externalID)
	}

	upstream, err := s.client.GetShow(ctx, externalID)
	if err != nil {
		return nil, errors.Wrapf(ErrUpstreamUnavailable, "show fetch failed: %v", err)
	}
	if upstream == nil {
		return nil, ErrNotFound
	}
	upstreamEpisodes, err := s.client.GetEpisodes(ctx, externalID)
	if err != nil {
		return nil, errors.Wrapf(ErrUpstreamUnavailable, "episode fetch failed: %v", err)
	}

	show := showFromUpstream(upstream)
	episodes := episodesFromUpstream(show.ShowID, upstreamEpisodes)
	if err := s.store.MergeCatalogue(ctx, show, episodes); err != nil {
		return nil, err
	}
	log.Infof("synced show %v (%v) with %v episodes", show.ShowID, show.Name, len(episodes))

	// Existing metadata is authoritative; re-read so a lost insert race
	// still returns the canonical row.
	stored, err := s.store.GetShow(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return show, nil
	}
	return stored, nil
}
