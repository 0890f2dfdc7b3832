package catalog

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showlog-io/showlog/models"
	"github.com/showlog-io/showlog/services/tvmaze"
)

// --- Mock implementations ---

type mockClient struct {
	searchResults []tvmaze.SearchResult
	searchErr     error
	shows         map[int64]*tvmaze.Show
	showErr       error
	episodes      map[int64][]tvmaze.Episode
	episodesErr   error

	searchCalls   int
	showCalls     int
	episodesCalls int
}

func (m *mockClient) SearchShows(_ context.Context, _ string) ([]tvmaze.SearchResult, error) {
	m.searchCalls++
	return m.searchResults, m.searchErr
}

func (m *mockClient) GetShow(_ context.Context, externalID int64) (*tvmaze.Show, error) {
	m.showCalls++
	if m.showErr != nil {
		return nil, m.showErr
	}
	return m.shows[externalID], nil
}

func (m *mockClient) GetEpisodes(_ context.Context, externalID int64) ([]tvmaze.Episode, error) {
	m.episodesCalls++
	if m.episodesErr != nil {
		return nil, m.episodesErr
	}
	return m.episodes[externalID], nil
}

type mockStore struct {
	shows    map[int64]*models.Show
	episodes map[int64][]*models.Episode
	merges   int
	mergeErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		shows:    make(map[int64]*models.Show),
		episodes: make(map[int64][]*models.Episode),
	}
}

func (m *mockStore) GetShow(_ context.Context, showID int64) (*models.Show, error) {
	return m.shows[showID], nil
}

func (m *mockStore) CountEpisodes(_ context.Context, showID int64) (int, error) {
	return len(m.episodes[showID]), nil
}

func (m *mockStore) MergeCatalogue(_ context.Context, show *models.Show, episodes []*models.Episode) error {
	if m.mergeErr != nil {
		return m.mergeErr
	}
	m.merges++
	if _, ok := m.shows[show.ShowID]; !ok {
		m.shows[show.ShowID] = show
	}
	known := make(map[int64]bool, len(m.episodes[show.ShowID]))
	for _, e := range m.episodes[show.ShowID] {
		known[e.EpisodeID] = true
	}
	for _, e := range episodes {
		if !known[e.EpisodeID] {
			m.episodes[show.ShowID] = append(m.episodes[show.ShowID], e)
		}
	}
	return nil
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func upstreamShow(id int64, name string, premiered string) *tvmaze.Show {
	s := &tvmaze.Show{ID: id, Name: name}
	if premiered != "" {
		s.Premiered = strPtr(premiered)
	}
	return s
}

// --- Tests ---

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query fails without search", func(t *testing.T) {
		client := &mockClient{}
		ctl := New(client, newMockStore())

		_, err := ctl.Resolve(ctx, "   ")
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Zero(t, client.searchCalls)
	})

	t.Run("search failure surfaces as upstream unavailable", func(t *testing.T) {
		client := &mockClient{searchErr: errors.New("timeout")}
		store := newMockStore()
		ctl := New(client, store)

		_, err := ctl.Resolve(ctx, "doctor who")
		require.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.Zero(t, store.merges)
	})

	t.Run("zero matches fail with not found and no writes", func(t *testing.T) {
		client := &mockClient{}
		store := newMockStore()
		ctl := New(client, store)

		_, err := ctl.Resolve(ctx, "no such show")
		require.ErrorIs(t, err, ErrNotFound)
		assert.Zero(t, store.merges)
	})

	t.Run("single match auto-selects and syncs", func(t *testing.T) {
		client := &mockClient{
			searchResults: []tvmaze.SearchResult{
				{Score: 1, Show: *upstreamShow(42, "Firefly", "2002-09-20")},
			},
			shows: map[int64]*tvmaze.Show{
				42: upstreamShow(42, "Firefly", "2002-09-20"),
			},
			episodes: map[int64][]tvmaze.Episode{
				42: {
					{ID: 1, Season: intPtr(1), Number: intPtr(1), Name: "Serenity"},
					{ID: 2, Season: intPtr(1), Number: intPtr(2), Name: "The Train Job"},
				},
			},
		}
		store := newMockStore()
		ctl := New(client, store)

		res, err := ctl.Resolve(ctx, "firefly")
		require.NoError(t, err)
		require.NotNil(t, res.Show)
		assert.Empty(t, res.Candidates)
		assert.Equal(t, int64(42), res.Show.ShowID)
		assert.Equal(t, 1, store.merges)
		assert.Len(t, store.episodes[42], 2)
	})

	t.Run("multiple matches return ranked candidates and no writes", func(t *testing.T) {
		client := &mockClient{
			searchResults: []tvmaze.SearchResult{
				{Score: 3, Show: *upstreamShow(210, "Doctor Who", "2005-03-26")},
				{Score: 2, Show: *upstreamShow(763, "Doctor Who", "1963-11-23")},
				{Score: 1, Show: *upstreamShow(900, "Doctor Who", "")},
			},
		}
		store := newMockStore()
		ctl := New(client, store)

		res, err := ctl.Resolve(ctx, "doctor who")
		require.NoError(t, err)
		assert.Nil(t, res.Show)
		require.Len(t, res.Candidates, 3)
		assert.Equal(t, int64(210), res.Candidates[0].ExternalID)
		require.NotNil(t, res.Candidates[0].PremiereYear)
		assert.Equal(t, 2005, *res.Candidates[0].PremiereYear)
		require.NotNil(t, res.Candidates[1].PremiereYear)
		assert.Equal(t, 1963, *res.Candidates[1].PremiereYear)
		assert.Nil(t, res.Candidates[2].PremiereYear)
		assert.Zero(t, store.merges)
		assert.Empty(t, store.shows)
	})
}

func TestSync(t *testing.T) {
	ctx := context.Background()

	episodes := []tvmaze.Episode{
		{ID: 10, Season: intPtr(1), Number: intPtr(1), Name: "Pilot", AirDate: strPtr("2008-01-20")},
		{ID: 11, Season: intPtr(1), Number: intPtr(2), Name: "Cat's in the Bag...", AirDate: strPtr("2008-01-27")},
		{ID: 12, Name: "Special"},
	}

	newClient := func() *mockClient {
		return &mockClient{
			shows: map[int64]*tvmaze.Show{
				81: upstreamShow(81, "Breaking Bad", "2008-01-20"),
			},
			episodes: map[int64][]tvmaze.Episode{81: episodes},
		}
	}

	t.Run("first sync mirrors show and full episode list", func(t *testing.T) {
		client := newClient()
		store := newMockStore()
		ctl := New(client, store)

		show, err := ctl.Sync(ctx, 81)
		require.NoError(t, err)
		assert.Equal(t, int64(81), show.ShowID)
		assert.Equal(t, "Breaking Bad", show.Name)
		assert.Len(t, store.episodes[81], 3)

		special := store.episodes[81][2]
		assert.Nil(t, special.Season)
		assert.Nil(t, special.Number)
		assert.Nil(t, special.AirDate)
	})

	t.Run("second sync is a no-op without upstream calls", func(t *testing.T) {
		client := newClient()
		store := newMockStore()
		ctl := New(client, store)

		_, err := ctl.Sync(ctx, 81)
		require.NoError(t, err)
		_, err = ctl.Sync(ctx, 81)
		require.NoError(t, err)

		assert.Equal(t, 1, store.merges)
		assert.Equal(t, 1, client.showCalls)
		assert.Len(t, store.shows, 1)
		assert.Len(t, store.episodes[81], 3)
	})

	t.Run("show present with zero episodes is re-synced", func(t *testing.T) {
		client := newClient()
		store := newMockStore()
		store.shows[81] = &models.Show{ShowID: 81, Name: "Breaking Bad"}
		ctl := New(client, store)

		_, err := ctl.Sync(ctx, 81)
		require.NoError(t, err)
		assert.Equal(t, 1, client.showCalls)
		assert.Len(t, store.episodes[81], 3)
	})

	t.Run("unknown id fails with not found", func(t *testing.T) {
		client := newClient()
		store := newMockStore()
		ctl := New(client, store)

		_, err := ctl.Sync(ctx, 999)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Zero(t, store.merges)
	})

	t.Run("episode fetch failure discards the whole merge", func(t *testing.T) {
		client := newClient()
		client.episodesErr = errors.New("connection reset")
		store := newMockStore()
		ctl := New(client, store)

		_, err := ctl.Sync(ctx, 81)
		require.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.Zero(t, store.merges)
		assert.Empty(t, store.shows)
	})
}
