package show

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showlog-io/showlog/models"
	"github.com/showlog-io/showlog/services/auth"
	"github.com/showlog-io/showlog/services/overlay"
)

type mockOverlay struct {
	detail    *overlay.ShowDetail
	detailErr error
	watched   bool
	toggleErr error
	toggled   []int64
}

func (m *mockOverlay) ShowDetail(_ context.Context, userID uuid.UUID, showID int64) (*overlay.ShowDetail, error) {
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	return m.detail, nil
}

func (m *mockOverlay) ToggleWatched(_ context.Context, userID uuid.UUID, episodeID int64) (bool, error) {
	if m.toggleErr != nil {
		return false, m.toggleErr
	}
	m.toggled = append(m.toggled, episodeID)
	return m.watched, nil
}

func newTestRouter(ovl Overlay, user *auth.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if user != nil {
		r.Use(func(c *gin.Context) {
			auth.SetContextUser(c, user)
		})
	}
	h := &Handler{overlay: ovl}
	r.GET("/lib/shows/:show_id", h.detail)
	r.POST("/lib/episodes/:episode_id/toggle", h.toggle)
	return r
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func testUser() *auth.User {
	return &auth.User{ID: uuid.NewV4(), Username: "alice"}
}

func TestToggle(t *testing.T) {
	t.Run("anonymous request is rejected", func(t *testing.T) {
		r := newTestRouter(&mockOverlay{}, nil)
		w := do(r, "POST", "/lib/episodes/100/toggle")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns the new watched state", func(t *testing.T) {
		ovl := &mockOverlay{watched: true}
		r := newTestRouter(ovl, testUser())

		w := do(r, "POST", "/lib/episodes/100/toggle")
		require.Equal(t, http.StatusOK, w.Code)

		var res map[string]bool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res["watched"])
		assert.Equal(t, []int64{100}, ovl.toggled)
	})

	t.Run("episode outside the library is forbidden", func(t *testing.T) {
		ovl := &mockOverlay{toggleErr: overlay.ErrForbidden}
		r := newTestRouter(ovl, testUser())

		w := do(r, "POST", "/lib/episodes/100/toggle")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("malformed episode id is rejected", func(t *testing.T) {
		r := newTestRouter(&mockOverlay{}, testUser())
		w := do(r, "POST", "/lib/episodes/nope/toggle")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDetail(t *testing.T) {
	one := 1
	n1 := 1
	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("renders seasons with per-episode state", func(t *testing.T) {
		ovl := &mockOverlay{detail: &overlay.ShowDetail{
			Show: &models.Show{ShowID: 42, Name: "Firefly"},
			Seasons: []*overlay.SeasonProgress{
				{
					SeasonNumber: &one,
					Episodes: []*overlay.EpisodeView{
						{
							Episode:   &models.Episode{EpisodeID: 100, ShowID: 42, Season: &one, Number: &n1, Title: "Serenity"},
							Watched:   true,
							WatchedAt: &at,
						},
					},
					Watched: 1,
					Total:   1,
					Percent: 100,
				},
			},
			Watched: 1,
			Total:   1,
			Percent: 100,
		}}
		r := newTestRouter(ovl, testUser())

		w := do(r, "GET", "/lib/shows/42")
		require.Equal(t, http.StatusOK, w.Code)

		var res detailResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.NotNil(t, res.Show)
		assert.Equal(t, "Firefly", res.Show.Name)
		require.Len(t, res.Seasons, 1)
		require.Len(t, res.Seasons[0].Episodes, 1)
		ep := res.Seasons[0].Episodes[0]
		assert.Equal(t, "Serenity", ep.Title)
		assert.True(t, ep.Watched)
		require.NotNil(t, ep.WatchedAt)
		assert.Equal(t, 100, res.Percent)
	})

	t.Run("show outside the library is forbidden", func(t *testing.T) {
		ovl := &mockOverlay{detailErr: overlay.ErrForbidden}
		r := newTestRouter(ovl, testUser())

		w := do(r, "GET", "/lib/shows/42")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown show is not found", func(t *testing.T) {
		ovl := &mockOverlay{detailErr: overlay.ErrNotFound}
		r := newTestRouter(ovl, testUser())

		w := do(r, "GET", "/lib/shows/42")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("anonymous request is rejected", func(t *testing.T) {
		r := newTestRouter(&mockOverlay{}, nil)
		w := do(r, "GET", "/lib/shows/42")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
