package show

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/showlog-io/showlog/models"
	"github.com/showlog-io/showlog/services/auth"
	"github.com/showlog-io/showlog/services/overlay"
)

type showView struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl,omitempty"`
	Summary  *string `json:"summary,omitempty"`
}

type episodeView struct {
	ID        int64      `json:"id"`
	Season    *int       `json:"season"`
	Number    *int       `json:"number"`
	Title     string     `json:"title"`
	AirDate   *time.Time `json:"airDate,omitempty"`
	Runtime   *int       `json:"runtimeMinutes,omitempty"`
	Watched   bool       `json:"watched"`
	WatchedAt *time.Time `json:"watchedAt,omitempty"`
}

type seasonView struct {
	SeasonNumber *int           `json:"seasonNumber"`
	Episodes     []*episodeView `json:"episodes"`
	Watched      int            `json:"watched"`
	Total        int            `json:"total"`
	Percent      int            `json:"percent"`
}

type detailResponse struct {
	Show    *showView     `json:"show"`
	Seasons []*seasonView `json:"seasons"`
	Watched int           `json:"watched"`
	Total   int           `json:"total"`
	Percent int           `json:"percent"`
}

func (s *Handler) detail(c *gin.Context) {
	u := auth.GetUserFromContext(c)
	if !u.HasAuth() {
		c.Status(http.StatusUnauthorized)
		return
	}
	showID, err := strconv.ParseInt(c.Param("show_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid show id"})
		return
	}
	detail, err := s.overlay.ShowDetail(c.Request.Context(), u.ID, showID)
	if errors.Is(err, overlay.ErrForbidden) {
		c.Status(http.StatusForbidden)
		return
	}
	if errors.Is(err, overlay.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown show"})
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to fetch show detail")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, newDetailResponse(detail))
}

func newDetailResponse(d *overlay.ShowDetail) *detailResponse {
	res := &detailResponse{
		Show:    newShowView(d.Show),
		Seasons: make([]*seasonView, 0, len(d.Seasons)),
		Watched: d.Watched,
		Total:   d.Total,
		Percent: d.Percent,
	}
	for _, season := range d.Seasons {
		sv := &seasonView{
			SeasonNumber: season.SeasonNumber,
			Episodes:     make([]*episodeView, 0, len(season.Episodes)),
			Watched:      season.Watched,
			Total:        season.Total,
			Percent:      season.Percent,
		}
		for _, e := range season.Episodes {
			sv.Episodes = append(sv.Episodes, &episodeView{
				ID:        e.Episode.EpisodeID,
				Season:    e.Episode.Season,
				Number:    e.Episode.Number,
				Title:     e.Episode.Title,
				AirDate:   e.Episode.AirDate,
				Runtime:   e.Episode.Runtime,
				Watched:   e.Watched,
				WatchedAt: e.WatchedAt,
			})
		}
		res.Seasons = append(res.Seasons, sv)
	}
	return res
}

func newShowView(s *models.Show) *showView {
	if s == nil {
		return nil
	}
	return &showView{
		ID:       s.ShowID,
		Name:     s.Name,
		ImageURL: s.ImageURL,
		Summary:  s.Summary,
	}
}
