package library

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/showlog-io/showlog/services/auth"
)

type indexItem struct {
	Show            *showView `json:"show"`
	AddedAt         time.Time `json:"addedAt"`
	AddedAgo        string    `json:"addedAgo"`
	TotalEpisodes   int       `json:"totalEpisodes"`
	WatchedEpisodes int       `json:"watchedEpisodes"`
	Percent         int       `json:"percent"`
}

type indexResponse struct {
	Items []*indexItem `json:"items"`
}

func (s *Handler) index(c *gin.Context) {
	u := auth.GetUserFromContext(c)
	if !u.HasAuth() {
		c.Status(http.StatusUnauthorized)
		return
	}
	items, err := s.overlay.Library(c.Request.Context(), u.ID)
	if err != nil {
		log.WithError(err).Error("failed to fetch library")
		c.Status(http.StatusInternalServerError)
		return
	}
	res := indexResponse{
		Items: make([]*indexItem, 0, len(items)),
	}
	for _, item := range items {
		res.Items = append(res.Items, &indexItem{
			Show:            newShowView(item.Show),
			AddedAt:         item.AddedAt,
			AddedAgo:        humanize.Time(item.AddedAt),
			TotalEpisodes:   item.TotalEpisodes,
			WatchedEpisodes: item.WatchedEpisodes,
			Percent:         item.Percent,
		})
	}
	c.JSON(http.StatusOK, res)
}
