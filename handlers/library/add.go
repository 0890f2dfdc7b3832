package library

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/showlog-io/showlog/models"
	"github.com/showlog-io/showlog/services/auth"
	"github.com/showlog-io/showlog/services/catalog"
)

type addResponse struct {
	Status     string              `json:"status"`
	Show       *showView           `json:"show,omitempty"`
	Candidates []catalog.Candidate `json:"candidates,omitempty"`
}

// add implements resolve-and-add: a free-text query either auto-adds a
// single match or returns the candidate set; a direct show_id selection
// skips search and adds that show.
func (s *Handler) add(c *gin.Context) {
	u := auth.GetUserFromContext(c)
	if !u.HasAuth() {
		c.Status(http.StatusUnauthorized)
		return
	}
	ctx := c.Request.Context()

	var show *models.Show
	if rawID, ok := c.GetPostForm("show_id"); ok {
		externalID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid show id"})
			return
		}
		show, err = s.catalog.Sync(ctx, externalID)
		if err != nil {
			s.abortWithCatalogError(c, err)
			return
		}
	} else {
		res, err := s.catalog.Resolve(ctx, c.PostForm("query"))
		if err != nil {
			s.abortWithCatalogError(c, err)
			return
		}
		if res.Show == nil {
			c.JSON(http.StatusOK, addResponse{
				Status:     "candidates",
				Candidates: res.Candidates,
			})
			return
		}
		show = res.Show
	}

	if err := s.overlay.AddToLibrary(ctx, u.ID, show.ShowID); err != nil {
		log.WithError(err).Error("failed to add show to library")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, addResponse{
		Status: "added",
		Show:   newShowView(show),
	})
}

func (s *Handler) abortWithCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no matching show"})
	case errors.Is(err, catalog.ErrUpstreamUnavailable):
		log.WithError(err).Error("catalogue unavailable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalogue service unavailable"})
	default:
		log.WithError(err).Error("failed to resolve show")
		c.Status(http.StatusInternalServerError)
	}
}
