package show

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/showlog-io/showlog/services/auth"
	"github.com/showlog-io/showlog/services/overlay"
)

func (s *Handler) toggle(c *gin.Context) {
	u := auth.GetUserFromContext(c)
	if !u.HasAuth() {
		c.Status(http.StatusUnauthorized)
		return
	}
	episodeID, err := strconv.ParseInt(c.Param("episode_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid episode id"})
		return
	}
	watched, err := s.overlay.ToggleWatched(c.Request.Context(), u.ID, episodeID)
	if errors.Is(err, overlay.ErrForbidden) {
		c.Status(http.StatusForbidden)
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to toggle episode")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"watched": watched})
}
