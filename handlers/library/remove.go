package library

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/showlog-io/showlog/services/auth"
	"github.com/showlog-io/showlog/services/overlay"
)

func (s *Handler) remove(c *gin.Context) {
	u := auth.GetUserFromContext(c)
	if !u.HasAuth() {
		c.Status(http.StatusUnauthorized)
		return
	}
	showID, err := strconv.ParseInt(c.PostForm("show_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid show id"})
		return
	}
	err = s.overlay.RemoveFromLibrary(c.Request.Context(), u.ID, showID)
	if errors.Is(err, overlay.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "show not in library"})
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to remove show from library")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
