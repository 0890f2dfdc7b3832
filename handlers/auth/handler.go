package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/showlog-io/showlog/models"
	"github.com/showlog-io/showlog/services/auth"
)

type Handler struct {
	auth *auth.Auth
}

func RegisterHandler(r *gin.Engine, a *auth.Auth) {
	h := &Handler{
		auth: a,
	}
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)
}

type credentials struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (s *Handler) register(c *gin.Context) {
	var cr credentials
	if err := c.ShouldBind(&cr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := s.auth.Register(c.Request.Context(), cr.Username, cr.Password)
	if errors.Is(err, auth.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, models.ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to register user")
		c.Status(http.StatusInternalServerError)
		return
	}
	if err := auth.StartSession(c, user); err != nil {
		log.WithError(err).Error("failed to start session")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, userResponse{
		ID:       user.UserID.String(),
		Username: user.Username,
	})
}

func (s *Handler) login(c *gin.Context) {
	var cr credentials
	if err := c.ShouldBind(&cr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := s.auth.Login(c.Request.Context(), cr.Username, cr.Password)
	if errors.Is(err, auth.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to login user")
		c.Status(http.StatusInternalServerError)
		return
	}
	if err := auth.StartSession(c, user); err != nil {
		log.WithError(err).Error("failed to start session")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, userResponse{
		ID:       user.UserID.String(),
		Username: user.Username,
	})
}

func (s *Handler) logout(c *gin.Context) {
	if err := auth.EndSession(c); err != nil {
		log.WithError(err).Error("failed to end session")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}
