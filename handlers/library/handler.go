package library

import (
	"context"

	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"

	"github.com/showlog-io/showlog/models"
	"github.com/showlog-io/showlog/services/catalog"
	"github.com/showlog-io/showlog/services/overlay"
)

// Catalog resolves queries against the external catalogue and mirrors
// selected shows into local storage.
type Catalog interface {
	Resolve(ctx context.Context, query string) (*catalog.Resolution, error)
	Sync(ctx context.Context, externalID int64) (*models.Show, error)
}

// Overlay manages the caller's library membership and progress.
type Overlay interface {
	AddToLibrary(ctx context.Context, userID uuid.UUID, showID int64) error
	RemoveFromLibrary(ctx context.Context, userID uuid.UUID, showID int64) error
	Library(ctx context.Context, userID uuid.UUID) ([]*overlay.LibraryItem, error)
}

type Handler struct {
	catalog Catalog
	overlay Overlay
}

func RegisterHandler(r *gin.Engine, ctl Catalog, ovl Overlay) {
	h := &Handler{
		catalog: ctl,
		overlay: ovl,
	}
	r.GET("/lib", h.index)
	r.POST("/lib/add", h.add)
	r.POST("/lib/remove", h.remove)
}

type showView struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl,omitempty"`
	Summary  *string `json:"summary,omitempty"`
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
