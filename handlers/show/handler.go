package show

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/showlog-io/showlog/services/overlay"
)

const (
	artworkCacheBucketFlag = "artwork-cache-bucket"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   artworkCacheBucketFlag,
			Usage:  "s3 bucket for resized artwork",
			Value:  "showlog-artwork-cache",
			EnvVar: "ARTWORK_CACHE_BUCKET",
		},
	)
}

// Overlay is the per-user read/write surface this handler needs.
type Overlay interface {
	ShowDetail(ctx context.Context, userID uuid.UUID, showID int64) (*overlay.ShowDetail, error)
	ToggleWatched(ctx context.Context, userID uuid.UUID, episodeID int64) (bool, error)
}

type Handler struct {
	overlay            Overlay
	pg                 *cs.PG
	cl                 *http.Client
	s3Cl               *cs.S3Client
	artworkCacheBucket string
}

func RegisterHandler(c *cli.Context, r *gin.Engine, ovl Overlay, pg *cs.PG, cl *http.Client, s3Cl *cs.S3Client) {
	h := &Handler{
		overlay:            ovl,
		pg:                 pg,
		cl:                 cl,
		s3Cl:               s3Cl,
		artworkCacheBucket: c.String(artworkCacheBucketFlag),
	}
	r.GET("/lib/shows/:show_id", h.detail)
	r.POST("/lib/episodes/:episode_id/toggle", h.toggle)
	r.GET("/lib/shows/:show_id/artwork/:file", h.artwork)
}
