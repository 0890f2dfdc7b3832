package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	wau "github.com/showlog-io/showlog/handlers/auth"
	"github.com/showlog-io/showlog/handlers/library"
	"github.com/showlog-io/showlog/handlers/show"
	"github.com/showlog-io/showlog/services/auth"
	"github.com/showlog-io/showlog/services/catalog"
	"github.com/showlog-io/showlog/services/common"
	"github.com/showlog-io/showlog/services/overlay"
	"github.com/showlog-io/showlog/services/tvmaze"
	w "github.com/showlog-io/showlog/services/web"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web server",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = cs.RegisterPprofFlags(c.Flags)
	c.Flags = cs.RegisterRedisClientFlags(c.Flags)
	c.Flags = cs.RegisterS3ClientFlags(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = common.RegisterFlags(c.Flags)
	c.Flags = tvmaze.RegisterFlags(c.Flags)
	c.Flags = show.RegisterFlags(c.Flags)
}

func serve(c *cli.Context) error {
	// Setting HTTP Client
	cl := http.DefaultClient

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Migrations
	err := pgMigrate(c)
	if err != nil {
		return err
	}

	var servers []cs.Servable

	// Setting Probe
	probe := cs.NewProbe(c)
	if probe != nil {
		servers = append(servers, probe)
		defer probe.Close()
	}

	// Setting Pprof
	pprof := cs.NewPprof(c)
	if pprof != nil {
		servers = append(servers, pprof)
		defer pprof.Close()
	}

	// Setting Gin
	r := gin.Default()
	r.RedirectTrailingSlash = false

	// Setting Sessions
	store := cookie.NewStore([]byte(c.String(common.SessionSecretFlag)))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(c.String(common.SessionNameFlag), store))

	// Setting CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET"},
	}))

	// Setting Redis
	redis := cs.NewRedisClient(c)
	defer redis.Close()

	// Setting S3 Client
	s3Cl := cs.NewS3Client(c, cl)

	// Setting Catalogue Api
	mazeApi := tvmaze.New(c, cl, redis.Get())

	// Setting Catalog
	ctl := catalog.New(mazeApi, catalog.NewPGStore(pg))

	// Setting Overlay
	ovl := overlay.New(overlay.NewPGStore(pg))

	// Setting Auth
	a := auth.New(pg)
	r.Use(a.Middleware())

	// Setting AuthHandler
	wau.RegisterHandler(r, a)

	// Setting LibraryHandler
	library.RegisterHandler(r, ctl, ovl)

	// Setting ShowHandler
	show.RegisterHandler(c, r, ovl, pg, cl, s3Cl)

	// Setting Web
	web := w.New(c, r)
	servers = append(servers, web)
	defer web.Close()

	// Setting Serve
	serve := cs.NewServe(servers...)

	// And SERVE!
	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}
