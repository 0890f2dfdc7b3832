package tvmaze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/lazymap"
)

const (
	apiHostFlag    = "tvmaze-api-host"
	apiPortFlag    = "tvmaze-api-port"
	apiSecureFlag  = "tvmaze-api-secure"
	apiTimeoutFlag = "tvmaze-api-timeout"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   apiHostFlag,
			Usage:  "tvmaze api host",
			EnvVar: "TVMAZE_API_HOST",
			Value:  "api.tvmaze.com",
		},
		cli.IntFlag{
			Name:   apiPortFlag,
			Usage:  "tvmaze api port",
			EnvVar: "TVMAZE_API_PORT",
			Value:  443,
		},
		cli.BoolTFlag{
			Name:   apiSecureFlag,
			Usage:  "tvmaze api secure (https)",
			EnvVar: "TVMAZE_API_SECURE",
		},
		cli.IntFlag{
			Name:   apiTimeoutFlag,
			Usage:  "tvmaze api timeout (seconds)",
			EnvVar: "TVMAZE_API_TIMEOUT",
			Value:  15,
		},
	)
}

// Show is the upstream catalogue's show payload. Every field the source
// may omit is optional; upstream completeness is never assumed.
type Show struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Premiered *string `json:"premiered"`
	Summary   *string `json:"summary"`
	Image     *Image  `json:"image"`
}

type Image struct {
	Medium   string `json:"medium"`
	Original string `json:"original"`
}

// PremiereYear extracts the year from the premiered date when present.
func (s *Show) PremiereYear() *int {
	if s.Premiered == nil || len(*s.Premiered) < 4 {
		return nil
	}
	y, err := strconv.Atoi((*s.Premiered)[:4])
	if err != nil {
		return nil
	}
	return &y
}

type SearchResult struct {
	Score float64 `json:"score"`
	Show  Show    `json:"show"`
}

// Episode is the upstream episode payload. Season and number are nil for
// unordered specials.
type Episode struct {
	ID      int64   `json:"id"`
	Season  *int    `json:"season"`
	Number  *int    `json:"number"`
	Name    string  `json:"name"`
	AirDate *string `json:"airdate"`
	Runtime *int    `json:"runtime"`
}

const (
	searchCacheTTL = 10 * time.Minute
	retryAttempts  = 3
)

type Api struct {
	url     string
	cl      *http.Client
	timeout time.Duration
	redis   redis.UniversalClient
	search  *lazymap.LazyMap[[]SearchResult]
}

func New(c *cli.Context, cl *http.Client, redisCl redis.UniversalClient) *Api {
	host := c.String(apiHostFlag)
	port := c.Int(apiPortFlag)
	secure := c.BoolT(apiSecureFlag)
	timeout := time.Duration(c.Int(apiTimeoutFlag)) * time.Second
	protocol := "http"
	if secure {
		protocol = "https"
	}
	u := fmt.Sprintf("%v://%v:%v", protocol, host, port)
	log.Infof("tvmaze api endpoint %v", u)
	return &Api{
		url:     u,
		cl:      cl,
		timeout: timeout,
		redis:   redisCl,
		search: lazymap.New[[]SearchResult](&lazymap.Config{
			Expire:      time.Minute,
			ErrorExpire: 10 * time.Second,
		}),
	}
}

// SearchShows queries the catalogue for shows matching the text and
// returns them in upstream relevance order. An empty slice means no
// match. Concurrent identical queries are coalesced; results are shared
// through Redis when it is configured.
func (api *Api) SearchShows(ctx context.Context, query string) ([]SearchResult, error) {
	return api.search.Get(query, func() ([]SearchResult, error) {
		if res, ok := api.searchFromCache(ctx, query); ok {
			return res, nil
		}
		var res []SearchResult
		u := fmt.Sprintf("%v/search/shows?q=%v", api.url, url.QueryEscape(query))
		if err := api.getJSON(ctx, u, &res); err != nil {
			return nil, err
		}
		api.putSearchToCache(ctx, query, res)
		return res, nil
	})
}

// GetShow fetches one show by its external id. Returns nil for an
// unknown id.
func (api *Api) GetShow(ctx context.Context, externalID int64) (*Show, error) {
	var show Show
	u := fmt.Sprintf("%v/shows/%v", api.url, externalID)
	err := api.getJSON(ctx, u, &show)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &show, nil
}

// GetEpisodes fetches the complete episode list of a show, specials
// included.
func (api *Api) GetEpisodes(ctx context.Context, externalID int64) ([]Episode, error) {
	var episodes []Episode
	u := fmt.Sprintf("%v/shows/%v/episodes?specials=1", api.url, externalID)
	err := api.getJSON(ctx, u, &episodes)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return episodes, nil
}

var errNotFound = errors.New("tvmaze: not found")

func (api *Api) getJSON(ctx context.Context, u string, target any) error {
	ctx, cancel := context.WithTimeout(ctx, api.timeout)
	defer cancel()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
			if err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "create request"))
			}
			resp, err := api.cl.Do(req)
			if err != nil {
				return errors.Wrap(err, "request failed")
			}
			defer func(body io.ReadCloser) {
				_ = body.Close()
			}(resp.Body)
			if resp.StatusCode == http.StatusNotFound {
				return retry.Unrecoverable(errNotFound)
			}
			if resp.StatusCode >= http.StatusInternalServerError {
				return errors.Errorf("tvmaze error: status %v", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(errors.Errorf("tvmaze error: status %v", resp.StatusCode))
			}
			if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "decode response"))
			}
			return nil
		},
		retry.Attempts(retryAttempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}

func (api *Api) searchCacheKey(query string) string {
	return fmt.Sprintf("tvmaze:search:%v", query)
}

func (api *Api) searchFromCache(ctx context.Context, query string) ([]SearchResult, bool) {
	if api.redis == nil {
		return nil, false
	}
	data, err := api.redis.Get(ctx, api.searchCacheKey(query)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("failed to read search cache")
		}
		return nil, false
	}
	var res []SearchResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return res, true
}

func (api *Api) putSearchToCache(ctx context.Context, query string, res []SearchResult) {
	if api.redis == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := api.redis.Set(ctx, api.searchCacheKey(query), data, searchCacheTTL).Err(); err != nil {
		log.WithError(err).Warn("failed to write search cache")
	}
}
