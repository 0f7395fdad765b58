package gamesrc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/cohortclub/berger/internal/tourney"
	"github.com/cohortclub/berger/internal/util/httputil"
	"github.com/cohortclub/berger/internal/version"
)

// Provider fetches a hosted game by its URL.
type Provider interface {
	Fetch(ctx context.Context, rawURL string) (Game, error)
}

type Options struct {
	UserAgent        string        `toml:"user-agent"`
	RequestTimeout   time.Duration `toml:"request-timeout"`
	RPSLimit         float64       `toml:"rps-limit"`
	BurstLimit       int           `toml:"burst-limit"`
	LichessEndpoint  string        `toml:"lichess-endpoint"`
	ChesscomEndpoint string        `toml:"chesscom-endpoint"`
}

func (o Options) Clone() Options {
	return o
}

func (o *Options) FillDefaults() {
	if o.UserAgent == "" {
		o.UserAgent = "berger/" + version.Version
	}
	if o.RequestTimeout == 0 {
		o.RequestTimeout = 15 * time.Second
	}
	if o.RPSLimit == 0 {
		o.RPSLimit = 4.0
	}
	if o.BurstLimit == 0 {
		o.BurstLimit = 2
	}
	if o.LichessEndpoint == "" {
		o.LichessEndpoint = "https://lichess.org"
	}
	if o.ChesscomEndpoint == "" {
		o.ChesscomEndpoint = "https://www.chess.com"
	}
}

// Client is the live Provider. All outbound requests share one rate limiter,
// so a burst of submissions cannot hammer the game sites.
type Client struct {
	o       Options
	client  *http.Client
	limiter *rate.Limiter
}

var _ Provider = (*Client)(nil)

func NewClient(o Options) *Client {
	o = o.Clone()
	o.FillDefaults()
	return &Client{
		o:       o,
		client:  &http.Client{Timeout: o.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(o.RPSLimit), o.BurstLimit),
	}
}

func (c *Client) Fetch(ctx context.Context, rawURL string) (Game, error) {
	site, id, err := ParseURL(rawURL)
	if err != nil {
		return Game{}, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Game{}, fmt.Errorf("wait for rate limiter: %w", err)
	}
	switch site {
	case tourney.SiteLichess:
		return c.fetchLichess(ctx, id, rawURL)
	case tourney.SiteChesscom:
		return c.fetchChesscom(ctx, id, rawURL)
	default:
		return Game{}, fmt.Errorf("%w: site %q", tourney.ErrInvalidSource, site)
	}
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.o.UserAgent)
	req.Header.Set("Accept", "application/json")
	rsp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, rsp.Body)
		_ = rsp.Body.Close()
	}()
	if err := httputil.ErrorFromResponse(rsp); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if err := json.NewDecoder(rsp.Body).Decode(dst); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
