package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/and161185/gamevault/internal/model"
)

const (
	searchPageSize = 6
	notesMaxRunes  = 200
)

// ClientConfig configures the RAWG client.
type ClientConfig struct {
	BaseURL    string        // e.g. https://api.rawg.io/api
	APIKey     string        // sent as ?key=
	Timeout    time.Duration // per request
	RetryFor   time.Duration // total retry budget; 0 disables retries
	RetryStart time.Duration // first retry interval
}

// Client talks to the RAWG REST API.
type Client struct {
	base  string
	key   string
	http  *http.Client
	retry time.Duration
	start time.Duration
	log   *zap.Logger
	now   func() time.Time
}

var _ Lookup = (*Client)(nil)

// NewClient constructs a client.
func NewClient(cfg ClientConfig, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryStart <= 0 {
		cfg.RetryStart = 200 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		key:   cfg.APIKey,
		http:  &http.Client{Timeout: cfg.Timeout},
		retry: cfg.RetryFor,
		start: cfg.RetryStart,
		log:   log,
		now:   time.Now,
	}
}

type rawPlatform struct {
	Platform struct {
		Name string `json:"name"`
	} `json:"platform"`
}

type rawGame struct {
	ID              int           `json:"id"`
	Name            string        `json:"name"`
	Slug            string        `json:"slug"`
	Released        string        `json:"released"`
	BackgroundImage string        `json:"background_image"`
	Rating          float64       `json:"rating"`
	Platforms       []rawPlatform `json:"platforms"`
	Publishers      []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	DescriptionRaw string `json:"description_raw"`
}

func (g rawGame) platformNames() []string {
	names := make([]string, 0, len(g.Platforms))
	for _, p := range g.Platforms {
		names = append(names, p.Platform.Name)
	}
	return NormalizePlatforms(names)
}

// Search queries the catalogue by title.
func (c *Client) Search(ctx context.Context, query string) []Result {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLen {
		return []Result{}
	}
	q := url.Values{}
	q.Set("search", query)
	q.Set("page_size", strconv.Itoa(searchPageSize))

	var resp struct {
		Results []rawGame `json:"results"`
	}
	if err := c.get(ctx, "/games", q, &resp); err != nil {
		c.log.Warn("metadata search failed", zap.Error(err))
		return []Result{}
	}

	out := make([]Result, 0, len(resp.Results))
	for _, g := range resp.Results {
		date, year := releaseOf(g.Released)
		out = append(out, Result{
			ID:          g.ID,
			Title:       g.Name,
			CoverURL:    coverOf(g.BackgroundImage),
			ReleaseDate: date,
			ReleaseYear: year,
			Platforms:   g.platformNames(),
			Rating:      g.Rating,
			Slug:        g.Slug,
		})
	}
	c.log.Debug("metadata search", zap.Int("hits", len(out)))
	return out
}

// GetDetails fetches one entry and builds a prefilled draft.
func (c *Client) GetDetails(ctx context.Context, id int) *Details {
	if id <= 0 {
		return nil
	}
	var g rawGame
	if err := c.get(ctx, "/games/"+strconv.Itoa(id), url.Values{}, &g); err != nil {
		c.log.Warn("metadata details failed", zap.Int("id", id), zap.Error(err))
		return nil
	}

	platforms := g.platformNames()
	d := model.GameDraft{
		Title:     g.Name,
		CoverURL:  coverOf(g.BackgroundImage),
		Condition: model.ConditionOpened,
		Notes:     truncateNotes(g.DescriptionRaw),
	}
	for _, p := range platforms {
		if model.IsPlatform(p) {
			d.Platform = p
			break
		}
	}
	if len(g.Publishers) > 0 {
		d.Publisher = g.Publishers[0].Name
	}
	if t, err := time.Parse(time.DateOnly, g.Released); err == nil {
		d.ReleaseDate = &t
		d.ReleaseYear = t.Year()
	} else {
		d.ReleaseYear = c.now().Year()
	}
	return &Details{ID: strconv.Itoa(g.ID), Draft: d, AvailablePlatforms: platforms}
}

// get performs a GET with the API key, retrying transport errors and 5xx.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.key != "" {
		q.Set("key", c.key)
	}
	u := c.base + path
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		res, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		switch {
		case res.StatusCode >= 500:
			return fmt.Errorf("metadata api error: %d", res.StatusCode)
		case res.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("metadata api error: %d", res.StatusCode))
		}
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode: %w", err))
		}
		return nil
	}

	var bo backoff.BackOff = &backoff.StopBackOff{}
	if c.retry > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = c.start
		eb.MaxElapsedTime = c.retry
		bo = eb
	}
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}

func coverOf(s string) string {
	if s == "" {
		return model.PlaceholderCover
	}
	return s
}

func releaseOf(s string) (string, int) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return "", 0
	}
	return s, t.Year()
}

// truncateNotes keeps the first notesMaxRunes runes and marks the cut.
func truncateNotes(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= notesMaxRunes {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:notesMaxRunes])) + "..."
}
