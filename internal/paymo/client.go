package paymo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/paymo-paybot/internal/metrics"
	"github.com/Tiliavir/paymo-paybot/internal/model"
)

// DefaultBaseURL is the public Paymo host.
const DefaultBaseURL = "https://app.paymoapp.com"

// UserIDCache stores resolved user ids between invocations.
type UserIDCache interface {
	Get(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, id int64) error
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// APIKey authenticates with HTTP basic auth (key as user, empty password).
	APIKey string
	// AccessToken authenticates with an OAuth2 bearer token and wins over APIKey.
	AccessToken string
	Timeout     time.Duration
	Cache       UserIDCache
	// CacheKey identifies the credential in Cache.
	CacheKey string
	Logger   zerolog.Logger
}

// Client is an authenticated Paymo API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      UserIDCache
	cacheKey   string
	log        zerolog.Logger
}

// NewClient creates a Paymo client. One of APIKey or AccessToken is required.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" && opts.AccessToken == "" {
		return nil, &model.ConfigurationError{Field: "PAYMO_API_KEY", Err: errors.New("no Paymo API key or access token configured")}
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	var hc *http.Client
	apiKey := opts.APIKey
	if opts.AccessToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken, TokenType: "Bearer"})
		hc = oauth2.NewClient(ctx, ts)
		apiKey = ""
	} else {
		hc = &http.Client{}
	}
	hc.Timeout = opts.Timeout

	return &Client{
		baseURL:    base,
		apiKey:     apiKey,
		httpClient: hc,
		cache:      opts.Cache,
		cacheKey:   opts.CacheKey,
		log:        opts.Logger,
	}, nil
}

type meResponse struct {
	Users []model.User `json:"users"`
}

// Me returns the user owning the configured credential.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var resp meResponse
	if err := c.get(ctx, "me", c.baseURL+"/api/me", &resp); err != nil {
		return model.User{}, err
	}
	if len(resp.Users) == 0 {
		return model.User{}, &model.FetchError{Op: "GET /api/me", Err: errors.New("response contained no user")}
	}
	return resp.Users[0], nil
}

// CurrentUserID resolves the id used to filter time entries, consulting the
// cache first when one is configured. Cache failures only cost a request.
func (c *Client) CurrentUserID(ctx context.Context) (int64, error) {
	if c.cache != nil {
		id, found, err := c.cache.Get(ctx, c.cacheKey)
		switch {
		case err != nil:
			metrics.UserCacheTotal.WithLabelValues("error").Inc()
			c.log.Warn().Err(err).Msg("user cache unavailable")
		case found:
			metrics.UserCacheTotal.WithLabelValues("hit").Inc()
			return id, nil
		default:
			metrics.UserCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	u, err := c.Me(ctx)
	if err != nil {
		return 0, err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, c.cacheKey, u.ID); err != nil {
			c.log.Warn().Err(err).Msg("could not cache user id")
		}
	}
	return u.ID, nil
}

// apiEntry is a time entry as returned by /api/entries. Bulk entries carry a
// date instead of start/end times. UserID and Duration are pointers so an
// absent field is told apart from zero.
type apiEntry struct {
	ID        int64  `json:"id"`
	UserID    *int64 `json:"user_id"`
	StartTime string `json:"start_time"`
	Date      string `json:"date"`
	Duration  *int64 `json:"duration"`
}

// entriesResponse keeps entries raw so each one is decoded on its own and a
// malformed entry surfaces as a DataError instead of a failed response.
type entriesResponse struct {
	Entries []json.RawMessage `json:"entries"`
}

// FetchEntries returns every entry in the interval [from, to], with start
// instants expressed in from's location. A single malformed entry fails the
// whole batch with a *model.DataError.
func (c *Client) FetchEntries(ctx context.Context, from, to time.Time) ([]model.TimeEntry, error) {
	where := fmt.Sprintf(`time_interval in ("%s","%s")`, from.Format(time.RFC3339Nano), to.Format(time.RFC3339Nano))
	endpoint := c.baseURL + "/api/entries?" + url.Values{"where": {where}}.Encode()

	var resp entriesResponse
	if err := c.get(ctx, "entries", endpoint, &resp); err != nil {
		return nil, err
	}

	loc := from.Location()
	entries := make([]model.TimeEntry, 0, len(resp.Entries))
	for _, raw := range resp.Entries {
		e, err := decodeEntry(raw)
		if err != nil {
			return nil, err
		}
		te, err := mapEntry(e, loc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, te)
	}
	metrics.EntriesFetchedTotal.Add(float64(len(entries)))
	return entries, nil
}

func decodeEntry(raw json.RawMessage) (apiEntry, error) {
	var e apiEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Recover the id alone so the error still names the entry.
		var id struct {
			ID int64 `json:"id"`
		}
		_ = json.Unmarshal(raw, &id)
		return apiEntry{}, &model.DataError{EntryID: id.ID, Reason: fmt.Sprintf("malformed entry: %v", err)}
	}
	return e, nil
}

func mapEntry(e apiEntry, loc *time.Location) (model.TimeEntry, error) {
	if e.UserID == nil {
		return model.TimeEntry{}, &model.DataError{EntryID: e.ID, Reason: "missing user_id"}
	}
	if e.Duration == nil {
		return model.TimeEntry{}, &model.DataError{EntryID: e.ID, Reason: "missing duration"}
	}
	if *e.Duration < 0 {
		return model.TimeEntry{}, &model.DataError{EntryID: e.ID, Reason: "negative duration"}
	}

	var start time.Time
	switch {
	case e.StartTime != "":
		t, err := time.Parse(time.RFC3339, e.StartTime)
		if err != nil {
			return model.TimeEntry{}, &model.DataError{EntryID: e.ID, Reason: fmt.Sprintf("unparseable start_time %q", e.StartTime)}
		}
		start = t.In(loc)
	case e.Date != "":
		t, err := time.ParseInLocation("2006-01-02", e.Date, loc)
		if err != nil {
			return model.TimeEntry{}, &model.DataError{EntryID: e.ID, Reason: fmt.Sprintf("unparseable date %q", e.Date)}
		}
		start = t
	default:
		return model.TimeEntry{}, &model.DataError{EntryID: e.ID, Reason: "entry has neither start_time nor date"}
	}

	return model.TimeEntry{
		ID:              e.ID,
		UserID:          *e.UserID,
		Start:           start,
		DurationSeconds: *e.Duration,
	}, nil
}

// get performs an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint, rawURL string, out any) error {
	op := "GET /api/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &model.FetchError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.SetBasicAuth(c.apiKey, "")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.PaymoRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(started).Seconds())
		return &model.FetchError{Op: op, Err: err}
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	metrics.PaymoRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(started).Seconds())
	c.log.Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode).Dur("took", time.Since(started)).Msg("paymo request")
	if err != nil {
		return &model.FetchError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return &model.FetchError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(snippet(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &model.FetchError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

const maxSnippet = 200

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippet {
		cut := maxSnippet
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "…"
	}
	if s == "" {
		return "empty response"
	}
	return s
}
