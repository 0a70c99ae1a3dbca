package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/redditpersona/config"
	"github.com/spacesedan/redditpersona/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// NormalizeUsername trims whitespace and an optional leading "u/".
func NormalizeUsername(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[:2], "u/") {
		s = s[2:]
	}
	return strings.TrimSpace(s)
}

// ValidUsername reports whether name is safe to put in a request path or file name.
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// ListingOptions are the query parameters shared by the user listings.
type ListingOptions struct {
	Limit int
	Sort  string
	Time  string
}

type RedditClient struct {
	Client  *http.Client
	apiURL  string
	limiter *rate.Limiter
}

type RedditOption func(*redditClientOptions)

type redditClientOptions struct {
	authURL string
	apiURL  string
	base    http.RoundTripper
}

// WithRedditEndpoints points the client at a different token and API host.
func WithRedditEndpoints(authURL, apiURL string) RedditOption {
	return func(o *redditClientOptions) {
		o.authURL = authURL
		o.apiURL = apiURL
	}
}

// WithRedditTransport replaces the base transport under the auth and user agent layers.
func WithRedditTransport(rt http.RoundTripper) RedditOption {
	return func(o *redditClientOptions) {
		o.base = rt
	}
}

func NewRedditClient(cfg config.RedditConfig, opts ...RedditOption) *RedditClient {
	o := redditClientOptions{
		authURL: REDDIT_AUTH_URL,
		apiURL:  REDDIT_API_URL,
		base:    http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = REDDIT_HTTP_TIMEOUT
	}
	rpm, burst := cfg.RPM, cfg.Burst
	if rpm <= 0 {
		rpm = 60
	}
	if burst <= 0 {
		burst = 1
	}

	base := &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: o.base, userAgent: cfg.UserAgent},
	}
	ts := NewRedditTokenSource(context.Background(), cfg, o.authURL, base)

	slog.Info("[RedditClient] Reddit client initialized",
		slog.String("grant", cfg.GrantType),
		slog.Duration("timeout", timeout),
		slog.Int("rpm", rpm))

	return &RedditClient{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: &oauth2.Transport{Source: ts, Base: base.Transport},
		},
		apiURL:  strings.TrimRight(o.apiURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60), burst),
	}
}

func (rc *RedditClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	parsedUrl, err := url.Parse(rc.apiURL + path)
	if err != nil {
		return fmt.Errorf("[RedditClient] Failed to parse URL: %w", err)
	}
	q.Set("raw_json", "1")
	parsedUrl.RawQuery = q.Encode()

	if err := rc.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedUrl.String(), nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := rc.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	slog.Debug("[RedditClient] Request finished",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newUpstreamError("reddit", resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("[RedditClient] Failed to decode %s: %w", path, err)
	}
	return nil
}

func listingQuery(opts ListingOptions, defaultLimit int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(ClampLimit(opts.Limit, defaultLimit)))
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	if opts.Time != "" {
		q.Set("t", opts.Time)
	}
	return q
}

// ClampLimit maps non-positive limits to def and caps at Reddit's page size.
func ClampLimit(limit, def int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > MAX_FETCH_LIMIT {
		return MAX_FETCH_LIMIT
	}
	return limit
}

func (rc *RedditClient) fetchListing(ctx context.Context, username, listing string, opts ListingOptions) ([]models.RedditAPIChild, error) {
	var resp models.RedditAPIResponse
	path := fmt.Sprintf("/user/%s/%s", url.PathEscape(username), listing)
	if err := rc.getJSON(ctx, path, listingQuery(opts, SIMPLE_FETCH_LIMIT), &resp); err != nil {
		return nil, err
	}
	return resp.Data.Children, nil
}

func (rc *RedditClient) FetchAbout(ctx context.Context, username string) (*models.UserProfile, error) {
	var resp models.RedditAboutResponse
	path := fmt.Sprintf("/user/%s/about", url.PathEscape(username))
	if err := rc.getJSON(ctx, path, url.Values{}, &resp); err != nil {
		return nil, err
	}
	d := resp.Data
	total := d.TotalKarma
	if total == 0 {
		total = d.LinkKarma + d.CommentKarma
	}
	return &models.UserProfile{
		ID:               d.ID,
		Name:             d.Name,
		CreatedUTC:       d.CreatedUTC,
		LinkKarma:        d.LinkKarma,
		CommentKarma:     d.CommentKarma,
		TotalKarma:       total,
		IsMod:            d.IsMod,
		IsGold:           d.IsGold,
		Verified:         d.Verified,
		HasVerifiedEmail: d.HasVerifiedEmail,
		IconImg:          d.IconImg,
	}, nil
}

func (rc *RedditClient) FetchSubmitted(ctx context.Context, username string, opts ListingOptions) ([]models.Post, error) {
	children, err := rc.fetchListing(ctx, username, "submitted", opts)
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(children))
	for _, c := range children {
		posts = append(posts, toPost(c.Data))
	}
	return posts, nil
}

func (rc *RedditClient) FetchComments(ctx context.Context, username string, opts ListingOptions) ([]models.Comment, error) {
	children, err := rc.fetchListing(ctx, username, "comments", opts)
	if err != nil {
		return nil, err
	}
	comments := make([]models.Comment, 0, len(children))
	for _, c := range children {
		comments = append(comments, toComment(c.Data))
	}
	return comments, nil
}

func (rc *RedditClient) FetchOverview(ctx context.Context, username string, opts ListingOptions) ([]models.OverviewItem, error) {
	children, err := rc.fetchListing(ctx, username, "overview", opts)
	if err != nil {
		return nil, err
	}
	items := make([]models.OverviewItem, 0, len(children))
	for _, c := range children {
		items = append(items, toOverviewItem(c))
	}
	return items, nil
}

// FetchSimple fetches recent posts and comments only.
func (rc *RedditClient) FetchSimple(ctx context.Context, username string, limit int) (*models.RedditUserData, error) {
	opts := ListingOptions{Limit: ClampLimit(limit, SIMPLE_FETCH_LIMIT)}

	submitted, err := rc.FetchSubmitted(ctx, username, opts)
	if err != nil {
		return nil, err
	}
	comments, err := rc.FetchComments(ctx, username, opts)
	if err != nil {
		return nil, err
	}

	return &models.RedditUserData{
		Username:      username,
		Submitted:     submitted,
		Comments:      comments,
		TotalPosts:    len(submitted),
		TotalComments: len(comments),
	}, nil
}

// FetchComprehensive fetches profile, submitted, comments and overview in parallel.
// Any failure cancels the remaining calls and nothing partial is returned.
func (rc *RedditClient) FetchComprehensive(ctx context.Context, username string, opts ListingOptions) (*models.RedditUserData, error) {
	opts.Limit = ClampLimit(opts.Limit, COMPREHENSIVE_FETCH_LIMIT)
	if opts.Sort == "" {
		opts.Sort = "top"
	}
	if opts.Time == "" {
		opts.Time = "year"
	}

	var (
		profile   *models.UserProfile
		submitted []models.Post
		comments  []models.Comment
		overview  []models.OverviewItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = rc.FetchAbout(gctx, username)
		return err
	})
	g.Go(func() (err error) {
		submitted, err = rc.FetchSubmitted(gctx, username, opts)
		return err
	})
	g.Go(func() (err error) {
		comments, err = rc.FetchComments(gctx, username, opts)
		return err
	})
	g.Go(func() (err error) {
		overview, err = rc.FetchOverview(gctx, username, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Warn("[RedditClient] Comprehensive fetch failed",
			slog.String("username", username),
			slog.String("error", err.Error()))
		return nil, err
	}

	return &models.RedditUserData{
		Username:      username,
		Comprehensive: true,
		UserInfo:      profile,
		Submitted:     submitted,
		Comments:      comments,
		Overview:      overview,
		TotalPosts:    len(submitted),
		TotalComments: len(comments),
	}, nil
}

func toPost(d models.RedditAPIChildData) models.Post {
	return models.Post{
		ID:          d.ID,
		Title:       d.Title,
		Content:     d.Selftext,
		Subreddit:   d.Subreddit,
		Score:       d.Score,
		UpvoteRatio: d.UpvoteRatio,
		NumComments: d.NumComments,
		CreatedUTC:  d.CreatedUTC,
		IsSelf:      d.IsSelf,
		Over18:      d.Over18,
		URL:         d.URL,
		Permalink:   d.Permalink,
	}
}

func toComment(d models.RedditAPIChildData) models.Comment {
	return models.Comment{
		ID:         d.ID,
		Content:    d.Body,
		Subreddit:  d.Subreddit,
		Score:      d.Score,
		CreatedUTC: d.CreatedUTC,
		ParentID:   d.ParentID,
		LinkID:     d.LinkID,
		LinkTitle:  d.LinkTitle,
		Permalink:  d.Permalink,
	}
}

func toOverviewItem(c models.RedditAPIChild) models.OverviewItem {
	item := models.OverviewItem{
		ID:         c.Data.ID,
		Subreddit:  c.Data.Subreddit,
		Score:      c.Data.Score,
		CreatedUTC: c.Data.CreatedUTC,
		Permalink:  c.Data.Permalink,
	}
	if c.Kind == "t1" {
		item.Type = models.OverviewTypeComment
		item.Content = c.Data.Body
		item.Title = c.Data.LinkTitle
		return item
	}
	item.Type = models.OverviewTypePost
	item.Title = c.Data.Title
	item.Content = c.Data.Selftext
	return item
}
