package processing

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/redditpersona/internal/clients"
	"github.com/spacesedan/redditpersona/internal/export"
	"github.com/spacesedan/redditpersona/internal/models"
	personageneration "github.com/spacesedan/redditpersona/internal/persona_generation"
)

const (
	ListingPosts    = "posts"
	ListingComments = "comments"
	ListingOverview = "overview"
)

type RedditFetcher interface {
	FetchSimple(ctx context.Context, username string, limit int) (*models.RedditUserData, error)
	FetchComprehensive(ctx context.Context, username string, opts clients.ListingOptions) (*models.RedditUserData, error)
	FetchSubmitted(ctx context.Context, username string, opts clients.ListingOptions) ([]models.Post, error)
	FetchComments(ctx context.Context, username string, opts clients.ListingOptions) ([]models.Comment, error)
	FetchOverview(ctx context.Context, username string, opts clients.ListingOptions) ([]models.OverviewItem, error)
}

type PersonaGenerator interface {
	GeneratePersona(ctx context.Context, data *models.RedditUserData) (*personageneration.Result, error)
	SimulatePost(ctx context.Context, data *models.RedditUserData) (string, error)
}

type ReportExporter interface {
	Export(ctx context.Context, dir, username string, result *models.AnalysisResult) models.ExportResult
}

type UserDataCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

type EventPublisher interface {
	Publish(event models.AnalysisEvent) error
}

// Analyzer runs fetch, metrics, persona generation and export for one user.
type Analyzer struct {
	reddit   RedditFetcher
	personas PersonaGenerator
	exporter ReportExporter
	cache    UserDataCache
	cacheUp  *atomic.Bool
	events   EventPublisher
	now      func() time.Time
}

type AnalyzerOption func(*Analyzer)

func WithCache(c UserDataCache) AnalyzerOption {
	return func(a *Analyzer) { a.cache = c }
}

// WithCacheHealth skips the cache while healthy reports false.
func WithCacheHealth(healthy *atomic.Bool) AnalyzerOption {
	return func(a *Analyzer) { a.cacheUp = healthy }
}

func WithEvents(p EventPublisher) AnalyzerOption {
	return func(a *Analyzer) { a.events = p }
}

func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) { a.now = now }
}

func NewAnalyzer(reddit RedditFetcher, personas PersonaGenerator, exporter ReportExporter, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		reddit:   reddit,
		personas: personas,
		exporter: exporter,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) CacheEnabled() bool {
	return a.cache != nil && (a.cacheUp == nil || a.cacheUp.Load())
}

func (a *Analyzer) EventsEnabled() bool { return a.events != nil }

type AnalyzeRequest struct {
	Username      string
	Comprehensive bool
	Limit         int
	ExportPath    string
	SimulatePost  bool
}

type AnalyzeResponse struct {
	Result *models.AnalysisResult
	Export *models.ExportResult
}

// Analyze fetches the user's content, generates the persona and writes the
// reports when an export path is given. Upstream and parse errors abort the
// request; export problems are reported in the response instead.
func (a *Analyzer) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	start := time.Now()
	slog.Info("[Analyzer] Starting analysis",
		slog.String("username", req.Username),
		slog.Bool("comprehensive", req.Comprehensive))

	data, err := a.fetch(ctx, req.Username, req.Comprehensive, req.Limit)
	if err != nil {
		return nil, err
	}

	generated, err := a.personas.GeneratePersona(ctx, data)
	if err != nil {
		return nil, err
	}

	var simulated string
	if req.SimulatePost {
		simulated, err = a.personas.SimulatePost(ctx, data)
		if err != nil {
			slog.Warn("[Analyzer] Simulated post failed, continuing without it",
				slog.String("username", req.Username),
				slog.String("error", err.Error()))
		}
	}

	result := export.Assemble(data, generated.Persona, simulated, generated.Citations)
	resp := &AnalyzeResponse{Result: result}

	if req.ExportPath != "" {
		exp := a.exporter.Export(ctx, req.ExportPath, req.Username, result)
		result.PersonaFilePath = exp.TextPath
		result.PersonaHTMLFilePath = exp.HTMLPath
		resp.Export = &exp
	}

	a.publish(req, result, resp.Export)

	slog.Info("[Analyzer] Analysis finished",
		slog.String("username", req.Username),
		slog.Duration("elapsed", time.Since(start)))
	return resp, nil
}

type UserProfileResult struct {
	Data       *models.RedditUserData
	Persona    *models.Persona
	Citations  []string
	PersonaErr error
}

// UserProfile returns comprehensive data and a best effort persona. Only fetch
// failures are returned as errors.
func (a *Analyzer) UserProfile(ctx context.Context, username string, limit int) (*UserProfileResult, error) {
	data, err := a.fetch(ctx, username, true, limit)
	if err != nil {
		return nil, err
	}

	res := &UserProfileResult{Data: data}
	generated, err := a.personas.GeneratePersona(ctx, data)
	if err != nil {
		slog.Warn("[Analyzer] Persona unavailable for profile",
			slog.String("username", username),
			slog.String("error", err.Error()))
		res.PersonaErr = err
		return res, nil
	}
	res.Persona = generated.Persona
	res.Citations = generated.Citations
	return res, nil
}

type ListingResult struct {
	Kind          string                  `json:"kind"`
	Items         any                     `json:"items"`
	Count         int                     `json:"count"`
	TopSubreddits []models.SubredditCount `json:"top_subreddits"`
	AverageScore  int                     `json:"average_score"`
}

// Listing fetches one raw listing and decorates it with its own metrics.
func (a *Analyzer) Listing(ctx context.Context, username, kind string, opts clients.ListingOptions) (*ListingResult, error) {
	opts.Limit = clients.ClampLimit(opts.Limit, clients.COMPREHENSIVE_FETCH_LIMIT)
	res := &ListingResult{Kind: kind}

	switch kind {
	case ListingPosts:
		items, err := a.reddit.FetchSubmitted(ctx, username, opts)
		if err != nil {
			return nil, err
		}
		res.Items, res.Count = items, len(items)
		res.TopSubreddits = TopSubreddits(SubredditsOf(items))
		res.AverageScore = AverageScore(items)
	case ListingComments:
		items, err := a.reddit.FetchComments(ctx, username, opts)
		if err != nil {
			return nil, err
		}
		res.Items, res.Count = items, len(items)
		res.TopSubreddits = TopSubreddits(SubredditsOf(items))
		res.AverageScore = AverageScore(items)
	case ListingOverview:
		items, err := a.reddit.FetchOverview(ctx, username, opts)
		if err != nil {
			return nil, err
		}
		res.Items, res.Count = items, len(items)
		res.TopSubreddits = TopSubreddits(SubredditsOf(items))
		res.AverageScore = AverageScore(items)
	default:
		return nil, fmt.Errorf("unknown listing %q", kind)
	}

	if len(res.TopSubreddits) > TOP_SUBREDDIT_LIMIT {
		res.TopSubreddits = res.TopSubreddits[:TOP_SUBREDDIT_LIMIT]
	}
	return res, nil
}

// SimulatePost writes one post in the voice of username from their recent activity.
func (a *Analyzer) SimulatePost(ctx context.Context, username string) (string, error) {
	data, err := a.fetch(ctx, username, false, 0)
	if err != nil {
		return "", err
	}
	return a.personas.SimulatePost(ctx, data)
}

// Enrich fills the derived blocks of data in place.
func (a *Analyzer) Enrich(data *models.RedditUserData) {
	now := a.now()
	summary := BuildSummary(data.UserInfo, data.Submitted, data.Comments, now)
	data.Summary = &summary
	if data.Comprehensive {
		activity := AnalyzeActivity(data.Submitted, data.Comments, data.UserInfo, now)
		data.ActivityAnalysis = &activity
	}
}

func (a *Analyzer) fetch(ctx context.Context, username string, comprehensive bool, limit int) (*models.RedditUserData, error) {
	def := clients.SIMPLE_FETCH_LIMIT
	if comprehensive {
		def = clients.COMPREHENSIVE_FETCH_LIMIT
	}
	limit = clients.ClampLimit(limit, def)
	key := clients.UserDataKey(username, comprehensive, limit)

	useCache := a.CacheEnabled()
	if useCache {
		var cached models.RedditUserData
		hit, err := a.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			slog.Warn("[Analyzer] Cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		if hit {
			slog.Debug("[Analyzer] Cache hit", slog.String("key", key))
			a.Enrich(&cached)
			return &cached, nil
		}
	}

	var (
		data *models.RedditUserData
		err  error
	)
	if comprehensive {
		data, err = a.reddit.FetchComprehensive(ctx, username, clients.ListingOptions{Limit: limit})
	} else {
		data, err = a.reddit.FetchSimple(ctx, username, limit)
	}
	if err != nil {
		return nil, err
	}

	// only raw content is cached; derived blocks depend on the request time
	if useCache {
		raw := *data
		raw.Summary, raw.ActivityAnalysis = nil, nil
		if err := a.cache.SetJSON(ctx, key, &raw); err != nil {
			slog.Warn("[Analyzer] Cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	a.Enrich(data)
	return data, nil
}

func (a *Analyzer) publish(req AnalyzeRequest, result *models.AnalysisResult, exp *models.ExportResult) {
	if a.events == nil {
		return
	}
	event := models.AnalysisEvent{
		ID:            uuid.NewString(),
		Username:      req.Username,
		Comprehensive: req.Comprehensive,
		CreatedAt:     a.now().UTC(),
	}
	if result.RedditData != nil {
		event.TotalPosts = result.RedditData.TotalPosts
		event.TotalComments = result.RedditData.TotalComments
	}
	if result.Persona != nil {
		event.Archetype = result.Persona.Archetype.String()
	}
	if exp != nil {
		event.ExportStatus = exp.Status
	}
	if err := a.events.Publish(event); err != nil {
		slog.Warn("[Analyzer] Failed to publish analysis event",
			slog.String("username", req.Username),
			slog.String("error", err.Error()))
	}
}
