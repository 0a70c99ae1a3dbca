package processing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/redditpersona/internal/clients"
	"github.com/spacesedan/redditpersona/internal/models"
	personageneration "github.com/spacesedan/redditpersona/internal/persona_generation"
)

type fakeFetcher struct {
	simpleCalls        int
	comprehensiveCalls int
	lastLimit          int
	err                error
}

func (f *fakeFetcher) data(username string, comprehensive bool) *models.RedditUserData {
	d := &models.RedditUserData{
		Username:      username,
		Comprehensive: comprehensive,
		Submitted:     []models.Post{{Subreddit: "golang", Score: 10, CreatedUTC: daysAgo(1)}, {Subreddit: "golang", Score: 20}, {Subreddit: "rust", Score: 30}},
		Comments:      []models.Comment{{Subreddit: "golang", Score: 5}, {Subreddit: "python", Score: 5}},
		TotalPosts:    3,
		TotalComments: 2,
	}
	if comprehensive {
		d.UserInfo = &models.UserProfile{Name: username, CreatedUTC: daysAgo(100), TotalKarma: 500}
	}
	return d
}

func (f *fakeFetcher) FetchSimple(_ context.Context, username string, limit int) (*models.RedditUserData, error) {
	f.simpleCalls++
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.data(username, false), nil
}

func (f *fakeFetcher) FetchComprehensive(_ context.Context, username string, opts clients.ListingOptions) (*models.RedditUserData, error) {
	f.comprehensiveCalls++
	f.lastLimit = opts.Limit
	if f.err != nil {
		return nil, f.err
	}
	return f.data(username, true), nil
}

func (f *fakeFetcher) FetchSubmitted(_ context.Context, username string, _ clients.ListingOptions) ([]models.Post, error) {
	return f.data(username, false).Submitted, f.err
}

func (f *fakeFetcher) FetchComments(_ context.Context, username string, _ clients.ListingOptions) ([]models.Comment, error) {
	return f.data(username, false).Comments, f.err
}

func (f *fakeFetcher) FetchOverview(context.Context, string, clients.ListingOptions) ([]models.OverviewItem, error) {
	return []models.OverviewItem{{Type: "post", Subreddit: "a", Score: 3}, {Type: "comment", Subreddit: "b", Score: 4}}, f.err
}

type fakePersonas struct {
	err       error
	simulated string
	simErr    error
	seenData  *models.RedditUserData
}

func (f *fakePersonas) GeneratePersona(_ context.Context, data *models.RedditUserData) (*personageneration.Result, error) {
	f.seenData = data
	if f.err != nil {
		return nil, f.err
	}
	return &personageneration.Result{Persona: &models.Persona{Archetype: "The Lurker"}, Citations: []string{"c"}}, nil
}

func (f *fakePersonas) SimulatePost(context.Context, *models.RedditUserData) (string, error) {
	return f.simulated, f.simErr
}

type fakeExporter struct {
	result models.ExportResult
	dirs   []string
}

func (f *fakeExporter) Export(_ context.Context, dir, _ string, _ *models.AnalysisResult) models.ExportResult {
	f.dirs = append(f.dirs, dir)
	return f.result
}

type memoryCache struct {
	entries map[string]*models.RedditUserData
}

func (m *memoryCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	d, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	*out.(*models.RedditUserData) = *d
	return true, nil
}

func (m *memoryCache) SetJSON(_ context.Context, key string, v any) error {
	m.entries[key] = v.(*models.RedditUserData)
	return nil
}

type recordingPublisher struct {
	events []models.AnalysisEvent
}

func (r *recordingPublisher) Publish(e models.AnalysisEvent) error {
	r.events = append(r.events, e)
	return nil
}

func newTestAnalyzer(f *fakeFetcher, p *fakePersonas, e *fakeExporter, opts ...AnalyzerOption) *Analyzer {
	opts = append(opts, WithClock(func() time.Time { return fixedNow }))
	return NewAnalyzer(f, p, e, opts...)
}

func TestAnalyzeComprehensiveScenario(t *testing.T) {
	fetcher := &fakeFetcher{}
	personas := &fakePersonas{simulated: "a post"}
	exporter := &fakeExporter{result: models.ExportResult{Status: models.ExportSuccess, TextPath: "/tmp/x.txt", HTMLPath: "/tmp/x.html"}}
	events := &recordingPublisher{}
	a := newTestAnalyzer(fetcher, personas, exporter, WithEvents(events))

	resp, err := a.Analyze(context.Background(), AnalyzeRequest{Username: "spez", Comprehensive: true, ExportPath: "/tmp", SimulatePost: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	data := resp.Result.RedditData
	if fetcher.lastLimit != clients.COMPREHENSIVE_FETCH_LIMIT {
		t.Fatalf("expected comprehensive default limit, got %d", fetcher.lastLimit)
	}
	if data.Summary == nil || data.ActivityAnalysis == nil {
		t.Fatalf("expected derived blocks before persona generation")
	}
	if personas.seenData.Summary == nil {
		t.Fatalf("persona prompt should see the summary")
	}
	if data.Summary.AveragePostScore != 20 || data.Summary.AverageCommentScore != 5 || data.Summary.KarmaPerDay != 5 || data.Summary.AccountAgeDays != 100 {
		t.Fatalf("unexpected summary %+v", data.Summary)
	}
	if data.Summary.TopSubreddits[0].Subreddit != "golang" || data.Summary.TopSubreddits[0].Count != 3 {
		t.Fatalf("unexpected top subreddit %+v", data.Summary.TopSubreddits)
	}
	if resp.Result.SimulatedPost != "a post" || resp.Result.Citations[0] != "c" {
		t.Fatalf("unexpected result %+v", resp.Result)
	}
	if resp.Result.PersonaFilePath != "/tmp/x.txt" || resp.Result.PersonaHTMLFilePath != "/tmp/x.html" {
		t.Fatalf("export paths not copied into result")
	}
	if len(events.events) != 1 || events.events[0].Archetype != "The Lurker" || events.events[0].ExportStatus != models.ExportSuccess || events.events[0].ID == "" {
		t.Fatalf("unexpected events %+v", events.events)
	}
}

func TestAnalyzeSimpleSkipsActivityAndExport(t *testing.T) {
	fetcher := &fakeFetcher{}
	exporter := &fakeExporter{}
	a := newTestAnalyzer(fetcher, &fakePersonas{}, exporter)

	resp, err := a.Analyze(context.Background(), AnalyzeRequest{Username: "spez"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if fetcher.simpleCalls != 1 || fetcher.lastLimit != clients.SIMPLE_FETCH_LIMIT {
		t.Fatalf("expected one simple fetch with limit 10, got %d/%d", fetcher.simpleCalls, fetcher.lastLimit)
	}
	if resp.Result.RedditData.ActivityAnalysis != nil {
		t.Fatalf("simple mode has no profile to analyze")
	}
	if resp.Export != nil || len(exporter.dirs) != 0 {
		t.Fatalf("no export without a path")
	}
}

func TestAnalyzeStopsOnPersonaError(t *testing.T) {
	want := &personageneration.ParseError{Raw: "nope", Err: errors.New("bad")}
	exporter := &fakeExporter{}
	a := newTestAnalyzer(&fakeFetcher{}, &fakePersonas{err: want}, exporter)

	_, err := a.Analyze(context.Background(), AnalyzeRequest{Username: "spez", ExportPath: "/tmp"})
	var perr *personageneration.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if len(exporter.dirs) != 0 {
		t.Fatalf("nothing should be exported after a failed persona")
	}
}

func TestAnalyzeSimulatedPostIsBestEffort(t *testing.T) {
	a := newTestAnalyzer(&fakeFetcher{}, &fakePersonas{simErr: errors.New("timeout")}, &fakeExporter{})
	resp, err := a.Analyze(context.Background(), AnalyzeRequest{Username: "spez", SimulatePost: true})
	if err != nil {
		t.Fatalf("simulated post failure should not fail the analysis: %v", err)
	}
	if resp.Result.SimulatedPost != "" {
		t.Fatalf("expected no simulated post")
	}
}

func TestFetchUsesCache(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := &memoryCache{entries: map[string]*models.RedditUserData{}}
	a := newTestAnalyzer(fetcher, &fakePersonas{}, &fakeExporter{}, WithCache(cache))

	for i := 0; i < 2; i++ {
		if _, err := a.Analyze(context.Background(), AnalyzeRequest{Username: "spez", Comprehensive: true}); err != nil {
			t.Fatalf("Analyze: %v", err)
		}
	}
	if fetcher.comprehensiveCalls != 1 {
		t.Fatalf("expected second call served from cache, got %d fetches", fetcher.comprehensiveCalls)
	}
	if _, ok := cache.entries[clients.UserDataKey("spez", true, clients.COMPREHENSIVE_FETCH_LIMIT)]; !ok {
		t.Fatalf("expected entry under the comprehensive key")
	}
}

func TestCachedDataIsReEnrichedAtRequestTime(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := &memoryCache{entries: map[string]*models.RedditUserData{}}
	now := fixedNow
	a := NewAnalyzer(fetcher, &fakePersonas{}, &fakeExporter{},
		WithCache(cache),
		WithClock(func() time.Time { return now }))

	first, err := a.Analyze(context.Background(), AnalyzeRequest{Username: "spez", Comprehensive: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := first.Result.RedditData.Summary.AccountAgeDays; got != 100 {
		t.Fatalf("expected age 100 on first call, got %d", got)
	}
	stored := cache.entries[clients.UserDataKey("spez", true, clients.COMPREHENSIVE_FETCH_LIMIT)]
	if stored == nil || stored.Summary != nil || stored.ActivityAnalysis != nil {
		t.Fatalf("cache should hold raw content only, got %+v", stored)
	}

	now = fixedNow.Add(3 * 24 * time.Hour)
	second, err := a.Analyze(context.Background(), AnalyzeRequest{Username: "spez", Comprehensive: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if fetcher.comprehensiveCalls != 1 {
		t.Fatalf("expected second call served from cache, got %d fetches", fetcher.comprehensiveCalls)
	}
	data := second.Result.RedditData
	if data.Summary.AccountAgeDays != 103 || data.ActivityAnalysis.AccountAgeDays != 103 {
		t.Fatalf("expected age recomputed to 103, got summary=%d activity=%d",
			data.Summary.AccountAgeDays, data.ActivityAnalysis.AccountAgeDays)
	}
}

func TestUnhealthyCacheIsBypassed(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := &memoryCache{entries: map[string]*models.RedditUserData{}}
	var healthy atomic.Bool
	a := newTestAnalyzer(fetcher, &fakePersonas{}, &fakeExporter{}, WithCache(cache), WithCacheHealth(&healthy))

	if a.CacheEnabled() {
		t.Fatalf("cache should report disabled while unhealthy")
	}
	if _, err := a.Analyze(context.Background(), AnalyzeRequest{Username: "spez", Comprehensive: true}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(cache.entries) != 0 {
		t.Fatalf("unhealthy cache should not be written")
	}

	healthy.Store(true)
	if !a.CacheEnabled() {
		t.Fatalf("cache should report enabled once healthy")
	}
	if _, err := a.Analyze(context.Background(), AnalyzeRequest{Username: "spez", Comprehensive: true}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(cache.entries) != 1 || fetcher.comprehensiveCalls != 2 {
		t.Fatalf("expected a fetch and a cache write, got %d entries and %d fetches", len(cache.entries), fetcher.comprehensiveCalls)
	}
}

func TestUserProfileBestEffortPersona(t *testing.T) {
	upstream := &clients.UpstreamError{Service: "llm", StatusCode: 503}
	a := newTestAnalyzer(&fakeFetcher{}, &fakePersonas{err: upstream}, &fakeExporter{})

	res, err := a.UserProfile(context.Background(), "spez", 0)
	if err != nil {
		t.Fatalf("UserProfile: %v", err)
	}
	if res.Persona != nil || !errors.Is(res.PersonaErr, upstream) {
		t.Fatalf("expected persona error to be carried, got %+v", res)
	}
	if res.Data.UserInfo == nil {
		t.Fatalf("expected comprehensive data")
	}
}

func TestUserProfileFetchError(t *testing.T) {
	a := newTestAnalyzer(&fakeFetcher{err: &clients.UpstreamError{Service: "reddit", StatusCode: 404}}, &fakePersonas{}, &fakeExporter{})
	if _, err := a.UserProfile(context.Background(), "ghost", 0); err == nil {
		t.Fatalf("expected fetch error")
	}
}

func TestListing(t *testing.T) {
	a := newTestAnalyzer(&fakeFetcher{}, &fakePersonas{}, &fakeExporter{})

	res, err := a.Listing(context.Background(), "spez", ListingPosts, clients.ListingOptions{})
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if res.Count != 3 || res.AverageScore != 20 || res.TopSubreddits[0].Subreddit != "golang" {
		t.Fatalf("unexpected listing %+v", res)
	}

	res, err = a.Listing(context.Background(), "spez", ListingOverview, clients.ListingOptions{})
	if err != nil {
		t.Fatalf("Listing overview: %v", err)
	}
	if res.Count != 2 || res.AverageScore != 4 {
		t.Fatalf("unexpected overview listing %+v", res)
	}

	if _, err := a.Listing(context.Background(), "spez", "saved", clients.ListingOptions{}); err == nil {
		t.Fatalf("expected unknown listing to fail")
	}
}

func TestDemo(t *testing.T) {
	a := newTestAnalyzer(&fakeFetcher{}, &fakePersonas{}, &fakeExporter{})
	res := a.Demo()
	if res.RedditData.Username != "DemoUser" || res.Persona.Name != "Alex Demo" {
		t.Fatalf("unexpected demo %+v", res)
	}
	if res.RedditData.Summary == nil || res.RedditData.Summary.AveragePostScore != 36 {
		t.Fatalf("demo should carry a summary, got %+v", res.RedditData.Summary)
	}
}
