package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spacesedan/redditpersona/internal/models"
)

type fakeArchiver struct {
	mu    sync.Mutex
	files []string
	err   error
}

func (f *fakeArchiver) Upload(_ context.Context, username, fileName, _ string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = append(f.files, username+"/"+fileName)
	return f.err
}

func sampleResult() *models.AnalysisResult {
	data := &models.RedditUserData{
		Username:  "spez",
		Submitted: []models.Post{{Title: "Hello <b>world</b>", Content: "**bold** <script>alert(1)</script>", Subreddit: "golang", Score: 4}},
		Comments:  []models.Comment{{Content: "a [link](https://go.dev)", Subreddit: "golang", Score: 2}},
		Summary:   &models.Summary{TotalKarma: 10, TopSubreddits: []models.SubredditCount{{Subreddit: "golang", Count: 2}}},
	}
	persona := &models.Persona{Name: "Alex", Archetype: "The Builder", Interests: models.TextList{"Go"}, Narrative: "I *build* things."}
	return Assemble(data, persona, "Title\n\nBody", []string{"https://example.com"})
}

func TestExportWritesBothFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	archiver := &fakeArchiver{}
	e := NewExporter(archiver)

	res := e.Export(context.Background(), dir, "spez", sampleResult())
	if res.Status != models.ExportSuccess {
		t.Fatalf("expected success, got %+v", res)
	}

	raw, err := os.ReadFile(res.TextPath)
	if err != nil {
		t.Fatalf("read text report: %v", err)
	}
	var decoded models.AnalysisResult
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("text report is not JSON: %v", err)
	}
	if decoded.Persona.Archetype != "The Builder" {
		t.Fatalf("unexpected persona %+v", decoded.Persona)
	}

	page, err := os.ReadFile(res.HTMLPath)
	if err != nil {
		t.Fatalf("read html report: %v", err)
	}
	html := string(page)
	for _, want := range []string{"u/spez", "<strong>bold</strong>", "<em>build</em>", "Hello &lt;b&gt;world&lt;/b&gt;", "r/golang (2)"} {
		if !strings.Contains(html, want) {
			t.Fatalf("html report missing %q", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("raw html from reddit content must be dropped")
	}

	if len(archiver.files) != 2 {
		t.Fatalf("expected both files archived, got %v", archiver.files)
	}
}

func TestExportIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(nil)
	for i := 0; i < 2; i++ {
		if res := e.Export(context.Background(), dir, "spez", sampleResult()); res.Status != models.ExportSuccess {
			t.Fatalf("run %d: expected success, got %+v", i, res)
		}
	}
}

func TestExportPartialWhenHTMLFails(t *testing.T) {
	dir := t.TempDir()
	// a directory where the html file should go makes that write fail
	if err := os.Mkdir(filepath.Join(dir, HTMLFileName("spez")), 0o755); err != nil {
		t.Fatal(err)
	}

	res := NewExporter(nil).Export(context.Background(), dir, "spez", sampleResult())
	if res.Status != models.ExportPartial {
		t.Fatalf("expected partial, got %+v", res)
	}
	if res.TextPath == "" || res.HTMLPath != "" || res.HTMLErr == "" {
		t.Fatalf("expected text only, got %+v", res)
	}
}

func TestExportFailedWhenDirUnusable(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := NewExporter(nil).Export(context.Background(), filepath.Join(file, "sub"), "spez", sampleResult())
	if res.Status != models.ExportFailed {
		t.Fatalf("expected failed, got %+v", res)
	}
	if res.TextPath != "" || res.HTMLPath != "" {
		t.Fatalf("no paths expected on failure, got %+v", res)
	}
}

func TestArchiveFailureDoesNotChangeOutcome(t *testing.T) {
	e := NewExporter(&fakeArchiver{err: errors.New("bucket gone")})
	if res := e.Export(context.Background(), t.TempDir(), "spez", sampleResult()); res.Status != models.ExportSuccess {
		t.Fatalf("archive errors must not affect export, got %+v", res)
	}
}

func TestRenderHTMLRawPersona(t *testing.T) {
	result := Assemble(&models.RedditUserData{Username: "spez"}, &models.Persona{Raw: "plain <text>"}, "", nil)
	page, err := RenderHTML("spez", result, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(string(page), "plain &lt;text&gt;") {
		t.Fatalf("raw persona not escaped into the page")
	}
}
