package export

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/redditpersona/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var reportTemplate = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

// Archiver receives a copy of every written report.
type Archiver interface {
	Upload(ctx context.Context, username, fileName, contentType string, body []byte) error
}

type Exporter struct {
	archiver Archiver
	now      func() time.Time
}

// NewExporter returns an exporter. archiver may be nil.
func NewExporter(archiver Archiver) *Exporter {
	return &Exporter{archiver: archiver, now: time.Now}
}

// Assemble merges everything produced for one request into the response payload.
func Assemble(data *models.RedditUserData, persona *models.Persona, simulatedPost string, citations []string) *models.AnalysisResult {
	return &models.AnalysisResult{
		RedditData:    data,
		Persona:       persona,
		SimulatedPost: simulatedPost,
		Citations:     citations,
	}
}

func TextFileName(username string) string { return fmt.Sprintf("persona_output_%s.txt", username) }
func HTMLFileName(username string) string { return fmt.Sprintf("persona_output_%s.html", username) }

// Export writes the text and HTML reports under dir. Each format is attempted
// independently; the returned status says how many made it to disk.
func (e *Exporter) Export(ctx context.Context, dir, username string, result *models.AnalysisResult) models.ExportResult {
	out := models.ExportResult{}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("[Export] Failed to create export directory",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		out.TextErr = err.Error()
		out.HTMLErr = err.Error()
		out.Status = models.ExportFailed
		return out
	}

	textBody, err := json.MarshalIndent(result, "", "  ")
	if err == nil {
		textPath := filepath.Join(dir, TextFileName(username))
		if err = os.WriteFile(textPath, textBody, 0o644); err == nil {
			out.TextPath = textPath
			e.archive(ctx, username, TextFileName(username), "text/plain; charset=utf-8", textBody)
		}
	}
	if err != nil {
		slog.Warn("[Export] Text report failed", slog.String("username", username), slog.String("error", err.Error()))
		out.TextErr = err.Error()
	}

	htmlBody, err := RenderHTML(username, result, e.now())
	if err == nil {
		htmlPath := filepath.Join(dir, HTMLFileName(username))
		if err = os.WriteFile(htmlPath, htmlBody, 0o644); err == nil {
			out.HTMLPath = htmlPath
			e.archive(ctx, username, HTMLFileName(username), "text/html; charset=utf-8", htmlBody)
		}
	}
	if err != nil {
		slog.Warn("[Export] HTML report failed", slog.String("username", username), slog.String("error", err.Error()))
		out.HTMLErr = err.Error()
	}

	switch {
	case out.TextPath != "" && out.HTMLPath != "":
		out.Status = models.ExportSuccess
	case out.TextPath != "" || out.HTMLPath != "":
		out.Status = models.ExportPartial
	default:
		out.Status = models.ExportFailed
	}

	slog.Info("[Export] Export finished",
		slog.String("username", username),
		slog.String("status", out.Status))
	return out
}

func (e *Exporter) archive(ctx context.Context, username, name, contentType string, body []byte) {
	if e.archiver == nil {
		return
	}
	if err := e.archiver.Upload(ctx, username, name, contentType, body); err != nil {
		slog.Warn("[Export] Archive upload failed",
			slog.String("file", name),
			slog.String("error", err.Error()))
	}
}

type reportItem struct {
	Title     string
	Subreddit string
	Score     int
	Body      template.HTML
}

type reportView struct {
	Username      string
	GeneratedAt   string
	Comprehensive bool
	Persona       *models.Persona
	Narrative     template.HTML
	Summary       *models.Summary
	SimulatedPost template.HTML
	Posts         []reportItem
	Comments      []reportItem
	Citations     []string
}

// RenderHTML produces a self contained report page.
func RenderHTML(username string, result *models.AnalysisResult, now time.Time) ([]byte, error) {
	view := reportView{
		Username:      username,
		GeneratedAt:   now.UTC().Format(time.RFC1123),
		Persona:       result.Persona,
		SimulatedPost: markdown(result.SimulatedPost),
		Citations:     result.Citations,
	}
	if result.Persona != nil {
		view.Narrative = markdown(result.Persona.Narrative.String())
	}
	if data := result.RedditData; data != nil {
		view.Comprehensive = data.Comprehensive
		view.Summary = data.Summary
		for _, p := range data.Submitted {
			view.Posts = append(view.Posts, reportItem{Title: p.Title, Subreddit: p.Subreddit, Score: p.Score, Body: markdown(p.Content)})
		}
		for _, c := range data.Comments {
			view.Comments = append(view.Comments, reportItem{Subreddit: c.Subreddit, Score: c.Score, Body: markdown(c.Content)})
		}
	}

	var buf bytes.Buffer
	if err := reportTemplate.ExecuteTemplate(&buf, "report.html", view); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// markdown renders reddit markdown with raw HTML stripped, so the output is safe to inline.
func markdown(s string) template.HTML {
	if s == "" {
		return ""
	}
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.SkipHTML | blackfriday.Safelink | blackfriday.NofollowLinks | blackfriday.HrefTargetBlank,
	})
	out := blackfriday.Run([]byte(s),
		blackfriday.WithRenderer(renderer),
		blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return template.HTML(out)
}
