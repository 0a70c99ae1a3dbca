package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/redditpersona/internal/clients"
	"github.com/spacesedan/redditpersona/internal/models"
	"github.com/spacesedan/redditpersona/internal/processing"
)

type analyzeRequest struct {
	Username      string `json:"username"`
	Comprehensive bool   `json:"comprehensive"`
	ExportPath    string `json:"exportPath"`
	SimulatePost  bool   `json:"simulatePost"`
	Demo          bool   `json:"demo"`
	Limit         int    `json:"limit"`
}

type simulateRequest struct {
	Username string `json:"username"`
}

var (
	validSorts = map[string]bool{"new": true, "hot": true, "top": true, "controversial": true}
	validTimes = map[string]bool{"hour": true, "day": true, "week": true, "month": true, "year": true, "all": true}
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "OK",
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"reddit_configured": s.health.RedditConfigured,
		"llm_configured":    s.health.LLMConfigured,
		"llm_provider":      s.health.LLMProvider,
		"cache_enabled":     s.svc.CacheEnabled(),
		"events_enabled":    s.svc.EventsEnabled(),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "", "Invalid JSON body")
		return
	}

	username, err := parseUsername(req.Username)
	if err != nil {
		fail(c, err)
		return
	}

	if req.Demo {
		ok(c, gin.H{"data": s.svc.Demo()})
		return
	}

	exportPath := strings.TrimSpace(req.ExportPath)
	if exportPath == "" {
		badRequest(c, "exportPath", "Missing exportPath")
		return
	}

	resp, err := s.svc.Analyze(c.Request.Context(), processing.AnalyzeRequest{
		Username:      username,
		Comprehensive: req.Comprehensive,
		Limit:         req.Limit,
		ExportPath:    exportPath,
		SimulatePost:  req.SimulatePost,
	})
	if err != nil {
		fail(c, err)
		return
	}

	body := gin.H{"success": true, "data": resp.Result}
	if exp := resp.Export; exp != nil {
		body["exportStatus"] = exp.Status
		if alert := exportAlert(exp); alert != "" {
			body["success"] = false
			body["alert"] = alert
		}
	}
	c.JSON(http.StatusOK, body)
}

func exportAlert(exp *models.ExportResult) string {
	switch exp.Status {
	case models.ExportPartial:
		if exp.HTMLErr != "" {
			return "Persona generated but the HTML report could not be written: " + exp.HTMLErr
		}
		return "Persona generated but the text report could not be written: " + exp.TextErr
	case models.ExportFailed:
		return "Persona generated but no report could be written: " + firstNonEmpty(exp.TextErr, exp.HTMLErr)
	default:
		return ""
	}
}

func (s *Server) handleUserProfile(c *gin.Context) {
	username, err := parseUsername(c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		fail(c, err)
		return
	}

	res, err := s.svc.UserProfile(c.Request.Context(), username, limit)
	if err != nil {
		fail(c, err)
		return
	}

	body := gin.H{"data": res.Data, "persona": res.Persona}
	if res.PersonaErr != nil {
		body["personaError"] = res.PersonaErr.Error()
	}
	if len(res.Citations) > 0 {
		body["citations"] = res.Citations
	}
	ok(c, body)
}

func (s *Server) handleListing(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := parseUsername(c.Param("username"))
		if err != nil {
			fail(c, err)
			return
		}
		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			fail(c, err)
			return
		}
		sort := strings.ToLower(c.Query("sort"))
		if sort != "" && !validSorts[sort] {
			badRequest(c, "sort", fmt.Sprintf("Invalid sort %q", sort))
			return
		}
		window := strings.ToLower(c.Query("time"))
		if window != "" && !validTimes[window] {
			badRequest(c, "time", fmt.Sprintf("Invalid time %q", window))
			return
		}

		res, err := s.svc.Listing(c.Request.Context(), username, kind, clients.ListingOptions{Limit: limit, Sort: sort, Time: window})
		if err != nil {
			fail(c, err)
			return
		}

		ok(c, gin.H{
			"username":       username,
			kind:             res.Items,
			"count":          res.Count,
			"top_subreddits": res.TopSubreddits,
			"average_score":  res.AverageScore,
		})
	}
}

func (s *Server) handleSimulatePost(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "", "Invalid JSON body")
		return
	}
	username, err := parseUsername(req.Username)
	if err != nil {
		fail(c, err)
		return
	}

	post, err := s.svc.SimulatePost(c.Request.Context(), username)
	if err != nil {
		slog.Warn("[HTTP] Simulated post failed", slog.String("username", username), slog.String("error", err.Error()))
		fail(c, err)
		return
	}
	ok(c, gin.H{"simulated_post": post})
}

func parseUsername(raw string) (string, error) {
	username := clients.NormalizeUsername(raw)
	if username == "" {
		return "", &ValidationError{Field: "username", Message: "Missing username"}
	}
	if !clients.ValidUsername(username) {
		return "", &ValidationError{Field: "username", Message: fmt.Sprintf("Invalid username %q", username)}
	}
	return username, nil
}

// parseLimit accepts an empty value (use the default) or a positive integer.
// Values above the Reddit page size are clamped later.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &ValidationError{Field: "limit", Message: fmt.Sprintf("Invalid limit %q", raw)}
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
