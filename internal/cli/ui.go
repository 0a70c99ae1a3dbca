package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spacesedan/redditpersona/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(1, 2).
		Width(80)

	labelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)
)

// RenderPersona formats the headline fields of an analysis for the terminal.
func RenderPersona(username string, res *models.AnalysisResult) string {
	var b strings.Builder
	p := res.Persona

	b.WriteString(titleStyle.Render("Persona for u/"+username) + "\n\n")
	if p.IsRaw() {
		b.WriteString(warnStyle.Render("Model reply was not structured JSON:") + "\n")
		b.WriteString(p.Raw)
		return panelStyle.Render(b.String())
	}

	writeField(&b, "Name", p.Name.String())
	writeField(&b, "Age", p.Age.String())
	writeField(&b, "Location", p.Location.String())
	writeField(&b, "Occupation", p.Occupation.String())
	writeField(&b, "Archetype", p.Archetype.String())
	writeField(&b, "Interests", strings.Join(p.Interests, ", "))
	writeField(&b, "Personality", strings.Join(p.Personality, ", "))
	writeField(&b, "Values", strings.Join(p.Values, ", "))

	if data := res.RedditData; data != nil {
		b.WriteString("\n")
		writeField(&b, "Activity", fmt.Sprintf("%d posts, %d comments", data.TotalPosts, data.TotalComments))
		if s := data.Summary; s != nil && len(s.TopSubreddits) > 0 {
			subs := make([]string, 0, len(s.TopSubreddits))
			for i, sc := range s.TopSubreddits {
				if i == 5 {
					break
				}
				subs = append(subs, fmt.Sprintf("r/%s (%d)", sc.Subreddit, sc.Count))
			}
			writeField(&b, "Most active in", strings.Join(subs, ", "))
		}
	}

	if res.SimulatedPost != "" {
		b.WriteString("\n" + labelStyle.Render("Simulated post") + "\n" + res.SimulatedPost + "\n")
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func RenderHealth(h *HealthResponse) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Server "+h.Status) + "\n\n")
	writeFlag(&b, "Reddit configured", h.RedditConfigured)
	writeFlag(&b, "LLM configured", h.LLMConfigured)
	writeField(&b, "LLM provider", h.LLMProvider)
	writeFlag(&b, "Cache enabled", h.CacheEnabled)
	writeFlag(&b, "Events enabled", h.EventsEnabled)
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s %s\n", labelStyle.Render(label+":"), value)
}

func writeFlag(b *strings.Builder, label string, on bool) {
	value := errorStyle.Render("no")
	if on {
		value = okStyle.Render("yes")
	}
	fmt.Fprintf(b, "%s %s\n", labelStyle.Render(label+":"), value)
}
