package personageneration

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spacesedan/redditpersona/internal/models"
)

const personaSchema = `{
  "name": "string",
  "age": "string",
  "location": "string",
  "occupation": "string",
  "interests": ["string"],
  "personality": ["string"],
  "political_view": "string",
  "lifestyle": "string",
  "communication_style": "string",
  "values": ["string"],
  "archetype": "string",
  "narrative": "string"
}`

// maxPromptItemChars keeps long self posts from blowing the context window.
const maxPromptItemChars = 1200

// BuildPersonaPrompt embeds the user's content and the expected reply schema.
func BuildPersonaPrompt(data *models.RedditUserData) (string, error) {
	posts, err := promptJSON(trimPosts(data.Submitted))
	if err != nil {
		return "", err
	}
	comments, err := promptJSON(trimComments(data.Comments))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a personality analyst.\n\n")
	b.WriteString("Analyze the following Reddit user's posts and comments to construct a psychological persona. ")
	b.WriteString("Focus on interests, lifestyle, communication style, values, political orientation, and personality traits.\n\n")
	fmt.Fprintf(&b, "Reddit Username: %s\n", data.Username)
	fmt.Fprintf(&b, "Total Posts: %d\n", data.TotalPosts)
	fmt.Fprintf(&b, "Total Comments: %d\n", data.TotalComments)

	if data.Summary != nil {
		fmt.Fprintf(&b, "Account Age (days): %d\n", data.Summary.AccountAgeDays)
		fmt.Fprintf(&b, "Total Karma: %d\n", data.Summary.TotalKarma)
		if len(data.Summary.TopSubreddits) > 0 {
			names := make([]string, 0, len(data.Summary.TopSubreddits))
			for _, s := range data.Summary.TopSubreddits {
				names = append(names, fmt.Sprintf("r/%s (%d)", s.Subreddit, s.Count))
			}
			fmt.Fprintf(&b, "Most Active In: %s\n", strings.Join(names, ", "))
		}
	}
	if a := data.ActivityAnalysis; a != nil {
		patterns, err := promptJSON(a.Patterns)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "Behavior Patterns: %s\n", patterns)
	}

	fmt.Fprintf(&b, "\nRecent Posts:\n%s\n", posts)
	fmt.Fprintf(&b, "\nRecent Comments:\n%s\n", comments)
	b.WriteString("\nRespond only with a JSON object in this format, with no extra commentary:\n")
	b.WriteString(personaSchema)
	b.WriteString("\n")
	return b.String(), nil
}

// BuildSimulatedPostPrompt asks for a single post written in the user's voice.
func BuildSimulatedPostPrompt(data *models.RedditUserData) (string, error) {
	posts, err := promptJSON(trimPosts(data.Submitted))
	if err != nil {
		return "", err
	}
	comments, err := promptJSON(trimComments(data.Comments))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here is the recent Reddit activity of u/%s.\n\n", data.Username)
	fmt.Fprintf(&b, "Posts:\n%s\n\nComments:\n%s\n\n", posts, comments)
	b.WriteString("Write one new Reddit post this user could plausibly publish next, matching their tone, ")
	b.WriteString("vocabulary, favourite communities and typical length. ")
	b.WriteString("Reply with the post only: a title on the first line, then the body.\n")
	return b.String(), nil
}

type promptPost struct {
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
}

type promptComment struct {
	Content   string `json:"content"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
}

func trimPosts(posts []models.Post) []promptPost {
	out := make([]promptPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, promptPost{
			Title:     p.Title,
			Content:   truncate(p.Content, maxPromptItemChars),
			Subreddit: p.Subreddit,
			Score:     p.Score,
		})
	}
	return out
}

func trimComments(comments []models.Comment) []promptComment {
	out := make([]promptComment, 0, len(comments))
	for _, c := range comments {
		out = append(out, promptComment{
			Content:   truncate(c.Content, maxPromptItemChars),
			Subreddit: c.Subreddit,
			Score:     c.Score,
		})
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func promptJSON(v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("[PersonaGenerator] failed to serialize prompt data: %w", err)
	}
	return string(raw), nil
}
