package sentiment

import (
	"html"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/redditpersona/internal/models"
)

const (
	POSITIVE_THRESHOLD = 0.20
	NEGATIVE_THRESHOLD = -0.20
)

var (
	analyzer    = govader.NewSentimentIntensityAnalyzer()
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders reddit markdown and drops the markup.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := html.UnescapeString(tagPattern.ReplaceAllString(string(output), " "))
	return strings.Join(strings.Fields(plain), " ")
}

func Label(score float64) string {
	switch {
	case score >= POSITIVE_THRESHOLD:
		return "positive"
	case score <= NEGATIVE_THRESHOLD:
		return "negative"
	default:
		return "neutral"
	}
}

func AnalyzeWithVADER(text string) (float64, string) {
	plainText := ConvertMarkdownToText(text)

	sentiment := analyzer.PolarityScores(plainText)
	score := sentiment.Compound

	return score, Label(score)
}

// Summarize scores every non-empty text and aggregates the labels.
// It returns nil when there is nothing to score.
func Summarize(texts []string) *models.Sentiment {
	out := &models.Sentiment{}
	var total float64
	for _, t := range texts {
		if strings.TrimSpace(t) == "" || t == "[deleted]" || t == "[removed]" {
			continue
		}
		score, label := AnalyzeWithVADER(t)
		total += score
		out.Analyzed++
		switch label {
		case "positive":
			out.Positive++
		case "negative":
			out.Negative++
		default:
			out.Neutral++
		}
	}
	if out.Analyzed == 0 {
		return nil
	}
	out.AverageCompound = math.Round(total/float64(out.Analyzed)*1000) / 1000
	out.Label = Label(out.AverageCompound)
	return out
}
