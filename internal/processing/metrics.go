package processing

import (
	"math"
	"sort"
	"time"

	"github.com/spacesedan/redditpersona/internal/models"
	"github.com/spacesedan/redditpersona/internal/sentiment"
)

// Behavioral thresholds for the pattern flags. Existing clients key off these
// exact values, so they are not tunable.
const (
	ACTIVE_RECENT_PER_DAY   = 0.1
	ENGAGED_POST_SCORE      = 10
	ENGAGED_COMMENT_SCORE   = 5
	CREATOR_SUBMITTED_RATIO = 0.5
	COMMENTER_RATIO         = 2

	RECENT_WINDOW_DAYS  = 30
	SECONDS_PER_DAY     = 86400
	TOP_SUBREDDIT_LIMIT = 10
)

type subreddited interface {
	SubredditName() string
}

type scored interface {
	ItemScore() int
}

type timestamped interface {
	CreatedAt() float64
}

// SubredditsOf extracts the community name of every item.
func SubredditsOf[T subreddited](items []T) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.SubredditName())
	}
	return names
}

// TopSubreddits counts communities across all lists, most frequent first.
// Equal counts are ordered by name so the result is stable.
func TopSubreddits(lists ...[]string) []models.SubredditCount {
	counts := map[string]int{}
	for _, list := range lists {
		for _, name := range list {
			counts[name]++
		}
	}

	out := make([]models.SubredditCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.SubredditCount{Subreddit: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Subreddit < out[j].Subreddit
	})
	return out
}

// AverageScore rounds half toward positive infinity, matching the
// numbers the web UI has always shown. Empty input is 0.
func AverageScore[T scored](items []T) int {
	if len(items) == 0 {
		return 0
	}
	sum := 0
	for _, it := range items {
		sum += it.ItemScore()
	}
	return int(roundHalfUp(float64(sum) / float64(len(items))))
}

// AccountAgeDays is whole days since created. Future timestamps give 0.
func AccountAgeDays(createdUTC float64, now time.Time) int {
	if createdUTC <= 0 {
		return 0
	}
	age := math.Floor((float64(now.Unix()) - createdUTC) / SECONDS_PER_DAY)
	if age < 0 {
		return 0
	}
	return int(age)
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func countRecent[T timestamped](items []T, cutoff float64) int {
	n := 0
	for _, it := range items {
		if it.CreatedAt() >= cutoff {
			n++
		}
	}
	return n
}

// AnalyzeActivity derives rates, content mix and pattern flags. A nil profile
// is treated as an account created today.
func AnalyzeActivity(submitted []models.Post, comments []models.Comment, profile *models.UserProfile, now time.Time) models.ActivityAnalysis {
	var created float64
	if profile != nil {
		created = profile.CreatedUTC
	}
	age := AccountAgeDays(created, now)
	days := float64(max(1, age))

	cutoff := float64(now.Unix()) - RECENT_WINDOW_DAYS*SECONDS_PER_DAY
	recent := countRecent(submitted, cutoff) + countRecent(comments, cutoff)
	recentPerDay := round2(float64(recent) / RECENT_WINDOW_DAYS)

	selfPosts, engagement := 0, 0
	for _, p := range submitted {
		if p.IsSelf {
			selfPosts++
		}
		engagement += p.NumComments
	}
	selfRatio := 0.0
	engagementPerPost := 0.0
	if len(submitted) > 0 {
		selfRatio = round2(float64(selfPosts) / float64(len(submitted)))
		engagementPerPost = round2(float64(engagement) / float64(len(submitted)))
	}

	avgPost := AverageScore(submitted)
	avgComment := AverageScore(comments)

	return models.ActivityAnalysis{
		AccountAgeDays: age,
		ActivityLevel: models.ActivityLevel{
			PostsPerDay:    round2(float64(len(submitted)) / days),
			CommentsPerDay: round2(float64(len(comments)) / days),
			RecentActivity: recentPerDay,
			TotalActivity:  len(submitted) + len(comments),
		},
		ContentAnalysis: models.ContentAnalysis{
			SelfPosts:       selfPosts,
			LinkPosts:       len(submitted) - selfPosts,
			SelfPostRatio:   selfRatio,
			AvgPostScore:    avgPost,
			AvgCommentScore: avgComment,
			TotalEngagement: engagement,
		},
		Engagement: models.Engagement{
			AvgPostScore:      avgPost,
			AvgCommentScore:   avgComment,
			EngagementPerPost: engagementPerPost,
		},
		Patterns: models.Patterns{
			IsActive:         float64(recent)/RECENT_WINDOW_DAYS > ACTIVE_RECENT_PER_DAY,
			IsEngaged:        avgPost > ENGAGED_POST_SCORE || avgComment > ENGAGED_COMMENT_SCORE,
			IsContentCreator: float64(len(submitted)) > CREATOR_SUBMITTED_RATIO*float64(len(comments)),
			IsCommenter:      len(comments) > COMMENTER_RATIO*len(submitted),
		},
		Sentiment: sentiment.Summarize(sentimentTexts(submitted, comments)),
	}
}

func sentimentTexts(submitted []models.Post, comments []models.Comment) []string {
	texts := make([]string, 0, len(submitted)+len(comments))
	for _, p := range submitted {
		if p.IsSelf && p.Content != "" {
			texts = append(texts, p.Title+". "+p.Content)
			continue
		}
		texts = append(texts, p.Title)
	}
	for _, c := range comments {
		texts = append(texts, c.Content)
	}
	return texts
}

// BuildSummary is the headline numbers block shown above the persona.
func BuildSummary(profile *models.UserProfile, submitted []models.Post, comments []models.Comment, now time.Time) models.Summary {
	s := models.Summary{
		TotalPosts:          len(submitted),
		TotalComments:       len(comments),
		AveragePostScore:    AverageScore(submitted),
		AverageCommentScore: AverageScore(comments),
	}

	top := TopSubreddits(SubredditsOf(submitted), SubredditsOf(comments))
	if len(top) > TOP_SUBREDDIT_LIMIT {
		top = top[:TOP_SUBREDDIT_LIMIT]
	}
	s.TopSubreddits = top

	if profile == nil {
		return s
	}
	s.LinkKarma = profile.LinkKarma
	s.CommentKarma = profile.CommentKarma
	s.TotalKarma = profile.TotalKarma
	if s.TotalKarma == 0 {
		s.TotalKarma = profile.LinkKarma + profile.CommentKarma
	}
	s.AccountAgeDays = AccountAgeDays(profile.CreatedUTC, now)
	s.KarmaPerDay = round2(float64(s.TotalKarma) / float64(max(1, s.AccountAgeDays)))
	return s
}
