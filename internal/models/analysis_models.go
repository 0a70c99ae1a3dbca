package models

import "time"

// RedditUserData is everything fetched and derived for one user in one request.
type RedditUserData struct {
	Username      string    `json:"username"`
	Comprehensive bool      `json:"comprehensive"`
	TotalPosts    int       `json:"totalPosts"`
	TotalComments int       `json:"totalComments"`
	Submitted     []Post    `json:"submitted"`
	Comments      []Comment `json:"comments"`

	UserInfo         *UserProfile      `json:"userInfo,omitempty"`
	Overview         []OverviewItem    `json:"overview,omitempty"`
	ActivityAnalysis *ActivityAnalysis `json:"activityAnalysis,omitempty"`
	Summary          *Summary          `json:"summary,omitempty"`
}

type SubredditCount struct {
	Subreddit string `json:"subreddit"`
	Count     int    `json:"count"`
}

type Summary struct {
	TotalKarma          int              `json:"total_karma"`
	LinkKarma           int              `json:"link_karma"`
	CommentKarma        int              `json:"comment_karma"`
	AccountAgeDays      int              `json:"account_age_days"`
	KarmaPerDay         float64          `json:"karma_per_day"`
	TotalPosts          int              `json:"total_posts"`
	TotalComments       int              `json:"total_comments"`
	AveragePostScore    int              `json:"average_post_score"`
	AverageCommentScore int              `json:"average_comment_score"`
	TopSubreddits       []SubredditCount `json:"top_subreddits"`
}

type ActivityAnalysis struct {
	AccountAgeDays  int             `json:"accountAgeDays"`
	ActivityLevel   ActivityLevel   `json:"activityLevel"`
	ContentAnalysis ContentAnalysis `json:"contentAnalysis"`
	Engagement      Engagement      `json:"engagement"`
	Patterns        Patterns        `json:"patterns"`
	Sentiment       *Sentiment      `json:"sentiment,omitempty"`
}

type ActivityLevel struct {
	PostsPerDay    float64 `json:"postsPerDay"`
	CommentsPerDay float64 `json:"commentsPerDay"`
	RecentActivity float64 `json:"recentActivity"`
	TotalActivity  int     `json:"totalActivity"`
}

type ContentAnalysis struct {
	SelfPosts       int     `json:"selfPosts"`
	LinkPosts       int     `json:"linkPosts"`
	SelfPostRatio   float64 `json:"selfPostRatio"`
	AvgPostScore    int     `json:"avgPostScore"`
	AvgCommentScore int     `json:"avgCommentScore"`
	TotalEngagement int     `json:"totalEngagement"`
}

type Engagement struct {
	AvgPostScore      int     `json:"avgPostScore"`
	AvgCommentScore   int     `json:"avgCommentScore"`
	EngagementPerPost float64 `json:"engagementPerPost"`
}

type Patterns struct {
	IsActive         bool `json:"isActive"`
	IsEngaged        bool `json:"isEngaged"`
	IsContentCreator bool `json:"isContentCreator"`
	IsCommenter      bool `json:"isCommenter"`
}

type Sentiment struct {
	AverageCompound float64 `json:"averageCompound"`
	Label           string  `json:"label"`
	Positive        int     `json:"positive"`
	Neutral         int     `json:"neutral"`
	Negative        int     `json:"negative"`
	Analyzed        int     `json:"analyzed"`
}

// AnalysisResult is the "data" object of an analyze response.
type AnalysisResult struct {
	RedditData          *RedditUserData `json:"redditData"`
	Persona             *Persona        `json:"persona"`
	PersonaFilePath     string          `json:"personaFilePath,omitempty"`
	PersonaHTMLFilePath string          `json:"personaHtmlFilePath,omitempty"`
	SimulatedPost       string          `json:"simulated_post,omitempty"`
	Citations           []string        `json:"citations,omitempty"`
}

// AnalysisEvent is published for downstream consumers once an analysis completes.
type AnalysisEvent struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Comprehensive bool      `json:"comprehensive"`
	Archetype     string    `json:"archetype,omitempty"`
	ExportStatus  string    `json:"export_status,omitempty"`
	TotalPosts    int       `json:"total_posts"`
	TotalComments int       `json:"total_comments"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	ExportSuccess = "success"
	ExportPartial = "partial"
	ExportFailed  = "failed"
)

// ExportResult reports which report formats were written to disk.
type ExportResult struct {
	Status   string `json:"status"`
	TextPath string `json:"textPath,omitempty"`
	HTMLPath string `json:"htmlPath,omitempty"`
	TextErr  string `json:"textError,omitempty"`
	HTMLErr  string `json:"htmlError,omitempty"`
}
