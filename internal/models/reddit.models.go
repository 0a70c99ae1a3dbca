package models

// Post is a submitted link or self post, projected from a t3 listing child.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio,omitempty"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc,omitempty"`
	IsSelf      bool    `json:"is_self"`
	Over18      bool    `json:"over_18,omitempty"`
	URL         string  `json:"url,omitempty"`
	Permalink   string  `json:"permalink,omitempty"`
}

// Comment is projected from a t1 listing child.
type Comment struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Subreddit  string  `json:"subreddit"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc,omitempty"`
	ParentID   string  `json:"parent_id,omitempty"`
	LinkID     string  `json:"link_id,omitempty"`
	LinkTitle  string  `json:"link_title,omitempty"`
	Permalink  string  `json:"permalink,omitempty"`
}

// OverviewItem is one entry of the mixed overview listing.
type OverviewItem struct {
	Type       string  `json:"type"`
	ID         string  `json:"id"`
	Title      string  `json:"title,omitempty"`
	Content    string  `json:"content"`
	Subreddit  string  `json:"subreddit"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc,omitempty"`
	Permalink  string  `json:"permalink,omitempty"`
}

const (
	OverviewTypePost    = "post"
	OverviewTypeComment = "comment"
)

// UserProfile holds the account-level fields from /user/<name>/about.
type UserProfile struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	CreatedUTC       float64 `json:"created_utc"`
	LinkKarma        int     `json:"link_karma"`
	CommentKarma     int     `json:"comment_karma"`
	TotalKarma       int     `json:"total_karma"`
	IsMod            bool    `json:"is_mod"`
	IsGold           bool    `json:"is_gold"`
	Verified         bool    `json:"verified"`
	HasVerifiedEmail bool    `json:"has_verified_email"`
	IconImg          string  `json:"icon_img,omitempty"`
}

func (p Post) SubredditName() string         { return p.Subreddit }
func (c Comment) SubredditName() string      { return c.Subreddit }
func (o OverviewItem) SubredditName() string { return o.Subreddit }

func (p Post) ItemScore() int         { return p.Score }
func (c Comment) ItemScore() int      { return c.Score }
func (o OverviewItem) ItemScore() int { return o.Score }

func (p Post) CreatedAt() float64         { return p.CreatedUTC }
func (c Comment) CreatedAt() float64      { return c.CreatedUTC }
func (o OverviewItem) CreatedAt() float64 { return o.CreatedUTC }

type RedditAPIResponse struct {
	Kind string        `json:"kind"`
	Data RedditAPIData `json:"data"`
}

type RedditAPIData struct {
	After    string           `json:"after"`
	Children []RedditAPIChild `json:"children"`
}

type RedditAPIChild struct {
	Kind string             `json:"kind"`
	Data RedditAPIChildData `json:"data"`
}

// RedditAPIChildData covers both t3 (post) and t1 (comment) children.
type RedditAPIChildData struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Body        string  `json:"body"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	IsSelf      bool    `json:"is_self"`
	Over18      bool    `json:"over_18"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	ParentID    string  `json:"parent_id"`
	LinkID      string  `json:"link_id"`
	LinkTitle   string  `json:"link_title"`
}

type RedditAboutResponse struct {
	Kind string          `json:"kind"`
	Data RedditAboutData `json:"data"`
}

type RedditAboutData struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	CreatedUTC       float64 `json:"created_utc"`
	LinkKarma        int     `json:"link_karma"`
	CommentKarma     int     `json:"comment_karma"`
	TotalKarma       int     `json:"total_karma"`
	IsMod            bool    `json:"is_mod"`
	IsGold           bool    `json:"is_gold"`
	Verified         bool    `json:"verified"`
	HasVerifiedEmail bool    `json:"has_verified_email"`
	IconImg          string  `json:"icon_img"`
}
