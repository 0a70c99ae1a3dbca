package processing

import "github.com/spacesedan/redditpersona/internal/models"

// Demo returns a canned analysis that exercises every UI section without
// touching Reddit or the LLM.
func (a *Analyzer) Demo() *models.AnalysisResult {
	data := &models.RedditUserData{
		Username:      "DemoUser",
		TotalPosts:    2,
		TotalComments: 2,
		Submitted: []models.Post{
			{ID: "demo1", Title: "My favorite programming language", Content: "I love Python!", Subreddit: "learnprogramming", Score: 42, IsSelf: true},
			{ID: "demo2", Title: "Show HN: My new project", Content: "Check out my new web app!", Subreddit: "webdev", Score: 30, IsSelf: true},
		},
		Comments: []models.Comment{
			{ID: "demo3", Content: "Great post! Thanks for sharing.", Subreddit: "learnprogramming", Score: 10},
			{ID: "demo4", Content: "I prefer JavaScript for frontend work.", Subreddit: "webdev", Score: 8},
		},
	}
	a.Enrich(data)

	persona := &models.Persona{
		Name:               "Alex Demo",
		Age:                "25-30",
		Location:           "San Francisco, CA",
		Occupation:         "Software Engineer",
		Interests:          models.TextList{"Programming", "Startups", "AI"},
		Personality:        models.TextList{"Curious", "Analytical", "Friendly"},
		PoliticalView:      "Liberal",
		Lifestyle:          "Active, Tech-focused",
		CommunicationStyle: "Direct, Supportive",
		Values:             models.TextList{"Learning", "Innovation", "Community"},
		Archetype:          "The Builder",
		Narrative:          "I'm Alex, a passionate developer who loves building things and helping others learn.",
	}

	return &models.AnalysisResult{RedditData: data, Persona: persona}
}
