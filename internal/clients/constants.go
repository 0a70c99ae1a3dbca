package clients

import "time"

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"

	GROQ_BASE_URL       = "https://api.groq.com/openai/v1"
	PERPLEXITY_BASE_URL = "https://api.perplexity.ai"
	GROQ_DEFAULT_MODEL  = "llama-3-70b-8192"
	PPLX_DEFAULT_MODEL  = "sonar"

	SIMPLE_FETCH_LIMIT        = 10
	COMPREHENSIVE_FETCH_LIMIT = 25
	MAX_FETCH_LIMIT           = 100

	REDDIT_HTTP_TIMEOUT = 15 * time.Second
	LLM_HTTP_TIMEOUT    = 30 * time.Second
	MAX_ERROR_BODY      = 4096
)
