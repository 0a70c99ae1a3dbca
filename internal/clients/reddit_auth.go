package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spacesedan/redditpersona/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// userAgentTransport stamps every outbound Reddit request, token calls included.
// Reddit rejects requests that arrive with a generic Go user agent.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// redditTokenSource obtains an app token with the configured grant and falls back
// to client_credentials when a user grant is rejected.
type redditTokenSource struct {
	ctx      context.Context
	cfg      config.RedditConfig
	tokenURL string
}

// NewRedditTokenSource returns a cached token source. A token is reused until its
// expiry, then the grant is performed again.
func NewRedditTokenSource(ctx context.Context, cfg config.RedditConfig, tokenURL string, httpClient *http.Client) oauth2.TokenSource {
	if tokenURL == "" {
		tokenURL = REDDIT_AUTH_URL
	}
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	return oauth2.ReuseTokenSource(nil, &redditTokenSource{ctx: ctx, cfg: cfg, tokenURL: tokenURL})
}

func (s *redditTokenSource) Token() (*oauth2.Token, error) {
	grant := s.cfg.GrantType
	if grant == "" {
		grant = config.GrantClientCredentials
	}

	var (
		tok *oauth2.Token
		err error
	)
	switch grant {
	case config.GrantPassword:
		tok, err = s.userConfig().PasswordCredentialsToken(s.ctx, s.cfg.Username, s.cfg.Password)
	case config.GrantRefreshToken:
		tok, err = s.userConfig().TokenSource(s.ctx, &oauth2.Token{RefreshToken: s.cfg.RefreshToken}).Token()
	default:
		tok, err = s.appToken()
		if err != nil {
			return nil, mapAuthError(err)
		}
		slog.Debug("[RedditAuth] Obtained app token", slog.String("grant", config.GrantClientCredentials))
		return tok, nil
	}
	if err == nil {
		slog.Debug("[RedditAuth] Obtained user token", slog.String("grant", grant))
		return tok, nil
	}

	slog.Warn("[RedditAuth] User grant failed, falling back to client_credentials",
		slog.String("grant", grant),
		slog.String("error", err.Error()))

	tok, fallbackErr := s.appToken()
	if fallbackErr != nil {
		slog.Error("[RedditAuth] Fallback grant failed",
			slog.String("error", fallbackErr.Error()))
		return nil, mapAuthError(err)
	}
	return tok, nil
}

func (s *redditTokenSource) userConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func (s *redditTokenSource) appToken() (*oauth2.Token, error) {
	cc := &clientcredentials.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		TokenURL:     s.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return cc.Token(s.ctx)
}

func mapAuthError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &UpstreamError{
			Service:    "reddit-auth",
			StatusCode: re.Response.StatusCode,
			Body:       string(re.Body),
		}
	}
	return fmt.Errorf("[RedditAuth] token request failed: %w", err)
}
