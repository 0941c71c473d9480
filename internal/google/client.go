package google

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var scopes = []string{
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/tasks",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// Client wraps the Google OAuth config and the Gmail/Calendar/Tasks APIs.
// All methods take the user's token so one Client serves every user.
type Client struct {
	oauth     *oauth2.Config
	onRefresh func(old, fresh *oauth2.Token)
}

func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint:     googleauth.Endpoint,
		},
	}
}

// OnTokenRefresh registers a hook invoked whenever the oauth2 library trades
// the refresh token for a new access token, so the caller can persist the
// fresh pair. Must be set before the client is shared across goroutines.
func (c *Client) OnTokenRefresh(fn func(old, fresh *oauth2.Token)) {
	c.onRefresh = fn
}

// AuthURL returns the consent-screen redirect target. Offline access with
// forced consent so a refresh token is always issued.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

// Token rebuilds an oauth2.Token from the persisted fields. A zero expiry is
// backdated: the oauth2 library treats it as never expiring and would serve a
// stale access token forever, so an unknown expiry must force a refresh
// instead.
func Token(accessToken, refreshToken string, expiry time.Time) *oauth2.Token {
	if expiry.IsZero() {
		expiry = time.Now().Add(-time.Minute)
	}
	return &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Expiry:       expiry,
	}
}

func (c *Client) httpClient(ctx context.Context, tok *oauth2.Token) *http.Client {
	return oauth2.NewClient(ctx, c.tokenSource(ctx, tok))
}

func (c *Client) tokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	src := c.oauth.TokenSource(ctx, tok)
	if c.onRefresh == nil {
		return src
	}
	return &refreshNotifySource{src: src, last: tok, notify: c.onRefresh}
}

// refreshNotifySource reports token rotations to the refresh hook exactly
// once per rotation.
type refreshNotifySource struct {
	mu     sync.Mutex
	src    oauth2.TokenSource
	last   *oauth2.Token
	notify func(old, fresh *oauth2.Token)
}

func (s *refreshNotifySource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	old := s.last
	rotated := tok.AccessToken != old.AccessToken
	if rotated {
		s.last = tok
	}
	s.mu.Unlock()

	if rotated {
		s.notify(old, tok)
	}
	return tok, nil
}

// Userinfo is the subset of the Google profile the dashboard needs.
type Userinfo struct {
	ID    string
	Email string
	Name  string
}

func (c *Client) Userinfo(ctx context.Context, tok *oauth2.Token) (*Userinfo, error) {
	svc, err := oauth2api.NewService(ctx, option.WithHTTPClient(c.httpClient(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}

	return &Userinfo{ID: info.Id, Email: info.Email, Name: info.Name}, nil
}
