package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenBackdatesZeroExpiry(t *testing.T) {
	tok := Token("stale-access", "rt", time.Time{})

	// A zero expiry would make the oauth2 library serve the stored access
	// token forever; the rebuilt token must already be expired so the
	// refresh token gets used.
	assert.True(t, tok.Expiry.Before(time.Now()))
	assert.False(t, tok.Valid())
	assert.Equal(t, "rt", tok.RefreshToken)
}

func TestTokenKeepsStoredExpiry(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute)
	tok := Token("access", "rt", expiry)

	assert.True(t, expiry.Equal(tok.Expiry))
	assert.True(t, tok.Valid())
}

type staticTokenSource struct {
	tok *oauth2.Token
}

func (s staticTokenSource) Token() (*oauth2.Token, error) {
	return s.tok, nil
}

func TestRefreshNotifySourceReportsRotationOnce(t *testing.T) {
	stored := Token("old-access", "rt", time.Time{})
	fresh := &oauth2.Token{
		AccessToken:  "new-access",
		RefreshToken: "rt",
		Expiry:       time.Now().Add(time.Hour),
	}

	var notified [][2]string
	src := &refreshNotifySource{
		src:  staticTokenSource{tok: fresh},
		last: stored,
		notify: func(old, fresh *oauth2.Token) {
			notified = append(notified, [2]string{old.AccessToken, fresh.AccessToken})
		},
	}

	got, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "new-access", got.AccessToken)

	// Repeated fetches of the same token must not re-notify.
	_, err = src.Token()
	require.NoError(t, err)

	require.Len(t, notified, 1)
	assert.Equal(t, [2]string{"old-access", "new-access"}, notified[0])
}

func TestTokenSourceWiresRefreshHook(t *testing.T) {
	c := NewClient("id", "secret", "http://localhost/callback")
	tok := Token("access", "rt", time.Now().Add(time.Hour))

	_, plain := c.tokenSource(context.Background(), tok).(*refreshNotifySource)
	assert.False(t, plain)

	c.OnTokenRefresh(func(_, _ *oauth2.Token) {})
	_, wrapped := c.tokenSource(context.Background(), tok).(*refreshNotifySource)
	assert.True(t, wrapped)
}
