package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// tokenSource adapts an InstallationToken to the oauth2 ecosystem.
type tokenSource struct {
	ctx context.Context
	t   *InstallationToken
}

// TokenSource exposes the manager as an oauth2.TokenSource, so the
// credential can feed oauth2.NewClient and oauth2.Transport. The source
// shares the manager's state and carries the same contract: calls must not
// overlap with each other or with Header.
func (t *InstallationToken) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, t: t}
}

// Token returns the current installation token, refreshing it first when
// it has gone stale. Expiry reports the sixty minute lifetime GitHub
// grants installation tokens, measured from the local fetch time.
func (s *tokenSource) Token() (*oauth2.Token, error) {
	if err := s.t.refresh(s.ctx); err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: s.t.token,
		TokenType:   "token",
		Expiry:      s.t.fetchTime.Add(tokenLifetime),
	}, nil
}
