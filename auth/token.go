// Package auth authenticates with the GitHub API as a GitHub App
// installation. A long lived RSA private key proves the App's identity
// through a short lived signed assertion, and the assertion is exchanged
// for an installation access token. InstallationToken holds the current
// token, refreshes it once it goes stale and renders it as an
// Authorization header.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http/httpguts"
)

const (
	// tokenLifetime is how long GitHub honors an installation token.
	tokenLifetime = 60 * time.Minute

	// refreshThreshold is the age at which a held token is refreshed,
	// leaving headroom before it expires server side.
	refreshThreshold = 55 * time.Minute
)

// InstallationToken maintains an installation access token for a GitHub
// App. Construct one with NewInstallationToken and call Header before each
// API request; the token is re-fetched transparently once it is older than
// the refresh threshold.
//
// The type holds plain fields and takes no internal locks. Calls on a
// single InstallationToken must not overlap; callers that share one across
// goroutines serialize access themselves.
type InstallationToken struct {
	// Client is the HTTP client the token exchange goes through. It sets
	// the configured User-Agent on every request, so it can be reused for
	// the API calls made with the fetched token.
	Client *http.Client

	token     string
	fetchTime time.Time
	params    GithubAuthParams

	signer  Signer
	baseURL string
	scope   accessTokenRequest
	nowFunc func() time.Time
	logger  zerolog.Logger
}

// TokenOption adjusts how an InstallationToken is wired.
type TokenOption func(*InstallationToken)

// WithNowFunc replaces the clock used for assertion claims and staleness
// checks.
func WithNowFunc(now func() time.Time) TokenOption {
	return func(t *InstallationToken) {
		t.nowFunc = now
	}
}

// WithHTTPClient supplies the HTTP client to exchange tokens through. The
// client's transport is reused; the User-Agent header is still set on
// every request going through it.
func WithHTTPClient(client *http.Client) TokenOption {
	return func(t *InstallationToken) {
		t.Client = client
	}
}

// WithSigner replaces the RS256 signer built from the private key in the
// parameters.
func WithSigner(signer Signer) TokenOption {
	return func(t *InstallationToken) {
		t.signer = signer
	}
}

// WithLogger routes the refresh log line to a specific logger instead of
// the global one.
func WithLogger(logger zerolog.Logger) TokenOption {
	return func(t *InstallationToken) {
		t.logger = logger
	}
}

// WithBaseURL points the exchange at a GitHub Enterprise Server API base,
// for example "https://github.example.com/api/v3".
func WithBaseURL(baseURL string) TokenOption {
	return func(t *InstallationToken) {
		t.baseURL = baseURL
	}
}

// WithRepositories restricts issued tokens to the named repositories
// within the installation.
func WithRepositories(repositories ...string) TokenOption {
	return func(t *InstallationToken) {
		t.scope.Repositories = repositories
	}
}

// WithPermissions restricts the permissions of issued tokens, for example
// {"contents": "read"}.
func WithPermissions(permissions map[string]string) TokenOption {
	return func(t *InstallationToken) {
		t.scope.Permissions = permissions
	}
}

// NewInstallationToken authenticates as the App and fetches the first
// installation token. There is no constructed-but-unauthenticated state;
// any failure aborts construction.
func NewInstallationToken(ctx context.Context, params GithubAuthParams, options ...TokenOption) (*InstallationToken, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	t := &InstallationToken{
		params:  params,
		baseURL: DefaultBaseURL,
		logger:  log.Logger,
	}

	for _, opt := range options {
		opt(t)
	}

	if t.nowFunc == nil {
		t.nowFunc = time.Now
	}
	if t.signer == nil {
		signer, err := newRS256Signer(params.PrivateKey)
		if err != nil {
			return nil, NewSigningError(err)
		}
		t.signer = signer
	}
	t.Client = newUserAgentClient(t.Client, params.UserAgent)

	if err := t.fetchToken(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Header renders the Authorization header carrying the installation token,
// refreshing the token first when it has gone stale.
func (t *InstallationToken) Header(ctx context.Context) (http.Header, error) {
	if err := t.refresh(ctx); err != nil {
		return nil, err
	}

	value := "token " + t.token
	if !httpguts.ValidHeaderFieldValue(value) {
		return nil, NewHeaderEncodingError(t.token)
	}

	header := http.Header{}
	header.Set("Authorization", value)
	return header, nil
}

// refresh re-fetches the token once its age passes the refresh threshold.
// On failure the held token and fetch time are left untouched.
func (t *InstallationToken) refresh(ctx context.Context) error {
	elapsed := t.nowFunc().Sub(t.fetchTime)
	if elapsed < 0 {
		return NewTimeError("clock went backwards past the token fetch time")
	}

	if elapsed > refreshThreshold {
		t.logger.Info().Msg("refreshing installation token")
		return t.fetchToken(ctx)
	}
	return nil
}

// fetchToken runs one exchange and records the token together with the
// moment it was obtained.
func (t *InstallationToken) fetchToken(ctx context.Context) error {
	rawToken, err := t.getInstallationToken(ctx)
	if err != nil {
		return err
	}
	t.token = rawToken.Token
	t.fetchTime = t.nowFunc()
	return nil
}

// userAgentTransport stamps the configured User-Agent onto every request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := u.base
	if base == nil {
		base = http.DefaultTransport
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", u.userAgent)
	return base.RoundTrip(clone)
}

// newUserAgentClient wraps the client's transport so every request
// identifies itself with the given User-Agent. The client itself is left
// unmodified; timeouts and cookie handling carry over.
func newUserAgentClient(base *http.Client, userAgent string) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	clone := *base
	clone.Transport = &userAgentTransport{base: base.Transport, userAgent: userAgent}
	return &clone
}
