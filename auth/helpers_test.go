package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/github-app-auth/auth"
)

const (
	testUserAgent      = "installation-token-test"
	testAppID          = 1234
	testInstallationID = 5678
	tokenOne           = "v1.1f699f1069f60aaa"
	tokenTwo           = "v1.1f699f1069f60bbb"
	acceptMachineMan   = "application/vnd.github.machine-man-preview+json"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
	testKeyPEM  []byte
)

// testPrivateKey returns a process-wide RSA key pair for signing test
// assertions, generated once because key generation dominates test time.
func testPrivateKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()

	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return
		}
		testKey = key
		testKeyPEM = pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		})
	})
	require.NotNil(t, testKey, "failed to generate test RSA key")
	return testKey, testKeyPEM
}

func testParams(t *testing.T) auth.GithubAuthParams {
	t.Helper()

	_, keyPEM := testPrivateKey(t)
	return auth.GithubAuthParams{
		UserAgent:      testUserAgent,
		PrivateKey:     keyPEM,
		AppID:          testAppID,
		InstallationID: testInstallationID,
	}
}

// fakeClock stands in for time.Now through WithNowFunc.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// exchangeStub plays the installation token endpoint. It counts exchanges
// and can be switched between success and failure responses between calls.
type exchangeStub struct {
	t *testing.T

	mu      sync.Mutex
	calls   int
	status  int
	token   string
	errBody string
}

func newExchangeStub(t *testing.T) *exchangeStub {
	return &exchangeStub{t: t, status: http.StatusCreated, token: tokenOne}
}

func (s *exchangeStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls++
	status, token, errBody := s.status, s.token, s.errBody
	s.mu.Unlock()

	assert.Equal(s.t, http.MethodPost, r.Method)
	assert.Equal(s.t, fmt.Sprintf("/app/installations/%d/access_tokens", testInstallationID), r.URL.Path)
	assert.Equal(s.t, acceptMachineMan, r.Header.Get("Accept"))
	assert.True(s.t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))

	w.WriteHeader(status)
	if status >= http.StatusBadRequest {
		fmt.Fprint(w, errBody)
		return
	}
	fmt.Fprintf(w, `{"token": %q, "expires_at": "2026-03-17T10:00:00Z"}`, token)
}

// succeed makes following exchanges return the given token.
func (s *exchangeStub) succeed(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = http.StatusCreated
	s.token = token
}

// fail makes following exchanges answer with an error status and body.
func (s *exchangeStub) fail(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.errBody = body
}

func (s *exchangeStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// testFixture wires an exchange stub, a server in front of it and a
// controllable clock.
type testFixture struct {
	stub   *exchangeStub
	server *httptest.Server
	clock  *fakeClock
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	stub := newExchangeStub(t)
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)

	return &testFixture{
		stub:   stub,
		server: server,
		clock:  &fakeClock{now: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)},
	}
}

// newToken constructs a manager against the fixture's stub and clock.
func (f *testFixture) newToken(t *testing.T, options ...auth.TokenOption) *auth.InstallationToken {
	t.Helper()

	token, err := f.newTokenErr(t, options...)
	require.NoError(t, err)
	return token
}

func (f *testFixture) newTokenErr(t *testing.T, options ...auth.TokenOption) (*auth.InstallationToken, error) {
	t.Helper()

	all := append([]auth.TokenOption{
		auth.WithBaseURL(f.server.URL),
		auth.WithNowFunc(f.clock.Now),
	}, options...)
	return auth.NewInstallationToken(context.Background(), testParams(t), all...)
}

// authorizationValue fetches the rendered header and returns its
// Authorization value.
func authorizationValue(t *testing.T, token *auth.InstallationToken) string {
	t.Helper()

	header, err := token.Header(context.Background())
	require.NoError(t, err)
	return header.Get("Authorization")
}
