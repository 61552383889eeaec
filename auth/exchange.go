package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the endpoint base of the public GitHub API. Override
// it with WithBaseURL for GitHub Enterprise Server installations.
const DefaultBaseURL = "https://api.github.com"

// machineManPreview is the Accept media type the GitHub App installation
// endpoints were published under.
const machineManPreview = "application/vnd.github.machine-man-preview+json"

// accessTokenRequest narrows the access granted to the issued token. An
// empty request is sent without a body and yields a token carrying the
// installation's full access.
type accessTokenRequest struct {
	Repositories []string          `json:"repositories,omitempty"`
	Permissions  map[string]string `json:"permissions,omitempty"`
}

func (r accessTokenRequest) empty() bool {
	return len(r.Repositories) == 0 && len(r.Permissions) == 0
}

// rawInstallationToken is the wire shape of a created installation token.
// ExpiresAt is decoded along with the rest of the response; refresh timing
// is driven by the locally recorded fetch time, not the server value.
type rawInstallationToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// getInstallationToken trades a signed identity assertion for an
// installation access token. One POST, no retries.
func (t *InstallationToken) getInstallationToken(ctx context.Context) (*rawInstallationToken, error) {
	assertion, err := buildAssertion(t.signer, t.params.AppID, t.nowFunc())
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", t.baseURL, t.params.InstallationID)

	var body io.Reader
	if !t.scope.empty() {
		payload, err := json.Marshal(t.scope)
		if err != nil {
			return nil, NewRequestError(err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, NewRequestError(err)
	}
	req.Header.Set("Authorization", "Bearer "+assertion)
	req.Header.Set("Accept", machineManPreview)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, NewRequestError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, NewRequestStatusError(resp.StatusCode, string(respBody))
	}

	var rawToken rawInstallationToken
	if err := json.NewDecoder(resp.Body).Decode(&rawToken); err != nil {
		return nil, NewRequestError(err)
	}

	// A success status with a body of any other shape is still a failed
	// exchange; an empty token must never be stored.
	if rawToken.Token == "" {
		return nil, NewRequestError(errors.New("token missing from response"))
	}
	if rawToken.ExpiresAt.IsZero() {
		return nil, NewRequestError(errors.New("expires_at missing from response"))
	}
	return &rawToken, nil
}
