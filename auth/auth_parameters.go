package auth

import (
	"strings"

	validation "github.com/jellydator/validation"
)

// GithubAuthParams identifies the GitHub App installation to authenticate
// as. All fields are required and are fixed for the lifetime of an
// InstallationToken.
type GithubAuthParams struct {
	// UserAgent is sent on every request to the GitHub API. GitHub asks
	// integrators to identify themselves with something distinctive, for
	// example "myorg-deploy-bot".
	UserAgent string

	// PrivateKey is the PEM encoded RSA private key generated for the App
	// in the GitHub developer settings. The key material is only ever
	// parsed, never logged or echoed back.
	PrivateKey []byte

	// AppID is the numeric identifier of the GitHub App. It becomes the
	// issuer claim of the identity assertion.
	AppID uint64

	// InstallationID is the numeric identifier of the installation this
	// credential is scoped to. Listed by GET /app/installations.
	InstallationID uint64
}

// notBlank rejects strings that are empty after trimming whitespace.
var notBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Validate checks that the parameters are complete enough to attempt an
// exchange. It runs before any key parsing or network traffic.
func (p *GithubAuthParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.UserAgent, validation.Required, notBlank),
		validation.Field(&p.PrivateKey, validation.Required),
		validation.Field(&p.AppID, validation.Required),
		validation.Field(&p.InstallationID, validation.Required),
	)
}
