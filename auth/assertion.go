package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// assertionLifetime is the validity window of an identity assertion in
// seconds. The exchange endpoint rejects assertions with a longer window.
const assertionLifetime = 60

// identityClaims builds the claim set of an App identity assertion: issued
// now, expiring one minute later, issued by the numeric App id.
func identityClaims(appID uint64, now time.Time) (jwt.MapClaims, error) {
	iat := now.Unix()
	if iat < 0 {
		return nil, NewTimeError("system time is before the Unix epoch")
	}
	return jwt.MapClaims{
		"iat": iat,
		"exp": iat + assertionLifetime,
		"iss": appID,
	}, nil
}

// buildAssertion signs a fresh identity assertion. Assertions are never
// reused across exchanges.
func buildAssertion(signer Signer, appID uint64, now time.Time) (string, error) {
	claims, err := identityClaims(appID, now)
	if err != nil {
		return "", err
	}

	assertion, err := signer.Sign(claims)
	if err != nil {
		return "", NewSigningError(err)
	}
	return assertion, nil
}
