package auth

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs the claims of an identity assertion. The default signer
// holds the RSA key from GithubAuthParams in memory; WithSigner swaps in
// alternative key handling, for example a signer backed by a KMS.
type Signer interface {
	// Sign creates a signed JWT token from claims
	Sign(claims jwt.MapClaims) (string, error)
}

// rs256Signer implements Signer using RSA with RS256, the only algorithm
// the GitHub App endpoints accept.
type rs256Signer struct {
	privateKey *rsa.PrivateKey
}

// newRS256Signer parses a PEM encoded RSA private key into a signer.
func newRS256Signer(privateKeyPEM []byte) (*rs256Signer, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA private key: %w", err)
	}
	return &rs256Signer{privateKey: privateKey}, nil
}

func (s *rs256Signer) Sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)

	signedToken, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}
