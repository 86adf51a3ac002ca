// Package identity verifies PASETO v4.local tokens issued by the external
// identity provider and resolves them to a Viewer. Credentials and account
// lifecycle live with the provider; this package only consumes its tokens.
package identity

import (
	"encoding/hex"
	"encoding/json/v2"
	"fmt"
	"slices"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/errors"
)

const (
	tokenIssuer   = "wordbook-identity"
	tokenAudience = "wordbook-server"

	// PASETO v4 symmetric key requirements.
	keyBytesSize = 32 // 256 bits
	keyHexSize   = 64 // 32 bytes as hex string
)

// Claims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable without
// the shared key.
type Claims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	Role      string `json:"role"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
}

// Verifier decrypts and validates access tokens and maps their claims to a
// Viewer. The admin override list grants admin rights to specific accounts
// regardless of the role claim.
type Verifier struct {
	symmetricKey paseto.V4SymmetricKey
	adminUserIDs []string
}

// NewVerifier creates a verifier from the raw 32-byte shared key.
func NewVerifier(keyBytes []byte, adminUserIDs []string) (*Verifier, error) {
	if len(keyBytes) != keyBytesSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyBytesSize, len(keyBytes))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &Verifier{
		symmetricKey: key,
		adminUserIDs: slices.Clone(adminUserIDs),
	}, nil
}

// NewVerifierFromHex creates a verifier from a hex-encoded shared key.
func NewVerifierFromHex(keyHex string, adminUserIDs []string) (*Verifier, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d hex characters, got %d", keyHexSize, len(keyHex))
	}
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for PASETO key: %w", err)
	}
	return NewVerifier(keyBytes, adminUserIDs)
}

// Verify decrypts and validates a token, returning its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(v.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, errors.Unauthorized("invalid token").WithCause(err)
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, errors.Unauthorized("malformed token claims").WithCause(err)
	}
	if claims.UserID == "" {
		return nil, errors.Unauthorized("token missing user id")
	}

	return &claims, nil
}

// ViewerFor resolves claims to a Viewer, applying the admin override list.
func (v *Verifier) ViewerFor(claims *Claims) domain.Viewer {
	role := domain.RoleMember
	if claims.Role == string(domain.RoleAdmin) || slices.Contains(v.adminUserIDs, claims.UserID) {
		role = domain.RoleAdmin
	}

	return domain.Viewer{
		ID:            claims.UserID,
		Username:      claims.Username,
		FirstName:     claims.FirstName,
		Role:          role,
		Authenticated: true,
	}
}

// Issue creates a v4.local token for a user. The provider does this in
// production; we need it for seeding and tests.
func (v *Verifier) Issue(user *domain.User, lifetime time.Duration) string {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(lifetime))

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("user_id", user.ID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("username", user.Username)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("first_name", user.FirstName)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("role", string(user.Role))

	return token.V4Encrypt(v.symmetricKey, nil)
}
