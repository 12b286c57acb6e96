// Package media integrates with the external real-time media relay: it
// issues time-boxed session credentials and provisions relay rooms.
package media

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenIssuer signs media-session access tokens in the relay's video
// access-token format: HS256, issuer = API key SID, subject = account SID,
// with an identity and a room grant.
type TokenIssuer struct {
	accountSID string
	apiKeySID  string
	apiSecret  string
	ttl        time.Duration
}

// NewTokenIssuer creates an issuer. Returns nil when credentials are absent;
// callers must treat a nil issuer as "tokens unavailable" and degrade.
func NewTokenIssuer(accountSID, apiKeySID, apiSecret string, ttl time.Duration) *TokenIssuer {
	if accountSID == "" || apiKeySID == "" || apiSecret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{
		accountSID: accountSID,
		apiKeySID:  apiKeySID,
		apiSecret:  apiSecret,
		ttl:        ttl,
	}
}

// Issue signs a token granting the identity access to roomName until the
// TTL elapses.
func (i *TokenIssuer) Issue(identity, roomName string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti": fmt.Sprintf("%s-%d", i.apiKeySID, now.Unix()),
		"iss": i.apiKeySID,
		"sub": i.accountSID,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
		"grants": map[string]any{
			"identity": identity,
			"video": map[string]any{
				"room": roomName,
			},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = "twilio-fv=1"
	signed, err := token.SignedString([]byte(i.apiSecret))
	if err != nil {
		return "", fmt.Errorf("sign media token: %w", err)
	}
	return signed, nil
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}
