package rowguard

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rowguard/rowguard-go/routes"
)

// Defaults applied by MintToken and every construction path.
const (
	// DefaultRole is the backend role claimed when none is given.
	DefaultRole = "authenticated"
	// DefaultValiditySeconds is the token lifetime when none is given.
	DefaultValiditySeconds = 3600
	// Audience is the fixed aud claim the backend expects on user tokens.
	Audience = "authenticated"
)

// MintToken builds and signs an impersonation token for subject. The result
// is a compact HS256 JWT the backend's row-level-security policies key off.
// WithRole, WithValiditySeconds, and WithExtraClaims apply; omitted settings
// take the defaults above, but an explicit non-positive validity is
// rejected.
func MintToken(cfg Config, subject string, opts ...Option) (string, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return mintToken(cfg, subject, o.role, o.validitySeconds, o.extraClaims)
}

func mintToken(cfg Config, subject, role string, validitySeconds int, extraClaims map[string]any) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", TokenError{Reason: "subject cannot be empty"}
	}
	if validitySeconds <= 0 {
		return "", TokenError{Reason: "validity must be positive"}
	}
	if role == "" {
		role = DefaultRole
	}

	iat := time.Now().UTC().Unix()
	exp := iat + int64(validitySeconds)

	claims := jwt.MapClaims{}
	for name, value := range extraClaims {
		claims[name] = value
	}
	// Required claims overwrite extras: forged sub/role/aud/iss are
	// neutralized here.
	claims["sub"] = subject
	claims["role"] = role
	claims["aud"] = Audience
	claims["iss"] = strings.TrimSuffix(cfg.URL, "/") + routes.Auth
	claims["iat"] = iat
	claims["exp"] = exp

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", TokenError{Reason: "signing failed", Err: err}
	}
	return signed, nil
}

// VerifyToken parses a token minted by this SDK and returns its claims.
// Verification fails for foreign signatures, non-HMAC algorithms, and
// expired tokens.
func VerifyToken(cfg Config, token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (any, error) {
			return []byte(cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, TokenError{Reason: "token verification failed", Err: err}
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, TokenError{Reason: "unexpected claims type"}
	}
	return claims, nil
}
