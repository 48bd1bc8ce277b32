package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Sentinel errors double as the user-visible messages in 401 bodies, so they
// keep the exact wording clients already match on.
var (
	ErrMissingHeader = errors.New("Missing Authorization header")
	ErrInvalidToken  = errors.New("Unauthorized: Invalid token")
	ErrTokenExpired  = errors.New("Token expired")
	ErrInvalidUserID = errors.New("Unauthorized: Invalid user_id format")
)

// Identity is the trusted user identity resolved from a verified token.
// The pipeline never trusts client-supplied user ids.
type Identity struct {
	UserID string
	Email  string
}

// Verifier checks bearer credentials against the shared HS256 secret.
type Verifier struct {
	secret   []byte
	audience string
}

func NewVerifier(secret, audience string) *Verifier {
	return &Verifier{secret: []byte(secret), audience: audience}
}

// Verify validates the Authorization header value and returns the identity
// from its claims. The header may carry either "Bearer <token>" or a bare
// token.
func (v *Verifier) Verify(authHeader string) (*Identity, error) {
	if strings.TrimSpace(authHeader) == "" {
		return nil, ErrMissingHeader
	}

	tokenStr := authHeader
	if _, after, found := strings.Cut(authHeader, " "); found {
		tokenStr = after
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenStr), claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrInvalidUserID
	}

	return &Identity{UserID: userID, Email: email}, nil
}
