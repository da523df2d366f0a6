package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OAuthState is the payload carried through the OAuth redirect round
// trip. Signing it prevents a forged callback from binding a token to an
// arbitrary student.
type OAuthState struct {
	Email       string `json:"email"`
	SheetID     string `json:"sheet_id"`
	GroupName   string `json:"group_name,omitempty"`
	ExtensionID string `json:"extension_id"`
}

type stateClaims struct {
	OAuthState
	jwt.RegisteredClaims
}

// StateSigner signs and verifies OAuth state tokens (HS256).
type StateSigner struct {
	key []byte
	ttl time.Duration
}

func NewStateSigner(secret string, ttl time.Duration) (*StateSigner, error) {
	if secret == "" {
		return nil, errors.New("state signing secret is not configured")
	}
	return &StateSigner{key: []byte(secret), ttl: ttl}, nil
}

func (s *StateSigner) Sign(state OAuthState) (string, error) {
	now := time.Now()
	claims := stateClaims{
		OAuthState: state,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *StateSigner) Verify(token string) (OAuthState, error) {
	var claims stateClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	})
	if err != nil {
		return OAuthState{}, err
	}
	if !parsed.Valid {
		return OAuthState{}, errors.New("invalid state token")
	}
	return claims.OAuthState, nil
}
