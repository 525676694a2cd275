// Package auth issues and checks the credentials an agent presents when it
// joins a game.
//
// Credentials are HS256 JWTs carrying the account as the subject and the
// game as the audience, so a token issued for one game is useless at another.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// ErrInvalidToken indicates the token is definitively invalid.
var ErrInvalidToken = errors.New("auth: invalid token")

const (
	DefaultIssuer = "pokeragent"
	DefaultTTL    = 24 * time.Hour
)

// Identity is the stable account an agent plays as. Its AccountID is the key
// the authority uses in SharedState.Players.
type Identity struct {
	AccountID string `json:"accountId"`
}

// DefaultAccountID generates a fresh account identifier
func DefaultAccountID() string {
	return "agent-" + uuid.NewString()[:8]
}

// Signer issues credentials bound to one game
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer. A zero ttl uses DefaultTTL.
func NewSigner(secret, issuer string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Sign returns a credential for id to join gameID
func (s *Signer) Sign(id Identity, gameID string) (string, error) {
	if id.AccountID == "" {
		return "", errors.New("auth: account id is required")
	}
	if gameID == "" {
		return "", errors.New("auth: game id is required")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": id.AccountID,
		"aud": gameID,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verifier checks credentials issued by a Signer sharing its secret
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a verifier. An empty issuer accepts any issuer.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify checks the signature, expiry and audience of token and returns the
// identity it was issued to. Any failure wraps ErrInvalidToken.
func (v *Verifier) Verify(token, gameID string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}
	if !claims.VerifyAudience(gameID, true) {
		return Identity{}, fmt.Errorf("%w: not issued for game %q", ErrInvalidToken, gameID)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return Identity{}, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Identity{AccountID: sub}, nil
}
