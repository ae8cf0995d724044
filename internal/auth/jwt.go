package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/staynest/staynest/internal/domain/user"
)

// Identity is the verified (userId, email) pair derived from a valid
// session token. Handlers must never build one from request input.
type Identity struct {
	UserID user.ID
	Email  string
}

// Token verification failures. The HTTP layer collapses all of these into a
// single 401 code so a response never reveals which one occurred.
var (
	ErrTokenMissing   = errors.New("session token missing")
	ErrTokenMalformed = errors.New("session token malformed or tampered")
	ErrTokenExpired   = errors.New("session token expired")
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a session token embedding the identity and an expiry.
func (m *Manager) Issue(ident Identity) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Email: ident.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.UserID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.secret)
}

// Verify parses and validates a session token. No claim field is trusted
// unless this returns nil error.
func (m *Manager) Verify(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrTokenMissing
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}

		return Identity{}, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid || claims.Subject == "" {
		return Identity{}, ErrTokenMalformed
	}

	return Identity{
		UserID: user.ID(claims.Subject),
		Email:  claims.Email,
	}, nil
}
