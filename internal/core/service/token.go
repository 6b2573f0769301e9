package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// KeySet holds the HMAC keys tokens are signed with. The current key signs
// new tokens; previous keys still verify tokens issued before a rotation.
type KeySet struct {
	currentID string
	keys      map[string][]byte
}

func NewKeySet(currentID string, current []byte, previous map[string][]byte) (*KeySet, error) {
	if len(current) == 0 {
		return nil, errors.New("jwt signing key is empty")
	}
	if currentID == "" {
		currentID = "default"
	}
	keys := map[string][]byte{currentID: current}
	for id, key := range previous {
		if id == currentID || len(key) == 0 {
			continue
		}
		keys[id] = key
	}
	return &KeySet{currentID: currentID, keys: keys}, nil
}

func (k *KeySet) lookup(id string) ([]byte, bool) {
	if id == "" {
		id = k.currentID
	}
	key, ok := k.keys[id]
	return key, ok
}

type accessClaims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

type TokenOption func(*TokenCodec)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) { c.now = now }
}

// TokenCodec issues and verifies HS256 access tokens.
type TokenCodec struct {
	keys *KeySet
	now  func() time.Time
}

func NewTokenCodec(keys *KeySet, opts ...TokenOption) *TokenCodec {
	c := &TokenCodec{keys: keys, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TokenCodec) Issue(subject string, scopes []string, ttl time.Duration) (*domain.IssuedToken, error) {
	if scopes == nil {
		scopes = []string{}
	}
	now := c.now()
	claims := accessClaims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = c.keys.currentID
	key, _ := c.keys.lookup(c.keys.currentID)
	signed, err := t.SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.IssuedToken{
		AccessToken: signed,
		TokenType:   domain.TokenTypeBearer,
		ExpiresIn:   int64(ttl / time.Second),
		Scopes:      scopes,
	}, nil
}

// Verify checks signature, algorithm and expiry. It fails with
// domain.ErrTokenExpired or domain.ErrTokenMalformed.
func (c *TokenCodec) Verify(raw string) (*domain.TokenClaims, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := c.keys.lookup(kid)
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenMalformed
	}
	if claims.Subject == "" {
		return nil, domain.ErrTokenMalformed
	}

	return &domain.TokenClaims{
		Subject:   claims.Subject,
		Scopes:    claims.Scopes,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
