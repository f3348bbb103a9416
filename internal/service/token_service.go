package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 100 * time.Hour

type TokenService interface {
	Issue(subjectID string) (string, error)
	Verify(tokenString string) (string, error)
}

// TokenConfig is copied at construction; the service never changes it afterwards.
type TokenConfig struct {
	SecretKey []byte
	TTL       time.Duration
	Now       func() time.Time
}

type ClaimsUser struct {
	ID string `json:"id"`
}

type Claims struct {
	User ClaimsUser `json:"user"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg TokenConfig) (TokenService, error) {
	if len(cfg.SecretKey) == 0 {
		return nil, errors.New("token secret must not be empty")
	}

	s := &tokenService{
		secret: append([]byte(nil), cfg.SecretKey...),
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTokenTTL
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s, nil
}

func (s *tokenService) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", errors.New("token subject must not be empty")
	}

	// NumericDate keeps whole seconds, so exp is computed from a truncated clock.
	now := s.now().Truncate(time.Second)
	claims := Claims{
		User: ClaimsUser{ID: subjectID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *tokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", classifyTokenError(token, err)
	}

	if !token.Valid || claims.User.ID == "" {
		return "", ErrMalformedToken
	}

	return claims.User.ID, nil
}

func classifyTokenError(token *jwt.Token, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed) && token != nil && token.Method != nil:
		// Header and claims decoded; only the signature segment was unreadable.
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
