package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"genrelab/internal/model"
)

// TokenExpiry is the fixed lifetime of a session token.
const TokenExpiry = 24 * time.Hour

// Claims represents JWT claims.
type Claims struct {
	AccountID uuid.UUID  `json:"account_id"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies session tokens. Tokens are stateless: there is
// no server-side revocation.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// WithClock returns a copy of the service that stamps tokens using now.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	return &JWTService{secret: s.secret, now: now}
}

// GenerateToken issues a session token for the account.
func (s *JWTService) GenerateToken(accountID uuid.UUID, email string, role model.Role) (string, error) {
	issuedAt := s.now()
	claims := &Claims{
		AccountID: accountID,
		Email:     email,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   accountID.String(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a JWT token and returns the claims. Expiry and
// not-before are checked against the service clock.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	now := s.now()
	if !claims.VerifyExpiresAt(now, true) {
		return nil, errors.New("token is expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return nil, errors.New("token is not valid yet")
	}
	if claims.AccountID == uuid.Nil {
		return nil, errors.New("token has no account id")
	}

	return claims, nil
}
