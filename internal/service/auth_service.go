package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
)

// AuthConfig holds the shared secret and optional claim checks for access
// tokens minted by the identity service.
type AuthConfig struct {
	AccessTokenSecret string
	Issuer            string
	Audience          []string
}

// AuthService verifies bearer tokens. Login and refresh live in the identity
// service; this API only consumes the tokens.
type AuthService struct {
	config AuthConfig
	logger *zap.Logger
}

// NewAuthService constructs the verifier.
func NewAuthService(logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{config: config, logger: logger}
}

// ValidateToken parses and verifies an HS256 access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if !s.audienceAllowed(claims.Audience) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token audience not accepted")
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token subject incomplete")
	}

	return claims, nil
}

func (s *AuthService) audienceAllowed(aud jwt.ClaimStrings) bool {
	if len(s.config.Audience) == 0 {
		return true
	}
	for _, want := range s.config.Audience {
		for _, got := range aud {
			if want == got {
				return true
			}
		}
	}
	return false
}

// IssueToken signs a token with the shared secret. The identity service
// mints production tokens; this is used for local tooling and tests.
func (s *AuthService) IssueToken(userID string, role models.UserRole, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.config.Issuer,
			Audience:  jwt.ClaimStrings(s.config.Audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
