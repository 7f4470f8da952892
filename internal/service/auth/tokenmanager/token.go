package tokenmanager

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/models"
)

const (
	defaultAccessTokenTTL  = time.Hour
	defaultSigningMethod   = "HS256"
	defaultRefreshTokenTTL = 24 * time.Hour

	bearerPrefix = "Bearer "
)

type Claims struct {
	jwt.RegisteredClaims
	Kind models.TokenKind `json:"typ"`
	Role models.Role      `json:"role,omitempty"`
}

// Token manager with sensible default
type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Clock, time.Now if not set
	Now func() time.Time
}

type TokenManager struct {
	key []byte
	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if _, ok := alg.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing method %q, only HMAC allowed", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field <= 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenManager{
		key:        []byte(cfg.SecretKey),
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
	}, nil
}

// Current time by manager clock
func (m *TokenManager) Now() time.Time { return m.now() }

// Generate signed token of the kind for the user. Subject is the username
func (m *TokenManager) Generate(user models.User, kind models.TokenKind) (models.IssuedToken, error) {
	ttl := m.accessTTL
	if kind == models.RefreshToken {
		ttl = m.refreshTTL
	}

	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(m.alg, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind: kind,
		Role: user.Role,
	})

	signed, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing %s token. Err: %w", kind, err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

func (m *TokenManager) GeneratePair(user models.User) (models.TokenPair, error) {
	access, err := m.Generate(user, models.AccessToken)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := m.Generate(user, models.RefreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse and verify token signature and expiry
// Returns apperrors.ErrTokenExpired if only expiry check failed, apperrors.ErrMalformedToken otherwise
func (m *TokenManager) Parse(token string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims, apperrors.Wrap(apperrors.ErrTokenExpired, "Token expired", err)
	default:
		return nil, apperrors.Wrap(apperrors.ErrMalformedToken, "Invalid Token", err)
	}
}

func (m *TokenManager) ExtractSubject(token string) (string, error) {
	claims, err := m.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Token signature is valid, token not expired and issued for the user
func (m *TokenManager) Validate(token string, user models.User) bool {
	claims, err := m.Parse(token)
	if err != nil {
		return false
	}
	return claims.Subject == user.Username
}

func IsBearer(header string) bool {
	return strings.HasPrefix(header, bearerPrefix)
}

// Token from "Authorization: Bearer <token>" header value
func BearerToken(header string) (string, bool) {
	if !IsBearer(header) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	return token, token != ""
}
