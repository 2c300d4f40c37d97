package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/models"
)

const (
	defaultSigningMethod   = "HS256"
	defaultAccessTokenTTL  = 5 * time.Minute
	defaultRefreshTokenTTL = 720 * time.Hour
)

// Token types embedded in the "type" claim
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims carried by both token kinds
// Access tokens additionally carry the role authority in "auth"
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
	Username  string `json:"username"`
	Authority string `json:"auth,omitempty"`
}

// UserID parses the subject claim back into a user id
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("subject is not a user id: %w", err)
	}
	return id, nil
}

// Codec configuration with sensible defaults
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
}

// Codec encodes and decodes signed tokens. It holds no mutable state:
// the only side effect of issuing is reading the clock.
type Codec struct {
	key string
	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration

	// Clock used for issuance and expiry checks, overridable in tests
	now func() time.Time
}

func New(cfg Config) (*Codec, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &Codec{
		key:        cfg.SecretKey,
		alg:        jwt.GetSigningMethod(cfg.Alg),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess signs a short lived token carrying the user's authority
func (c *Codec) IssueAccess(user models.User) (models.IssuedToken, error) {
	return c.issue(user, TypeAccess, user.Role, c.accessTTL)
}

// IssueRefresh signs a long lived token without authority claim
func (c *Codec) IssueRefresh(user models.User) (models.IssuedToken, error) {
	return c.issue(user, TypeRefresh, "", c.refreshTTL)
}

func (c *Codec) issue(user models.User, tokenType string, authority string, ttl time.Duration) (models.IssuedToken, error) {
	now := c.now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	signed := jwt.NewWithClaims(
		c.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   strconv.FormatInt(user.ID, 10),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			TokenType: tokenType,
			Username:  user.Username,
			Authority: authority,
		},
	)

	value, err := signed.SignedString([]byte(c.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing %s token. Err: %w", tokenType, err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// Parse verifies signature and expiry and returns the claim set.
// Expired tokens fail with apperrors.ErrTokenExpired, anything else that
// does not verify fails with apperrors.ErrTokenMalformed. Callers branch
// on the two kinds, so they are never collapsed here.
func (c *Codec) Parse(tokenString string) (Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(c.key), nil },
		jwt.WithValidMethods([]string{c.alg.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)

	switch {
	case err == nil:
		return *claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("%w: %w", apperrors.ErrTokenExpired, err)
	default:
		return Claims{}, fmt.Errorf("%w: %w", apperrors.ErrTokenMalformed, err)
	}
}
