package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenService signs and verifies the platform's bearer tokens.
type TokenService interface {
	IssueAccess(account *Account) (string, error)
	IssueRefresh(account *Account) (string, error)
	IssuePair(account *Account) (*TokenPair, error)
	Validate(tokenString string) (*AccessClaims, error)
	ValidateRefresh(tokenString string) (*RefreshClaims, error)
}

// TokenServiceImpl implements TokenService over HS256. The signing key is
// process-wide configuration; rotating it invalidates every outstanding
// token, which is the only revocation path for stateless tokens.
type TokenServiceImpl struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	logger     Logger
	now        func() time.Time
}

// NewTokenService creates a TokenService. A nil logger falls back to the
// package default.
func NewTokenService(signingKey []byte, accessTTL, refreshTTL time.Duration, issuer string, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source, useful in tests.
func (ts *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	if now != nil {
		ts.now = now
	}
	return ts
}

// IssueAccess builds and signs an access token carrying the full identity
// claims.
func (ts *TokenServiceImpl) IssueAccess(account *Account) (string, error) {
	now := ts.now()
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   account.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		},
		UID:      account.ID.String(),
		Email:    account.Email,
		FullName: account.FullName(),
		Roles:    account.Roles,
		UserRole: account.PrimaryRole(),
	}
	return ts.sign(claims)
}

// IssueRefresh builds and signs a refresh token. Only the subject, account
// id and type marker are included; role changes must be picked up from the
// store when the token is redeemed.
func (ts *TokenServiceImpl) IssueRefresh(account *Account) (string, error) {
	now := ts.now()
	claims := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   account.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.refreshTTL)),
		},
		UID:       account.ID.String(),
		TokenType: RefreshTokenType,
	}
	return ts.sign(claims)
}

// IssuePair issues a fresh access+refresh pair.
func (ts *TokenServiceImpl) IssuePair(account *Account) (*TokenPair, error) {
	access, err := ts.IssueAccess(account)
	if err != nil {
		return nil, err
	}

	refresh, err := ts.IssueRefresh(account)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    ts.accessTTL.Milliseconds(),
	}, nil
}

// Validate parses and verifies an access token.
func (ts *TokenServiceImpl) Validate(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := ts.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRefresh parses and verifies a refresh token, rejecting access
// tokens presented in its place.
func (ts *TokenServiceImpl) ValidateRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := ts.parse(tokenString, claims); err != nil {
		return nil, err
	}

	if claims.TokenType != RefreshTokenType {
		ts.logger.Debug("refresh validation rejected token of type %q", claims.TokenType)
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (ts *TokenServiceImpl) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

func (ts *TokenServiceImpl) parse(tokenString string, claims jwt.Claims) error {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validation encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		switch {
		case goerrors.Is(err, jwt.ErrTokenExpired):
			return ErrTokenExpired
		case goerrors.Is(err, jwt.ErrTokenMalformed):
			return ErrTokenMalformed
		default:
			return ErrInvalidToken
		}
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}
