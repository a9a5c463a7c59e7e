package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid access token")

type userIDContextKey struct{}

// UserIDFromContext returns the authenticated user of the request.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey{}).(int64)
	return userID, ok && userID > 0
}

// WithUserID returns a context carrying the authenticated user.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// Authenticator issues and verifies HS256 access tokens whose subject is the user id.
type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticator creates a new Authenticator. A zero ttl issues tokens that never expire.
func NewAuthenticator(secret, issuer string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Authenticator{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// IssueToken signs an access token for the user.
func (a *Authenticator) IssueToken(userID int64) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("user id must be positive: %d", userID)
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:  strconv.FormatInt(userID, 10),
		Issuer:   a.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if a.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(a.ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("jwt.SignedString() > %w", err)
	}
	return token, nil
}

// Authenticate returns the user of an Authorization header value of the form "Bearer <token>".
func (a *Authenticator) Authenticate(authorization string) (int64, error) {
	tokenString, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok || strings.TrimSpace(tokenString) == "" {
		return 0, fmt.Errorf("%w: missing bearer token", errInvalidToken)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		options = append(options, jwt.WithIssuer(a.issuer))
	}
	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, options...); err != nil {
		return 0, fmt.Errorf("%w: %w", errInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", errInvalidToken, claims.Subject)
	}
	return userID, nil
}

// NewAuthInterceptor rejects requests without a valid access token
// and stores the user id in the request context.
// Rejected requests are charged to the remote host on limiter, which may be nil.
func NewAuthInterceptor(authenticator *Authenticator, limiter *RateLimiter) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			userID, err := authenticator.Authenticate(req.Header().Get("Authorization"))
			if err != nil {
				if limiter != nil && !limiter.Allow(peerKey(req.Peer())) {
					return nil, connect.NewError(connect.CodeResourceExhausted, errRateLimited)
				}
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(WithUserID(ctx, userID), req)
		}
	}
}
