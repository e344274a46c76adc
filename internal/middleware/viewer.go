package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const SessionIDKey contextKey = "session_id"

var ErrInvalidToken = errors.New("invalid viewer token")

// ViewerAuth signs the tokens that tie a browser page to its viewer session.
type ViewerAuth struct {
	Secret []byte
	TTL    time.Duration
}

func NewViewerAuth(secret string, ttl time.Duration) *ViewerAuth {
	return &ViewerAuth{Secret: []byte(secret), TTL: ttl}
}

// IssueToken returns a signed token naming sessionID.
func (v *ViewerAuth) IssueToken(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"iat":        now.Unix(),
	}
	if v.TTL > 0 {
		claims["exp"] = now.Add(v.TTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.Secret)
}

// ServiceTokenHeader carries the token the server's own viewer sessions
// present when they call the flashcard service.
const ServiceTokenHeader = "X-Service-Token"

const serviceScope = "viewer-service"

func (v *ViewerAuth) parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseToken verifies tokenStr and returns the session id it names.
func (v *ViewerAuth) ParseToken(tokenStr string) (string, error) {
	claims, err := v.parse(tokenStr)
	if err != nil {
		return "", err
	}

	sessionID, _ := claims["session_id"].(string)
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", fmt.Errorf("%w: bad session id", ErrInvalidToken)
	}
	return sessionID, nil
}

// IssueServiceToken returns the token viewer sessions send in
// ServiceTokenHeader. It names no session, so it never opens a viewer.
func (v *ViewerAuth) IssueServiceToken() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"scope": serviceScope,
		"iat":   time.Now().Unix(),
	})
	return token.SignedString(v.Secret)
}

// IsServiceRequest reports whether r carries a valid service token.
func (v *ViewerAuth) IsServiceRequest(r *http.Request) bool {
	tokenStr := r.Header.Get(ServiceTokenHeader)
	if tokenStr == "" {
		return false
	}
	claims, err := v.parse(tokenStr)
	if err != nil {
		return false
	}
	scope, _ := claims["scope"].(string)
	return scope == serviceScope
}

// Middleware requires a Bearer viewer token and attaches its session id.
func (v *ViewerAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header", r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format", r)
			return
		}

		sessionID, err := v.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Viewer session has expired", r)
			} else {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", r)
			}
			return
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts the viewer session id from request context
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}
