package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rgdevment/scam-shield/pkg/logging"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
)

// ErrNoCredentials means a strategy found nothing to check; the next one is tried.
var ErrNoCredentials = errors.New("no credentials")

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Name   string
	Role   string
}

// Strategy resolves an identity from a request.
type Strategy interface {
	Authenticate(r *http.Request) (Identity, error)
}

// APIKeyStrategy authenticates trusted service clients with X-API-Key as moderators.
type APIKeyStrategy struct {
	Key string
}

func (s APIKeyStrategy) Authenticate(r *http.Request) (Identity, error) {
	clientKey := r.Header.Get("X-API-Key")
	if clientKey == "" || s.Key == "" {
		return Identity{}, ErrNoCredentials
	}
	if subtle.ConstantTimeCompare([]byte(clientKey), []byte(s.Key)) != 1 {
		return Identity{}, errors.New("invalid API key")
	}
	return Identity{UserID: "api-client", Name: "API client", Role: RoleModerator}, nil
}

// UserClaims are the JWT claims issued to end users.
type UserClaims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// BearerStrategy authenticates users with an HMAC-signed JWT.
type BearerStrategy struct {
	Secret string
}

func (s BearerStrategy) Authenticate(r *http.Request) (Identity, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" || s.Secret == "" {
		return Identity{}, ErrNoCredentials
	}
	if !strings.HasPrefix(auth, "Bearer ") {
		return Identity{}, errors.New("malformed authorization header")
	}
	tokenString := strings.TrimPrefix(auth, "Bearer ")

	claims := UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.Secret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("token has no subject")
	}

	role := claims.Role
	if role != RoleModerator {
		role = RoleUser
	}
	return Identity{UserID: claims.Subject, Name: claims.Name, Role: role}, nil
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller identity if the request was authenticated.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Authenticate tries strategies in order. The first success wins, requests
// without credentials continue anonymously and any other failure is a 401.
func Authenticate(logger *logging.Logger, strategies ...Strategy) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, strategy := range strategies {
				id, err := strategy.Authenticate(r)
				if errors.Is(err, ErrNoCredentials) {
					continue
				}
				if err != nil {
					logger.Warn("authentication failed", "path", r.URL.Path, "error", err)
					http.Error(w, "Unauthorized: invalid credentials", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose identity lacks role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
				return
			}
			if id.Role != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
