package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/takumi/banter/internal/domain"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// IdentityResolver provisions a local user for an external identity on
// first sight. Satisfied by service.AuthService.
type IdentityResolver interface {
	EnsureUser(ctx context.Context, authID, name, email string) (*domain.User, error)
}

// Auth validates the Bearer token and puts the caller's user id on the
// context. A `sub` claim that is a UUID is a locally issued token; any
// other `sub` is treated as an external identity and resolved (and
// provisioned if new) through the resolver.
func Auth(jwtSecret string, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "Missing or invalid token")
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				unauthorized(w, "Invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, "Invalid token claims")
				return
			}

			sub, _ := claims.GetSubject()
			userID, err := uuid.Parse(sub)
			if err != nil {
				// External identity: sub is the provider's authId.
				if resolver == nil || sub == "" {
					unauthorized(w, "Invalid user ID in token")
					return
				}
				name, _ := claims["name"].(string)
				email, _ := claims["email"].(string)
				user, err := resolver.EnsureUser(r.Context(), sub, name, email)
				if err != nil {
					unauthorized(w, "Could not resolve identity")
					return
				}
				userID = user.ID
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"` + message + `"}}`))
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) uuid.UUID {
	return ctx.Value(UserIDKey).(uuid.UUID)
}
