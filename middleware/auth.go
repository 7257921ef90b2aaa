package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"pantry-market/models"
	"pantry-market/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// ClaimsFrom extracts the session identity placed in the context by
// AuthMiddleware.
func ClaimsFrom(r *http.Request) (*utils.Claims, bool) {
	claims, ok := r.Context().Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// AuthMiddleware verifies the bearer token and attaches the session identity
// to the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.WriteError(w, utils.Unauthenticatedf("authorization header missing"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.WriteError(w, utils.Unauthenticatedf("invalid authorization header format"))
			return
		}

		claims := &utils.Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return utils.JwtKey, nil
		})
		if err != nil || !token.Valid {
			utils.WriteError(w, utils.Unauthenticatedf("invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireRole(role models.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r)
		if !ok {
			utils.WriteError(w, utils.Unauthenticatedf("not authenticated"))
			return
		}
		if claims.Role != string(role) {
			utils.WriteError(w, utils.Unauthorizedf("requires %s role", role))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminMiddleware ensures the authenticated user is an admin.
func AdminMiddleware(next http.Handler) http.Handler {
	return requireRole(models.RoleAdmin, next)
}

// VendorMiddleware ensures the authenticated user is a vendor.
func VendorMiddleware(next http.Handler) http.Handler {
	return requireRole(models.RoleVendor, next)
}

// DriverMiddleware ensures the authenticated user is a driver.
func DriverMiddleware(next http.Handler) http.Handler {
	return requireRole(models.RoleDriver, next)
}
