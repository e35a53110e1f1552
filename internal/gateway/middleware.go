package gateway

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const identityKey contextKey = "identity"

// identity returns the verified owner identity of the request. The
// authenticate middleware guarantees it is set on every protected route.
func identity(r *http.Request) string {
	id, _ := r.Context().Value(identityKey).(string)
	return id
}

// authenticate resolves the request's credentials to an owner identity and
// rejects it otherwise. Workers never see an unverified or empty identity.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		var owner string
		switch {
		case strings.HasPrefix(header, "Bearer "):
			claims, err := s.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			owner = claims.Subject

		case strings.HasPrefix(header, "Basic "):
			email, password, ok := r.BasicAuth()
			if !ok {
				writeError(w, http.StatusUnauthorized, "malformed basic auth")
				return
			}
			user, err := s.users.Authenticate(email, password)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			owner = user.Email

		default:
			writeError(w, http.StatusUnauthorized, "missing credentials")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
