package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/contacthub/internal/server/identity"
)

type contextKey string

const identityContextKey contextKey = "identity"

const msgInvalidCredentials = "Could not validate credentials"

// requireAuth extracts the bearer access token, resolves it to an identity
// snapshot, and stores the snapshot on the request context. Any failure is a
// uniform 401 with a bearer challenge.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w, msgInvalidCredentials)
			return
		}

		snap, err := s.auth.ResolveIdentity(r.Context(), token)
		if err != nil {
			writeUnauthorized(w, msgInvalidCredentials)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, snap)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// identityFromContext returns the snapshot stored by requireAuth.
func identityFromContext(ctx context.Context) *identity.Snapshot {
	snap, _ := ctx.Value(identityContextKey).(*identity.Snapshot)
	return snap
}
