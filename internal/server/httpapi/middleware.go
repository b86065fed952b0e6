package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/IscoRuta98/ArdhiHub-server/internal/common"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/auth"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/models"
)

type contextKeyUser struct{}

// currentUser returns the authenticated user placed by the authenticate
// middleware, or nil outside an authenticated route.
func currentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(contextKeyUser{}).(*models.User)
	return user
}

// authenticate validates the bearer token and resolves it to a live user.
// Disabled accounts are rejected even with a valid token.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			s.writeError(w, r, common.ErrUnauthorized)
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		user, err := s.users.GetByID(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, common.ErrUnauthorized)
			return
		}
		if user.Disabled {
			s.writeError(w, r, common.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
