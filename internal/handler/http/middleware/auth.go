package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/vontade-empenho/ponto-backend/internal/domain/auth"
	"github.com/vontade-empenho/ponto-backend/internal/handler/http/response"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/jwt"
)

// TenantRequired lets a request through only with a verified access token
// naming a tenant. It must run after jwtauth.Verifier.
func TenantRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		switch claims["type"] {
		case jwt.TokenTypeAccess:
		case jwt.TokenTypeSSE:
			response.HandleError(w, auth.ErrStreamTokenOnAPI)
			return
		default:
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		if _, err := jwt.UserIDFromContext(r.Context()); err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
