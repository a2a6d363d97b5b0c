package routers

import (
	"net/http"
	"strings"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/auth"
)

type TokenParser interface {
	Parse(token, tokenType string) (*auth.Claims, error)
}

// AuthMiddleware admits requests carrying a valid "Authorization: Bearer <access token>" header
// and stores the token claims in the request context.
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.", "")
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				respondDetail(w, http.StatusUnauthorized, "Authorization header must contain two space-delimited values", "bad_authorization_header")
				return
			}
			claims, err := tokens.Parse(strings.TrimSpace(token), auth.TokenTypeAccess)
			if err != nil {
				respondDetail(w, http.StatusUnauthorized, "Given token not valid for any token type", "token_not_valid")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
		})
	}
}
