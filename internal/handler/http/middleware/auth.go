package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/attendance-agent-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/jwt"
)

// AuthRequired rejects requests without a valid local session token. The
// token is minted by the unlock endpoint; anything that is not a session
// type token (an SSE token, for instance) is rejected here, as is a token
// revoked by logout.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.Unauthorized(w, "Missing session token")
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.Unauthorized(w, "Invalid session token")
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "session" || !ok {
				response.Unauthorized(w, "Invalid session token")
				return
			}

			if jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.Unauthorized(w, "Session has been revoked")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
