package auth

import (
	"context"
	"net/http"

	"github.com/sakif/studybuddy/internal/model"
	"github.com/sakif/studybuddy/internal/repository"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the session value.
type contextKey string

const sessionKey contextKey = "session"

// Sessions resolves the session cookie on every request.
//
// If the cookie holds a valid JWT AND the referenced session row still
// exists, the *model.UserSession is stored in the request context. Otherwise
// the request proceeds anonymously — route-level guards decide whether that
// is acceptable. This mirrors the lifecycle in the handlers: /authorize
// creates sessions, /callback populates them, /logout deletes the row (which
// instantly invalidates any outstanding cookie).
func Sessions(tokens *TokenService, sessions repository.SessionRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sessionID, err := tokens.Validate(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.GetByID(r.Context(), sessionID)
			if err != nil {
				// Row deleted (logout) or never existed — anonymous.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
		})
	}
}

// RequireUser blocks requests whose session has not completed the OAuth
// callback. Applied to /extract, /download and the /history routes.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok || !session.Authenticated() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized","message":"login required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ContextWithSession attaches a resolved session to the context. Exported for
// handler tests that bypass the middleware.
func ContextWithSession(ctx context.Context, session *model.UserSession) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext retrieves the session placed by the Sessions middleware.
// Returns (nil, false) for anonymous requests.
func SessionFromContext(ctx context.Context) (*model.UserSession, bool) {
	session, ok := ctx.Value(sessionKey).(*model.UserSession)
	return session, ok && session != nil
}
