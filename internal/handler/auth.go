// Package handler contains the HTTP layer: request parsing, response
// shaping, and the translation of domain errors into status codes.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/studybuddy/internal/apperror"
	"github.com/sakif/studybuddy/internal/auth"
	"github.com/sakif/studybuddy/internal/repository"
)

// HandleIndex is the unauthenticated liveness banner.
func HandleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("StudyBuddy Backend is running 🚀"))
}

// AuthHandler drives the Google OAuth flow and session lifecycle.
type AuthHandler struct {
	provider    *auth.GoogleProvider
	tokens      *auth.TokenService
	sessions    repository.SessionRepository
	frontendURL string
	logger      *slog.Logger
}

func NewAuthHandler(provider *auth.GoogleProvider, tokens *auth.TokenService, sessions repository.SessionRepository, frontendURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		provider:    provider,
		tokens:      tokens,
		sessions:    sessions,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// HandleAuthorize starts the OAuth flow. A session row is created on first
// contact so the CSRF state can live server-side instead of in a cookie;
// returning visitors reuse their existing session.
func (h *AuthHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		created, err := h.sessions.Create(r.Context())
		if err != nil {
			h.logger.Error("creating session failed", "error", err)
			writeError(w, err)
			return
		}
		session = created

		token, err := h.tokens.Generate(session.ID)
		if err != nil {
			h.logger.Error("issuing session token failed", "error", err)
			writeError(w, err)
			return
		}
		setSessionCookie(w, token)
	}

	session.OAuthState = xid.New().String()
	if err := h.sessions.Update(r.Context(), session); err != nil {
		h.logger.Error("storing oauth state failed", "error", err)
		writeError(w, err)
		return
	}

	http.Redirect(w, r, h.provider.AuthURL(session.OAuthState), http.StatusTemporaryRedirect)
}

// HandleCallback finishes the OAuth flow: validate the state against the
// session, exchange the code, resolve the account email and persist the
// credentials. The state is single-use: it is cleared as soon as it matches.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok || session.OAuthState == "" {
		writeError(w, apperror.Unauthorized("no login in progress"))
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" || state != session.OAuthState {
		h.logger.Warn("oauth state mismatch", "session", session.ID)
		writeError(w, apperror.Unauthorized("state mismatch"))
		return
	}

	// Burn the state before the exchange so it cannot be replayed, even if
	// the exchange below fails.
	session.OAuthState = ""
	if err := h.sessions.Update(r.Context(), session); err != nil {
		h.logger.Error("clearing oauth state failed", "error", err)
		writeError(w, err)
		return
	}

	token, err := h.provider.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error("code exchange failed", "error", err)
		writeError(w, apperror.Upstream("could not complete Google login", err))
		return
	}

	email, err := h.provider.FetchEmail(r.Context(), token)
	if err != nil {
		h.logger.Error("fetching userinfo failed", "error", err)
		writeError(w, apperror.Upstream("could not resolve Google account", err))
		return
	}

	session.UserEmail = email
	session.Credentials = auth.CredentialsFromToken(token)
	if err := h.sessions.Update(r.Context(), session); err != nil {
		h.logger.Error("persisting login failed", "error", err)
		writeError(w, err)
		return
	}

	h.logger.Info("user logged in", "email", email)
	http.Redirect(w, r, h.frontendURL, http.StatusSeeOther)
}

// HandleMe reports the logged-in account.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok || !session.Authenticated() {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": session.UserEmail})
}

// HandleLogout drops the session row and expires the cookie. Safe to call
// without a session.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if session, ok := auth.SessionFromContext(r.Context()); ok {
		if err := h.sessions.Delete(r.Context(), session.ID); err != nil {
			h.logger.Error("deleting session failed", "session", session.ID, "error", err)
			writeError(w, err)
			return
		}
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out."})
}

// Secure stays false for local development; a TLS-terminating deployment
// should flip it.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
