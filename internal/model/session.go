// Package model defines the data structures used throughout the application.
package model

import "time"

// OAuthCredentials is the Google token bundle captured at the OAuth callback.
// It is owned by exactly one UserSession and is stored as a JSON column in the
// session row — it never leaves the session store.
//
// The token endpoint and client id/secret live in the server's oauth2.Config,
// not here: every session exchanges against the same OAuth app, so persisting
// the client secret per user would only widen the blast radius of a leaked
// session row.
type OAuthCredentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// UserSession is the explicit server-side session object. The browser holds
// only a signed JWT whose subject is the session ID; everything else lives in
// this row.
//
// Lifecycle: created on first contact with /authorize, state written before
// the consent redirect, email+credentials written at the callback, deleted on
// /logout.
type UserSession struct {
	ID          string            `json:"id"         db:"id"`
	OAuthState  string            `json:"-"          db:"oauth_state"` // anti-forgery state, single-use
	UserEmail   string            `json:"user_email" db:"user_email"`
	Credentials *OAuthCredentials `json:"-"          db:"credentials"`
	CreatedAt   time.Time         `json:"createdAt"  db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt"  db:"updated_at"`
}

// Authenticated reports whether the OAuth callback has completed for this
// session. A session exists from the first /authorize hit, but only counts as
// logged in once Google has told us who the user is.
func (s *UserSession) Authenticated() bool {
	return s != nil && s.UserEmail != ""
}

// HasCredentials reports whether the session can call the Docs export API.
func (s *UserSession) HasCredentials() bool {
	return s != nil && s.Credentials != nil && s.Credentials.AccessToken != ""
}

// StudySession is one saved extraction/summary artifact in the history store.
// ID doubles as the record's directory name; its zero-padded timestamp prefix
// makes a descending name sort equal to newest-first.
type StudySession struct {
	ID        string `json:"session_id"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
	Extracted string `json:"extracted"`
	Summary   string `json:"summary"`
}

// RecordMetadata is the shape of metadata.json inside a record directory.
type RecordMetadata struct {
	Title     string `json:"title,omitempty"`
	Timestamp string `json:"timestamp"`
	Format    string `json:"format,omitempty"`
}
