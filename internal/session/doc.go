// Package session owns the authentication state of one mdb process.
//
// A Service is created once at startup from the configured token store and
// passed explicitly to everything that needs credentials. It caches the
// current user, hands out authorized headers, drives the login redirect and
// logout, and is the single place where a rejected token is invalidated.
//
// State machine:
//
//	Unauthenticated --CurrentUser--> Authenticating --200--> Authenticated
//	      ^                                |                      |
//	      +------401/403, Logout-----------+----------------------+
//
// Only the OAuth callback installs tokens (InstallToken, HandleAuthCallback).
package session
