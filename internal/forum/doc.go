// Package forum reads and writes forum threads and posts.
//
// Reads are public. Writes are authorized through the session's headers; a
// missing token fails before any network call, and a rejected token
// invalidates the session through the api client. Every failure reaching
// the caller is either a *ValidationError (bad input, nothing sent) or an
// *ActionError carrying a message for the user.
package forum
