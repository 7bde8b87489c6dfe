// Package auth holds the reporting types for the local authentication
// state, shared by mdb auth status and anything that scripts against its
// JSON output.
package auth
