// Package server implements the local HTTP server that receives the OAuth2
// authorization callback during login.
//
// The server exists for the duration of one authorization flow: it serves a
// single /callback request, validates the CSRF state token, exchanges the
// authorization code, and delivers the result through a channel before being
// shut down by the caller.
package server
